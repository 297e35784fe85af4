package product

import (
	"context"

	"vatshop/internal/domain"
	productrepo "vatshop/internal/repository/product"
)

// RelatedLimit caps the related products shown next to a product.
const RelatedLimit = 4

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Related returns up to RelatedLimit other products, oldest first.
func (s *Service) Related(ctx context.Context, id string) ([]domain.Product, error) {
	return s.repo.ListExcept(ctx, id, RelatedLimit)
}
