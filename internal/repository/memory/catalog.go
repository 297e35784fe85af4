package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"vatshop/internal/domain"

	"github.com/google/uuid"
)

type productRepo struct {
	sh *shared
	tx bool
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	out := make([]domain.Product, 0, len(st.products))
	for _, p := range st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	p, ok := st.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) ListExcept(ctx context.Context, id string, limit int) ([]domain.Product, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	out := make([]domain.Product, 0, len(st.products))
	for _, p := range st.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	for id, existing := range st.products {
		if existing.Name != p.Name {
			continue
		}
		if p.ID != "" && p.ID != id {
			return nil, fmt.Errorf("product repo: id mismatch for name=%s existing_id=%s import_id=%s: %w", p.Name, id, p.ID, domain.ErrConflict)
		}
		existing.Description = p.Description
		existing.VATRate = p.VATRate
		existing.Price = p.Price
		st.products[id] = existing
		return &existing, nil
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = r.sh.now()
	st.products[p.ID] = p
	return &p, nil
}

type accountRepo struct {
	sh *shared
	tx bool
}

func (r *accountRepo) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	a.Email = strings.ToLower(a.Email)
	for _, existing := range st.accounts {
		if existing.Email == a.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = r.sh.now()
	st.accounts[a.ID] = a
	return &a, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	email = strings.ToLower(email)
	for _, a := range st.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	a, ok := st.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) UpdateName(ctx context.Context, id, firstName, lastName string) (*domain.Account, error) {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	a, ok := st.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.FirstName = firstName
	a.LastName = lastName
	st.accounts[id] = a
	return &a, nil
}
