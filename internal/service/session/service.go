// Package session issues and persists visitor sessions.
package session

import (
	"context"
	"errors"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/logging"
	sessionrepo "vatshop/internal/repository/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo   sessionrepo.Repository
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func New(repo sessionrepo.Repository, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Service{repo: repo, ttl: ttl, now: time.Now, logger: logging.OrNop(logger)}
}

// TTL is the lifetime of newly issued sessions.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Load returns the live session for token, or a freshly issued one when the
// token is empty, unknown or expired.
func (s *Service) Load(ctx context.Context, token string) (*domain.Session, error) {
	if token != "" {
		sess, err := s.repo.Get(ctx, token)
		switch {
		case err == nil && !sess.Expired(s.now()):
			return sess, nil
		case err == nil, errors.Is(err, domain.ErrNotFound):
		default:
			return nil, err
		}
	}
	return s.issue(ctx)
}

func (s *Service) issue(ctx context.Context) (*domain.Session, error) {
	sess := domain.Session{
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug("issued session")
	return &sess, nil
}

// Save persists sess when it changed since it was loaded.
func (s *Service) Save(ctx context.Context, sess *domain.Session) error {
	if !sess.Dirty() {
		return nil
	}
	if err := s.repo.Save(ctx, *sess); err != nil {
		return err
	}
	sess.MarkClean()
	return nil
}

// PurgeExpired deletes every session past its expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", zap.Int64("count", n))
	}
	return n, nil
}
