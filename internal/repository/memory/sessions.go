package memory

import (
	"context"
	"time"

	"vatshop/internal/domain"
)

type sessionRepo struct {
	sh *shared
	tx bool
}

func (r *sessionRepo) Create(ctx context.Context, s domain.Session) error {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	if _, ok := st.sessions[s.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.CreatedAt = r.sh.now()
	s.MarkClean()
	st.sessions[s.Token] = s
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, token string) (*domain.Session, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	s, ok := st.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *sessionRepo) Save(ctx context.Context, s domain.Session) error {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	existing, ok := st.sessions[s.Token]
	if !ok {
		return domain.ErrNotFound
	}
	existing.CartID = s.CartID
	existing.ExpiresAt = s.ExpiresAt
	st.sessions[s.Token] = existing
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	if _, ok := st.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(st.sessions, token)
	return nil
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	var n int64
	for token, s := range st.sessions {
		if s.ExpiresAt.Before(now) {
			delete(st.sessions, token)
			n++
		}
	}
	return n, nil
}
