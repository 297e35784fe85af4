package domain

import "time"

// Session carries the current cart of a visitor between requests.
type Session struct {
	Token     string
	CartID    *string
	ExpiresAt time.Time
	CreatedAt time.Time

	dirty bool
}

// CurrentCartID returns the stored cart id, if any.
func (s *Session) CurrentCartID() (string, bool) {
	if s.CartID == nil || *s.CartID == "" {
		return "", false
	}
	return *s.CartID, true
}

// SetCartID points the session at cartID.
func (s *Session) SetCartID(cartID string) {
	if cur, ok := s.CurrentCartID(); ok && cur == cartID {
		return
	}
	id := cartID
	s.CartID = &id
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

// MarkClean resets the change flag after the session is persisted.
func (s *Session) MarkClean() {
	s.dirty = false
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
