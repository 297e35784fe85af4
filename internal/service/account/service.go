// Package account handles shop account registration, login and profiles.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vatshop/internal/domain"
	accountrepo "vatshop/internal/repository/account"
	"vatshop/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
)

// Service handles signup, login and profile updates.
type Service struct {
	repo        accountrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service signing tokens with secret.
func New(repo accountrepo.Repository, secret string, accessTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(secret, accessTTL),
		accessTTL:   accessTTL,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the register endpoint.
type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
}

// ProfileInput is the editable part of an account.
type ProfileInput struct {
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
}

// Signup registers a new account and returns it with an access token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Account, string, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	a, err := s.repo.Create(ctx, domain.Account{
		Email:        in.Email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(a.ID)
	if err != nil {
		return nil, "", err
	}
	return a, token, nil
}

// Login validates credentials and returns the account plus an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	password = strings.TrimSpace(password)
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(a.ID)
	if err != nil {
		return nil, "", err
	}
	return a, token, nil
}

// Authenticate returns the id of the account bound to a valid access token.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.Account, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateName(ctx, id, in.FirstName, in.LastName)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", min))
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return domain.NewValidationError("password", "must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
