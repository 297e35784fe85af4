package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/repository/memory"
)

func newService() *Service {
	return New(memory.New().Accounts(), "test-secret", time.Hour)
}

func TestSignupAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a, token, err := svc.Signup(ctx, SignupInput{Email: " Ada@Example.com ", Password: " Secret123 ", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if a.Email != "ada@example.com" || token == "" {
		t.Fatalf("unexpected signup result %+v %q", a, token)
	}

	logged, loginToken, err := svc.Login(ctx, "ada@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != a.ID {
		t.Fatalf("logged in as %s, want %s", logged.ID, a.ID)
	}

	id, err := svc.Authenticate(ctx, loginToken)
	if err != nil || id != a.ID {
		t.Fatalf("Authenticate = %q, %v", id, err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	in := SignupInput{Email: "ada@example.com", Password: "Secret123"}
	if _, _, err := svc.Signup(ctx, in); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, _, err := svc.Signup(ctx, in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, pw := range cases {
		if err := validatePassword(pw, 8); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", pw, err)
		}
	}
	if err := validatePassword("Secret123", 8); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if _, _, err := svc.Signup(ctx, SignupInput{Email: "ada@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "Wrong123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "Secret123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _, err := svc.Signup(ctx, SignupInput{Email: "ada@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	other := New(memory.New().Accounts(), "other-secret", time.Hour)
	forged, _ := other.tokens.Issue(a.ID)
	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign secret, got %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := svc.tokens.Issue(a.ID)
	svc.tokens.now = time.Now
	if _, err := svc.Authenticate(ctx, expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired token, got %v", err)
	}

	unknown, _ := svc.tokens.Issue("no-such-account")
	if _, err := svc.Authenticate(ctx, unknown); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for unknown account, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _, _ := svc.Signup(ctx, SignupInput{Email: "ada@example.com", Password: "Secret123"})

	if _, err := svc.UpdateProfile(ctx, a.ID, ProfileInput{FirstName: " "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	updated, err := svc.UpdateProfile(ctx, a.ID, ProfileInput{FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Ada" || updated.LastName != "Lovelace" {
		t.Fatalf("unexpected account %+v", updated)
	}
}
