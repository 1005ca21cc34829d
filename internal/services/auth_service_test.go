package services

import (
	"context"
	"errors"
	"testing"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

func newAuthService(autoSignup bool) *AuthService {
	return NewAuthService(models.MockNewRepo(autoSignup, "test-secret"))
}

func TestAuthSignUpAndSignIn(t *testing.T) {
	svc := newAuthService(false)
	ctx := context.Background()

	user, token, err := svc.SignUp(ctx, "ama@example.com", "Ama")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if token == "" {
		t.Fatal("SignUp returned no token")
	}

	got, err := svc.GetCurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("token resolved to %s, want %s", got.ID, user.ID)
	}

	if _, _, err := svc.SignUp(ctx, "ama@example.com", "Again"); !errors.Is(err, models.ErrAlreadyRegistered) {
		t.Errorf("duplicate SignUp error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestAuthRejectsBadEmail(t *testing.T) {
	svc := newAuthService(true)
	ctx := context.Background()

	if _, _, err := svc.SignIn(ctx, "not-an-email"); err == nil {
		t.Error("malformed email accepted by SignIn")
	}
	if _, _, err := svc.SignUp(ctx, "", "Name"); err == nil {
		t.Error("empty email accepted by SignUp")
	}
}

func TestAuthEmptyTokens(t *testing.T) {
	svc := newAuthService(false)
	ctx := context.Background()

	if _, err := svc.GetCurrentUser(ctx, ""); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("empty access token error = %v, want ErrNotAuthenticated", err)
	}
	if _, _, err := svc.RefreshToken(ctx, ""); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("empty refresh token error = %v, want ErrNotAuthenticated", err)
	}
}

func TestAuthGoogleUnavailableInMockMode(t *testing.T) {
	svc := newAuthService(false)

	_, err := svc.SignInWithGoogle(context.Background(), "http://localhost:3000/auth/callback")
	if !errors.Is(err, models.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestUpdateProfileWhitelist(t *testing.T) {
	repo := models.MockNewRepo(false, "test-secret")
	svc := NewAuthService(repo)
	ctx := context.Background()

	user, _, err := svc.SignUp(ctx, "kofi@example.com", "Kofi")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	profile, err := svc.UpdateProfile(ctx, user.ID, map[string]any{
		"name":  "Kofi Owusu",
		"email": "hijack@example.com",
		"id":    uuid.New().String(),
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if profile.Name != "Kofi Owusu" {
		t.Errorf("name = %q, want Kofi Owusu", profile.Name)
	}
	if profile.Email != "kofi@example.com" {
		t.Errorf("email mutated to %q", profile.Email)
	}
	if profile.ID != user.ID {
		t.Error("id mutated through profile update")
	}
}
