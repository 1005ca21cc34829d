package services

import (
	"context"
	"fmt"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

type AuthService struct {
	authRepo models.AuthRepo
}

func NewAuthService(authRepo models.AuthRepo) *AuthService {
	return &AuthService{
		authRepo: authRepo,
	}
}

// SignIn starts a sign-in for the given email. On the hosted backend the
// returned user is nil and the session arrives via the auth callback; the
// mock backend returns the user and a session token directly.
func (as *AuthService) SignIn(ctx context.Context, email string) (*models.User, string, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, "", fmt.Errorf("invalid email format: %w", err)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	user, token, err := as.authRepo.SignIn(ctx, email)
	return user, token, mapErr(err)
}

func (as *AuthService) SignUp(ctx context.Context, email, name string) (*models.User, string, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, "", fmt.Errorf("invalid email format: %w", err)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	user, token, err := as.authRepo.SignUp(ctx, email, name)
	return user, token, mapErr(err)
}

// SignInWithGoogle returns the provider authorize URL; the session itself
// comes back through the OAuth redirect, not this call.
func (as *AuthService) SignInWithGoogle(ctx context.Context, redirectTo string) (string, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	url, err := as.authRepo.SignInWithGoogle(ctx, redirectTo)
	return url, mapErr(err)
}

func (as *AuthService) SignOut(ctx context.Context, accessToken string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	return mapErr(as.authRepo.SignOut(ctx, accessToken))
}

func (as *AuthService) GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	user, err := as.authRepo.GetCurrentUser(ctx, accessToken)
	return user, mapErr(err)
}

func (as *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	access, refresh, err := as.authRepo.RefreshToken(ctx, refreshToken)
	return access, refresh, mapErr(err)
}

func (as *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	profile, err := as.authRepo.GetProfile(ctx, userID)
	return profile, mapErr(err)
}

func (as *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	// Only profile fields are writable; identity fields stay immutable.
	allowed := map[string]bool{
		"name": true, "avatar_url": true, "bio": true,
		"website": true, "location": true, "timezone": true,
	}
	sanitized := make(map[string]any, len(updates))
	for key, value := range updates {
		if allowed[key] {
			sanitized[key] = value
		}
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	profile, err := as.authRepo.UpdateProfile(ctx, userID, sanitized)
	return profile, mapErr(err)
}
