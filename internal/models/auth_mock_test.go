package models

import (
	"context"
	"errors"
	"testing"
)

func TestMockSignUpAndSignIn(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()

	user, token, err := repo.SignUp(ctx, "Ama@Example.com", "Ama Mensah")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if user.Email != "ama@example.com" {
		t.Errorf("email was not normalized: %q", user.Email)
	}
	if token == "" {
		t.Error("SignUp returned no token")
	}

	// Same email again is a conflict, case-insensitively.
	if _, _, err := repo.SignUp(ctx, "AMA@example.com", "Other"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate SignUp error = %v, want ErrAlreadyRegistered", err)
	}

	signedIn, token2, err := repo.SignIn(ctx, "ama@example.com")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Errorf("SignIn returned a different user: %s vs %s", signedIn.ID, user.ID)
	}
	if token2 == "" {
		t.Error("SignIn returned no token")
	}
}

func TestMockSignInUnknownEmail(t *testing.T) {
	ctx := context.Background()

	strict := MockNewRepo(false, "test-secret")
	if _, _, err := strict.SignIn(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SignIn with auto-signup off = %v, want ErrNotFound", err)
	}

	demo := MockNewRepo(true, "test-secret")
	user, token, err := demo.SignIn(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("SignIn with auto-signup on failed: %v", err)
	}
	if user == nil || token == "" {
		t.Fatal("auto-signup did not create a session")
	}
	if user.Name != "nobody" {
		t.Errorf("derived name = %q, want %q", user.Name, "nobody")
	}
}

func TestMockTokenRoundTrip(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()

	user, token, err := repo.SignUp(ctx, "kofi@example.com", "Kofi")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	got, err := repo.GetCurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("token resolved to %s, want %s", got.ID, user.ID)
	}

	if _, err := repo.GetCurrentUser(ctx, "not-a-token"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("garbage token error = %v, want ErrNotAuthenticated", err)
	}

	// A token signed with a different secret must be rejected.
	other := MockNewRepo(false, "other-secret")
	_, otherToken, err := other.SignUp(ctx, "kofi@example.com", "Kofi")
	if err != nil {
		t.Fatalf("SignUp on second repo failed: %v", err)
	}
	if _, err := repo.GetCurrentUser(ctx, otherToken); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("cross-secret token error = %v, want ErrNotAuthenticated", err)
	}
}

func TestMockRefreshToken(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()

	user, token, err := repo.SignUp(ctx, "efua@example.com", "Efua")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	access, refresh, err := repo.RefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("RefreshToken returned empty tokens")
	}

	got, err := repo.GetCurrentUser(ctx, access)
	if err != nil {
		t.Fatalf("refreshed access token rejected: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("refreshed token resolved to %s, want %s", got.ID, user.ID)
	}
}

func TestMockProfiles(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()

	user, _, err := repo.SignUp(ctx, "yaw@example.com", "Yaw")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	profile, err := repo.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Yaw" || profile.Email != "yaw@example.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	updated, err := repo.UpdateProfile(ctx, user.ID, map[string]any{
		"name":       "Yaw Boateng",
		"avatar_url": "https://example.com/a.png",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "Yaw Boateng" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.AvatarURL != "https://example.com/a.png" {
		t.Errorf("avatar_url not updated: %q", updated.AvatarURL)
	}
}
