package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

const ProfilesTable = "profiles"

func mapSupabaseUser(u types.User) *User {
	name := ""
	if v, ok := u.UserMetadata["full_name"].(string); ok {
		name = v
	} else if v, ok := u.UserMetadata["name"].(string); ok {
		name = v
	}
	if name == "" {
		name = strings.SplitN(u.Email, "@", 2)[0]
	}
	avatar := ""
	if v, ok := u.UserMetadata["avatar_url"].(string); ok {
		avatar = v
	} else if v, ok := u.UserMetadata["picture"].(string); ok {
		avatar = v
	}
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      name,
		AvatarURL: avatar,
		CreatedAt: u.CreatedAt,
	}
}

// SignIn sends a magic link. No session exists yet, so the returned user
// is nil: the real session arrives out of band through the client's auth
// callback once the link is followed.
func (su *SupabaseRepo) SignIn(ctx context.Context, email string) (*User, string, error) {
	err := su.supabaseClient.Auth.OTP(types.OTPRequest{
		Email:      normalizeEmail(email),
		CreateUser: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil, "", nil
}

// SignUp is the same magic-link flow; gotrue creates the user when the
// link is first followed. The display name rides along as user metadata
// so the created account matches what the caller asked for.
func (su *SupabaseRepo) SignUp(ctx context.Context, email, name string) (*User, string, error) {
	req := types.OTPRequest{
		Email:      normalizeEmail(email),
		CreateUser: true,
	}
	if name != "" {
		req.Data = map[string]interface{}{"full_name": name}
	}
	if err := su.supabaseClient.Auth.OTP(req); err != nil {
		return nil, "", fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil, "", nil
}

func (su *SupabaseRepo) SignInWithGoogle(ctx context.Context, redirectTo string) (string, error) {
	resp, err := su.supabaseClient.Auth.Authorize(types.AuthorizeRequest{
		Provider: types.ProviderGoogle,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build authorize URL: %w", err)
	}
	return appendRedirect(resp.AuthorizationURL, redirectTo), nil
}

// appendRedirect adds the post-auth redirect_to parameter to the gotrue
// authorize URL; the Authorize request itself has no field for it.
func appendRedirect(authURL, redirectTo string) string {
	if redirectTo == "" {
		return authURL
	}
	u, err := url.Parse(authURL)
	if err != nil {
		return authURL
	}
	q := u.Query()
	q.Set("redirect_to", redirectTo)
	u.RawQuery = q.Encode()
	return u.String()
}

func (su *SupabaseRepo) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := su.supabaseClient.Auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (su *SupabaseRepo) GetCurrentUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	resp, err := su.supabaseClient.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return mapSupabaseUser(resp.User), nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNotFound
	}

	raw, _, err := su.supabaseClient.From(ProfilesTable).
		Select("id,email,name,avatar_url,bio,website,location,timezone,is_verified,created_at,updated_at", "", false).
		Eq("id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

func (su *SupabaseRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNotFound
	}
	if len(updates) == 0 {
		return su.GetProfile(ctx, userID)
	}

	raw, count, err := su.supabaseClient.From(ProfilesTable).
		Update(updates, "", "exact").
		Eq("id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}
