package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

// The metadata key SignUp sends must be the one the user mapping reads
// back, or the chosen name would vanish between sign-up and sign-in.
func TestMapSupabaseUserReadsSignUpMetadata(t *testing.T) {
	u := types.User{
		ID:    uuid.New(),
		Email: "ama@example.com",
		UserMetadata: map[string]interface{}{
			"full_name": "Ama Mensah",
		},
	}

	mapped := mapSupabaseUser(u)
	if mapped.Name != "Ama Mensah" {
		t.Errorf("name = %q, want Ama Mensah", mapped.Name)
	}

	u.UserMetadata = nil
	if mapped := mapSupabaseUser(u); mapped.Name != "ama" {
		t.Errorf("fallback name = %q, want the email local part", mapped.Name)
	}
}

func TestAppendRedirect(t *testing.T) {
	authURL := "https://xyz.supabase.co/auth/v1/authorize?provider=google"

	got := appendRedirect(authURL, "https://app.blend.dev/auth/callback")
	want := "https://xyz.supabase.co/auth/v1/authorize?provider=google&redirect_to=https%3A%2F%2Fapp.blend.dev%2Fauth%2Fcallback"
	if got != want {
		t.Errorf("appendRedirect = %q, want %q", got, want)
	}

	if got := appendRedirect(authURL, ""); got != authURL {
		t.Errorf("empty redirect changed the URL: %q", got)
	}
}
