package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator checks a session token and extracts its claims. The
// concrete validator is chosen once at container construction: JWKS
// against the hosted auth server, or a local HMAC secret in mock mode.
type TokenValidator interface {
	Validate(tokenStr string) (*CustomClaims, error)
}

// SupabaseTokenValidator verifies tokens against the Supabase JWKS
// endpoint.
type SupabaseTokenValidator struct {
	SupabaseURL string
}

func (v *SupabaseTokenValidator) Validate(tokenStr string) (*CustomClaims, error) {
	if v.SupabaseURL == "" {
		return nil, errors.New("supabase URL not configured")
	}

	jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", v.SupabaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %v", err)
	}
	defer jwks.EndBackground()

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// LocalTokenValidator verifies HS256 tokens issued by the mock backend.
type LocalTokenValidator struct {
	Secret []byte
}

func (v *LocalTokenValidator) Validate(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}
