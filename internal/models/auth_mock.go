package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const mockSessionTTL = 24 * time.Hour

// SignIn looks the user up by email. With autoSignup enabled an unknown
// email is created implicitly, mirroring the magic-link feel of the demo
// mode; with it disabled the caller must sign up first.
func (m *MockRepo) SignIn(ctx context.Context, email string) (*User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = normalizeEmail(email)
	id, ok := m.usersByEmail[email]
	var user *User
	if ok {
		user = m.users[id]
	} else {
		if !m.autoSignup {
			return nil, "", ErrNotFound
		}
		user = m.createUserLocked(email, "")
	}

	token, err := m.issueToken(user.ID, user.Email, mockSessionTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (m *MockRepo) SignUp(ctx context.Context, email, name string) (*User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = normalizeEmail(email)
	if _, exists := m.usersByEmail[email]; exists {
		return nil, "", ErrAlreadyRegistered
	}

	user := m.createUserLocked(email, name)
	token, err := m.issueToken(user.ID, user.Email, mockSessionTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignInWithGoogle has no OAuth provider to redirect to in mock mode.
func (m *MockRepo) SignInWithGoogle(ctx context.Context, redirectTo string) (string, error) {
	return "", ErrBackendUnavailable
}

func (m *MockRepo) SignOut(ctx context.Context, accessToken string) error {
	// Tokens are stateless; the client drops its cookies.
	return nil
}

func (m *MockRepo) GetCurrentUser(ctx context.Context, accessToken string) (*User, error) {
	userID, err := m.parseToken(accessToken)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (m *MockRepo) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	userID, err := m.parseToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	m.mu.Lock()
	user, ok := m.users[userID]
	m.mu.Unlock()
	if !ok {
		return "", "", ErrNotAuthenticated
	}

	access, err := m.issueToken(user.ID, user.Email, mockSessionTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := m.issueToken(user.ID, user.Email, 30*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *MockRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *MockRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if avatar, ok := updates["avatar_url"].(string); ok {
		user.AvatarURL = avatar
	}
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: time.Now(),
	}, nil
}
