package models

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MockRepo is the local, single-process backend used when no hosted
// credentials are configured. It replicates the hosted semantics in
// memory under one mutex and is non-durable by design: a demo stand-in,
// not a multi-device store.
type MockRepo struct {
	mu sync.Mutex

	users         map[uuid.UUID]*User
	usersByEmail  map[string]uuid.UUID
	events        map[uuid.UUID]*Event
	calendars     map[uuid.UUID]*Calendar
	subscriptions map[uuid.UUID]*CalendarSubscription
	registrations map[uuid.UUID]*Registration
	invitations   map[uuid.UUID]*Invitation

	// autoSignup enables the demo find-or-create sign-in. Off by default;
	// with it off an unknown email fails instead of creating a user.
	autoSignup    bool
	sessionSecret []byte
}

func MockNewRepo(autoSignup bool, sessionSecret string) *MockRepo {
	return &MockRepo{
		users:         make(map[uuid.UUID]*User),
		usersByEmail:  make(map[string]uuid.UUID),
		events:        make(map[uuid.UUID]*Event),
		calendars:     make(map[uuid.UUID]*Calendar),
		subscriptions: make(map[uuid.UUID]*CalendarSubscription),
		registrations: make(map[uuid.UUID]*Registration),
		invitations:   make(map[uuid.UUID]*Invitation),
		autoSignup:    autoSignup,
		sessionSecret: []byte(sessionSecret),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *MockRepo) issueToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{"authenticated"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}{Email: email, RegisteredClaims: claims})
	return token.SignedString(m.sessionSecret)
}

func (m *MockRepo) parseToken(accessToken string) (uuid.UUID, error) {
	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.sessionSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrNotAuthenticated
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

func (m *MockRepo) createUserLocked(email, name string) *User {
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.users[user.ID] = user
	m.usersByEmail[email] = user.ID
	return user
}
