package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/blendhq/blend-server/internal/models"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrNotAuthenticated, http.StatusUnauthorized},
		{models.ErrNotAuthorized, http.StatusForbidden},
		{models.ErrAlreadyRegistered, http.StatusConflict},
		{models.ErrAlreadySubscribed, http.StatusConflict},
		{models.ErrAtCapacity, http.StatusConflict},
		{models.ErrAlreadyCheckedIn, http.StatusConflict},
		{models.ErrInvalidTransition, http.StatusConflict},
		{models.ErrSlugTaken, http.StatusConflict},
		{models.ErrBackendUnavailable, http.StatusServiceUnavailable},
		{models.ErrTimeout, http.StatusGatewayTimeout},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}

	// Wrapped errors keep their mapping.
	wrapped := fmt.Errorf("registering: %w", models.ErrAtCapacity)
	if got := statusFor(wrapped); got != http.StatusConflict {
		t.Errorf("statusFor(wrapped) = %d, want %d", got, http.StatusConflict)
	}
}
