package services

import (
	"context"
	"errors"
	"time"

	"github.com/blendhq/blend-server/internal/models"
)

// Every service call runs under a bounded deadline so a stalled backend
// surfaces as a retryable timeout instead of hanging the caller.
const defaultTimeout = 10 * time.Second

func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}

// mapErr translates a context deadline into the retryable timeout error;
// everything else passes through untouched so errors.Is keeps working.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout
	}
	return err
}
