package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
)

const (
	retryAttempts = 3
	retryBaseWait = 25 * time.Millisecond
)

// WithRetry reintenta fn con backoff exponencial mientras falle con
// ErrConcurrencyConflict (deadlock o fallo de serialización en la BD).
// Es el único error reintentable del motor; cualquier otro corta de inmediato.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	wait := retryBaseWait
	for attempt := 0; attempt < retryAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
