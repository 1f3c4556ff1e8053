package billing

import (
	"context"
	"errors"
	"time"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// retryOnLockConflict ejecuta fn y la reintenta un número acotado de veces
// cuando falla por conflicto de asignación concurrente (lock por producto no
// obtenido dentro del lock_timeout). Agotados los reintentos, el conflicto se
// devuelve al caller como falla transitoria.
func retryOnLockConflict(ctx context.Context, cfg Config, log *logger.Logger, fn func() error) error {
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var err error
	for attempt := 0; attempt <= cfg.LockRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Int("intento", attempt).Msg("reintento por conflicto de asignación")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		err = fn()
		if !errors.Is(err, domain.ErrConcurrentAllocation) {
			return err
		}
	}
	return err
}
