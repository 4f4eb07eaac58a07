package services

import (
	"context"
	"time"
)

const (
	transientAttempts = 3
	transientBaseWait = 100 * time.Millisecond
)

// withRetry выполняет fn с ограниченным числом повторов и экспоненциальной
// паузой. Используется только для идемпотентных обращений к внешним
// хранилищам: повтор не должен менять состояние дважды.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	wait := transientBaseWait

	for attempt := 0; attempt < transientAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == transientAttempts-1 {
			break
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
