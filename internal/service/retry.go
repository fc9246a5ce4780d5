package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// isAttemptNumberTaken reports a lost race on attempt numbering.
func isAttemptNumberTaken(err error) bool {
	return errors.Is(err, store.ErrAttemptNumberTaken)
}

// isStaleWrite reports a lost compare-and-set.
func isStaleWrite(err error) bool {
	return errors.Is(err, store.ErrStaleWrite)
}

// withRetry runs fn up to o.maxTries times with a constant pause, starting a
// new try only for errors matched by retryable. When every try fails that
// way the result wraps ErrConflict.
func (o options) withRetry(
	ctx context.Context,
	op string,
	retryable func(error) bool,
	fn func(ctx context.Context) error,
) error {
	log := logger.FromContextOrDefault(ctx, o.logger)
	backoff := retry.WithMaxRetries(uint64(o.maxTries-1), retry.NewConstant(o.backoff))

	tries := 0
	lostRace := false
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		tries++
		err := fn(ctx)
		lostRace = err != nil && retryable(err)
		if lostRace {
			log.Debug("write lost a race, retrying",
				slog.String("operation", op),
				slog.Int("try", tries),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if lostRace && ctx.Err() == nil {
		log.Warn("retries exhausted",
			slog.String("operation", op),
			slog.Int("tries", tries))
		return fmt.Errorf("%w after %d tries: %w", ErrConflict, tries, err)
	}
	return err
}
