package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain/progress"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// ProgressService builds a learner's per-pack progress cards.
type ProgressService interface {
	// BuildProgressCards returns one card per pack the user has finished at
	// least one attempt in, most recently active pack first.
	BuildProgressCards(ctx context.Context, userID uuid.UUID) ([]progress.Card, error)
}

type progressService struct {
	attempts store.AttemptStore
	opts     options
}

// NewProgressService creates a ProgressService.
func NewProgressService(attempts store.AttemptStore, opts ...Option) (ProgressService, error) {
	if attempts == nil {
		return nil, &ServiceError{Service: "progress", Op: "create_service", Err: errNilDependency("attempt store")}
	}
	return &progressService{attempts: attempts, opts: buildOptions("progress_service", opts)}, nil
}

func (s *progressService) BuildProgressCards(ctx context.Context, userID uuid.UUID) ([]progress.Card, error) {
	entries, err := s.attempts.ListFinishedForProgress(ctx, userID)
	if err != nil {
		return nil, NewServiceError("progress", "build_progress_cards", err)
	}
	cards := progress.Build(entries)

	logger.FromContextOrDefault(ctx, s.opts.logger).Debug("built progress cards",
		slog.String("user_id", userID.String()),
		slog.Int("entries", len(entries)),
		slog.Int("cards", len(cards)))
	return cards, nil
}
