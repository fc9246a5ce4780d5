package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/examprep-api/internal/events"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
)

// emit publishes an event after a committed change. Failures are logged and
// never reach the caller: the change has already happened.
func (o options) emit(ctx context.Context, eventType string, payload interface{}) {
	log := logger.FromContextOrDefault(ctx, o.logger)

	event, err := events.NewEvent(eventType, payload, o.clock())
	if err != nil {
		log.Error("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := o.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
