package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Op marks a logical unit of work, typically one store round-trip or one
// aggregation pipeline run.
type Op struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartOp derives an operation-scoped logger from the context, tagging it with
// the operation name and a fresh identifier. It returns the enriched context
// and the operation handle.
func StartOp(ctx context.Context, name string) (context.Context, *Op) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx).With(
		slog.String("op", name),
		slog.String("op_id", uuid.NewString()),
	)
	ctx = WithLogger(ctx, logger)

	return ctx, &Op{name: name, logger: logger, start: time.Now()}
}

// End emits a completion entry with the elapsed duration.
func (o *Op) End() {
	if o == nil {
		return
	}
	o.logger.Debug("op completed", slog.Duration("duration", time.Since(o.start)))
}
