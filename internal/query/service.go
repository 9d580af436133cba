// Package query implements the read side of the platform: per-entity
// aggregation pipelines that join ownership, like and subscription facts onto
// a base entity and project strongly typed, viewer-relative view models.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/errs"
)

// ErrNotFound indicates the base entity of a pipeline does not exist.
var ErrNotFound = errors.New("query: not found")

// Service runs aggregation pipelines against the relational store. One Service
// instance is shared by all handlers; every method is safe for concurrent use.
type Service struct {
	pool db.Pool
}

// NewService constructs a Service over the shared connection pool.
func NewService(pool db.Pool) *Service {
	if pool == nil {
		panic("query: pool must not be nil")
	}
	return &Service{pool: pool}
}

func (s *Service) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// ValidateID rejects malformed entity identifiers before any query runs.
func ValidateID(id, kind string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Errorf(errs.InvalidArgument, "invalid %s id", kind)
	}
	return nil
}
