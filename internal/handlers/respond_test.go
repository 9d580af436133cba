package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/repositories"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{
			name: "missing record",
			err:  fmt.Errorf("find video: %w", repositories.ErrNotFound),
			want: errs.NotFound,
		},
		{
			name: "acquire timeout is retryable",
			err:  fmt.Errorf("acquire connection: %w", context.DeadlineExceeded),
			want: errs.Unavailable,
		},
		{
			name: "connection exception is retryable",
			err:  fmt.Errorf("list videos: %w", &pgconn.PgError{Code: "08006"}),
			want: errs.Unavailable,
		},
		{
			name: "classified errors keep their code",
			err:  errs.E(errs.InvalidArgument, "bad input"),
			want: errs.InvalidArgument,
		},
		{
			name: "unclassified errors stay internal",
			err:  errors.New("boom"),
			want: errs.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
