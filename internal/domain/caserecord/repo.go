package caserecord

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a case does not exist or is soft-deleted.
var ErrNotFound = errors.New("case not found")

// ListOptions filters a list or export. Soft-deleted records are
// always excluded.
type ListOptions struct {
	Limit    int
	Skip     int
	Search   string
	Stage    *uuid.UUID
	Severity *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByNumber(ctx context.Context, number string) (*Case, error)
	Update(ctx context.Context, c *Case) error
	// SoftDelete marks the record deleted and returns it with the
	// deletion marker set. The row is never physically removed.
	SoftDelete(ctx context.Context, id uuid.UUID) (*Case, error)
	List(ctx context.Context, opts ListOptions) ([]*Case, int, error)
	// LastModified returns the most recent update time across live
	// records, for the list envelope.
	LastModified(ctx context.Context) (*time.Time, error)
	// Each streams matching records one at a time to fn, in creation
	// order, without materializing the full result set. Used by the
	// CSV export. A non-nil error from fn aborts the stream.
	Each(ctx context.Context, opts ListOptions, fn func(*Case) error) error
}
