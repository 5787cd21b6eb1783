package predefine

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup entry does not exist.
var ErrNotFound = errors.New("predefine not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Predefine, error)
	FindByCode(ctx context.Context, namespace, code string) (*Predefine, error)
	DefaultFor(ctx context.Context, namespace string) (*Predefine, error)
	Exists(ctx context.Context, namespace string, id uuid.UUID) (bool, error)
	List(ctx context.Context, namespace string) ([]*Predefine, error)
}
