package predefine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, namespace, code, name, color, weight, is_default, created_at, updated_at`

func scanPredefine(row pgx.Row) (*Predefine, error) {
	var p Predefine
	err := row.Scan(&p.ID, &p.Namespace, &p.Code, &p.Name, &p.Color, &p.Weight,
		&p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Predefine, error) {
	return scanPredefine(r.pool.QueryRow(ctx, `SELECT `+cols+` FROM predefine WHERE id = $1`, id))
}

func (r *repoPG) FindByCode(ctx context.Context, namespace, code string) (*Predefine, error) {
	return scanPredefine(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM predefine WHERE namespace = $1 AND code = $2`, namespace, code))
}

func (r *repoPG) DefaultFor(ctx context.Context, namespace string) (*Predefine, error) {
	return scanPredefine(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM predefine WHERE namespace = $1 AND is_default ORDER BY code LIMIT 1`, namespace))
}

func (r *repoPG) Exists(ctx context.Context, namespace string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM predefine WHERE namespace = $1 AND id = $2)`, namespace, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) List(ctx context.Context, namespace string) ([]*Predefine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cols+` FROM predefine WHERE namespace = $1 ORDER BY code`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Predefine
	for rows.Next() {
		p, err := scanPredefine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

