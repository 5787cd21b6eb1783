package caserecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const caseCols = `id, number, stage, severity, description, victim,
	reported_at, reporter, resolved_at, resolver, followup, remarks,
	created_at, updated_at, deleted_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	var victimJSON, reporterJSON, resolverJSON, followupJSON []byte
	err := row.Scan(&c.ID, &c.Number, &c.Stage, &c.Severity, &c.Description, &victimJSON,
		&c.ReportedAt, &reporterJSON, &c.ResolvedAt, &resolverJSON, &followupJSON, &c.Remarks,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(victimJSON) > 0 {
		if err := json.Unmarshal(victimJSON, &c.Victim); err != nil {
			return nil, fmt.Errorf("decode victim: %w", err)
		}
	}
	if len(reporterJSON) > 0 {
		c.Reporter = &party.Party{}
		if err := json.Unmarshal(reporterJSON, c.Reporter); err != nil {
			return nil, fmt.Errorf("decode reporter: %w", err)
		}
	}
	if len(resolverJSON) > 0 {
		c.Resolver = &party.Party{}
		if err := json.Unmarshal(resolverJSON, c.Resolver); err != nil {
			return nil, fmt.Errorf("decode resolver: %w", err)
		}
	}
	if len(followupJSON) > 0 {
		c.Followup = &Followup{}
		if err := json.Unmarshal(followupJSON, c.Followup); err != nil {
			return nil, fmt.Errorf("decode followup: %w", err)
		}
	}
	return &c, nil
}

func encodeSubDocs(c *Case) (victim, reporter, resolver, followup []byte, err error) {
	victim, err = json.Marshal(c.Victim)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode victim: %w", err)
	}
	if c.Reporter != nil {
		reporter, err = json.Marshal(c.Reporter)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode reporter: %w", err)
		}
	}
	if c.Resolver != nil {
		resolver, err = json.Marshal(c.Resolver)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode resolver: %w", err)
		}
	}
	if c.Followup != nil {
		followup, err = json.Marshal(c.Followup)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode followup: %w", err)
		}
	}
	return victim, reporter, resolver, followup, nil
}

func (r *repoPG) Create(ctx context.Context, c *Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	victim, reporter, resolver, followup, err := encodeSubDocs(c)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO cases (id, number, stage, severity, description, victim,
			reported_at, reporter, resolved_at, resolver, followup, remarks,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.Number, c.Stage, c.Severity, c.Description, victim,
		c.ReportedAt, reporter, c.ResolvedAt, resolver, followup, c.Remarks,
		c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, number string) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE number = $1 AND deleted_at IS NULL`, number))
}

func (r *repoPG) Update(ctx context.Context, c *Case) error {
	c.UpdatedAt = time.Now().UTC()

	victim, reporter, resolver, followup, err := encodeSubDocs(c)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases SET stage=$2, severity=$3, description=$4, victim=$5,
			reported_at=$6, reporter=$7, resolved_at=$8, resolver=$9,
			followup=$10, remarks=$11, updated_at=$12
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Stage, c.Severity, c.Description, victim,
		c.ReportedAt, reporter, c.ResolvedAt, resolver, followup, c.Remarks,
		c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `
		UPDATE cases SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+caseCols, id))
}

func listFilter(opts ListOptions) (string, []interface{}) {
	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where += fmt.Sprintf(` AND (number ILIKE $%d OR description ILIKE $%d OR victim->>'name' ILIKE $%d)`,
			len(args), len(args), len(args))
	}
	if opts.Stage != nil {
		args = append(args, *opts.Stage)
		where += fmt.Sprintf(` AND stage = $%d`, len(args))
	}
	if opts.Severity != nil {
		args = append(args, *opts.Severity)
		where += fmt.Sprintf(` AND severity = $%d`, len(args))
	}
	return where, args
}

func (r *repoPG) List(ctx context.Context, opts ListOptions) ([]*Case, int, error) {
	where, args := listFilter(opts)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Skip)
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseCols+` FROM cases`+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) LastModified(ctx context.Context) (*time.Time, error) {
	var lastModified *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(updated_at) FROM cases WHERE deleted_at IS NULL`).Scan(&lastModified)
	return lastModified, err
}

func (r *repoPG) Each(ctx context.Context, opts ListOptions, fn func(*Case) error) error {
	where, args := listFilter(opts)
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseCols+` FROM cases`+where+` ORDER BY created_at`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}
