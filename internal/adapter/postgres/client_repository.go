package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sms-dispatch/internal/core/domain"
)

// ClientRepository implements port.ClientRepository using pgxpool.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a new repository instance.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, phone, operator_code, tag, timezone, created_at, updated_at`

// Create inserts the client and fills its id and timestamps.
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return r.pool.QueryRow(ctx, `INSERT INTO clients
(phone, operator_code, tag, timezone, created_at, updated_at)
VALUES ($1,$2,$3,$4,now(),now())
RETURNING id, created_at, updated_at`,
		c.Phone, c.OperatorCode, c.Tag, c.Timezone).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update rewrites every mutable field of the client.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	return r.pool.QueryRow(ctx, `UPDATE clients SET
phone = $2, operator_code = $3, tag = $4, timezone = $5, updated_at = now()
WHERE id = $1
RETURNING updated_at`,
		c.ID, c.Phone, c.OperatorCode, c.Tag, c.Timezone).
		Scan(&c.UpdatedAt)
}

// Delete removes the client; its delivery attempts cascade.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}

// Get returns a client by id, or (nil, nil) when absent.
func (r *ClientRepository) Get(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	err := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Phone, &c.OperatorCode, &c.Tag, &c.Timezone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every client ordered by id.
func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectClients(rows)
}

// FindByFilter returns the clients a mailing targets: tag AND operator
// code when both filters are set, a single condition otherwise. Callers
// guarantee at least one filter is present.
func (r *ClientRepository) FindByFilter(ctx context.Context, tag *string, operatorCode *int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE `
	args := make([]any, 0, 2)
	switch {
	case tag != nil && operatorCode != nil:
		query += `tag = $1 AND operator_code = $2`
		args = append(args, *tag, *operatorCode)
	case tag != nil:
		query += `tag = $1`
		args = append(args, *tag)
	case operatorCode != nil:
		query += `operator_code = $1`
		args = append(args, *operatorCode)
	default:
		return nil, fmt.Errorf("mailing filter is empty")
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	return collectClients(rows)
}

func collectClients(rows pgx.Rows) ([]domain.Client, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Client, error) {
		var c domain.Client
		err := row.Scan(&c.ID, &c.Phone, &c.OperatorCode, &c.Tag, &c.Timezone, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}
