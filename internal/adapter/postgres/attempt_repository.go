package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

// AttemptRepository implements port.AttemptRepository using pgxpool. A
// unique (mailing_id, client_id) constraint backs the one-record-per-pair
// guarantee.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository returns a new repository instance.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, mailing_id, client_id, status, send_date, created_at, updated_at`

// CreateOrGet inserts a pending attempt for the pair, or returns the
// existing record when a previous dispatch already created one.
func (r *AttemptRepository) CreateOrGet(ctx context.Context, mailingID, clientID int64) (*domain.DeliveryAttempt, error) {
	var a domain.DeliveryAttempt
	// DO UPDATE makes RETURNING yield the row on conflict as well.
	err := r.pool.QueryRow(ctx, `INSERT INTO delivery_attempts
(mailing_id, client_id, status, created_at, updated_at)
VALUES ($1,$2,$3,now(),now())
ON CONFLICT (mailing_id, client_id) DO UPDATE SET updated_at = now()
RETURNING `+attemptColumns,
		mailingID, clientID, domain.StatusPending).
		Scan(&a.ID, &a.MailingID, &a.ClientID, &a.Status, &a.SendDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update persists the attempt's status and send date.
func (r *AttemptRepository) Update(ctx context.Context, a *domain.DeliveryAttempt) error {
	return r.pool.QueryRow(ctx, `UPDATE delivery_attempts SET
status = $2, send_date = $3, updated_at = now()
WHERE id = $1
RETURNING updated_at`,
		a.ID, a.Status, a.SendDate).
		Scan(&a.UpdatedAt)
}

// ListByMailing returns every attempt of one mailing ordered by id.
func (r *AttemptRepository) ListByMailing(ctx context.Context, mailingID int64) ([]domain.DeliveryAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM delivery_attempts WHERE mailing_id = $1 ORDER BY id`, mailingID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DeliveryAttempt, error) {
		var a domain.DeliveryAttempt
		err := row.Scan(&a.ID, &a.MailingID, &a.ClientID, &a.Status, &a.SendDate, &a.CreatedAt, &a.UpdatedAt)
		return a, err
	})
}

// Stats aggregates attempt counts per mailing in SQL. Failed counts every
// non-200 status, pending attempts included. The aggregation runs over
// the mailings table, so a mailing with no attempts yet appears with
// zero counts instead of being absent.
func (r *AttemptRepository) Stats(ctx context.Context) ([]port.MailingStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT
    m.id,
    COUNT(a.id),
    COUNT(a.id) FILTER (WHERE a.status = 200),
    COUNT(a.id) FILTER (WHERE a.status <> 200)
FROM mailings m
LEFT JOIN delivery_attempts a ON a.mailing_id = m.id
GROUP BY m.id
ORDER BY m.id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (port.MailingStats, error) {
		var s port.MailingStats
		err := row.Scan(&s.MailingID, &s.Total, &s.Succeeded, &s.Failed)
		return s, err
	})
}

// DeliveredBetween counts delivered attempts per mailing whose send date
// falls in [from, to].
func (r *AttemptRepository) DeliveredBetween(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT mailing_id, COUNT(*)
FROM delivery_attempts
WHERE status = 200 AND send_date >= $1 AND send_date <= $2
GROUP BY mailing_id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[int64]int)
	for rows.Next() {
		var (
			mailingID int64
			n         int
		)
		if err = rows.Scan(&mailingID, &n); err != nil {
			return nil, err
		}
		counts[mailingID] = n
	}
	return counts, rows.Err()
}
