package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sms-dispatch/internal/core/domain"
)

// MailingRepository implements port.MailingRepository using pgxpool.
//
// The daily window bounds are stored as minutes since midnight in
// nullable smallint columns and mapped to domain.TimeOfDay here.
type MailingRepository struct {
	pool *pgxpool.Pool
}

// NewMailingRepository returns a new repository instance.
func NewMailingRepository(pool *pgxpool.Pool) *MailingRepository {
	return &MailingRepository{pool: pool}
}

func minutesOf(t *domain.TimeOfDay) *int16 {
	if t == nil {
		return nil
	}
	m := int16(t.Hour*60 + t.Minute)
	return &m
}

func timeOfDayOf(m *int16) *domain.TimeOfDay {
	if m == nil {
		return nil
	}
	return &domain.TimeOfDay{Hour: int(*m) / 60, Minute: int(*m) % 60}
}

// Create inserts the mailing and fills its id and timestamps.
func (r *MailingRepository) Create(ctx context.Context, m *domain.Mailing) error {
	return r.pool.QueryRow(ctx, `INSERT INTO mailings
(text, start_date, end_date, start_minute, end_minute, filter_tag, filter_operator_code, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
RETURNING id, created_at, updated_at`,
		m.Text, m.StartDate, m.EndDate, minutesOf(m.StartTime), minutesOf(m.EndTime),
		m.FilterTag, m.FilterOperatorCode).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// Update rewrites every mutable field of the mailing.
func (r *MailingRepository) Update(ctx context.Context, m *domain.Mailing) error {
	return r.pool.QueryRow(ctx, `UPDATE mailings SET
text = $2, start_date = $3, end_date = $4, start_minute = $5, end_minute = $6,
filter_tag = $7, filter_operator_code = $8, updated_at = now()
WHERE id = $1
RETURNING updated_at`,
		m.ID, m.Text, m.StartDate, m.EndDate, minutesOf(m.StartTime), minutesOf(m.EndTime),
		m.FilterTag, m.FilterOperatorCode).
		Scan(&m.UpdatedAt)
}

// Delete removes the mailing; its delivery attempts cascade.
func (r *MailingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM mailings WHERE id = $1`, id)
	return err
}

// Get returns a mailing by id, or (nil, nil) when absent.
func (r *MailingRepository) Get(ctx context.Context, id int64) (*domain.Mailing, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, text, start_date, end_date, start_minute, end_minute,
filter_tag, filter_operator_code, created_at, updated_at
FROM mailings WHERE id = $1`, id)
	m, err := scanMailing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns every mailing ordered by id.
func (r *MailingRepository) List(ctx context.Context) ([]domain.Mailing, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, text, start_date, end_date, start_minute, end_minute,
filter_tag, filter_operator_code, created_at, updated_at
FROM mailings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Mailing, error) {
		m, err := scanMailing(row)
		if err != nil {
			return domain.Mailing{}, err
		}
		return *m, nil
	})
}

func scanMailing(row pgx.Row) (*domain.Mailing, error) {
	var (
		m                      domain.Mailing
		startMinute, endMinute *int16
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(&m.ID, &m.Text, &m.StartDate, &m.EndDate, &startMinute, &endMinute,
		&m.FilterTag, &m.FilterOperatorCode, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.StartTime = timeOfDayOf(startMinute)
	m.EndTime = timeOfDayOf(endMinute)
	m.CreatedAt = createdAt
	m.UpdatedAt = updatedAt
	return &m, nil
}
