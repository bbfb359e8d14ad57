package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo clients and a demo mailing for local runs.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	zones := []string{"Europe/Moscow", "Asia/Novosibirsk", "Europe/Kaliningrad", "Asia/Vladivostok"}
	tags := []string{"vip", "promo", "news"}

	for i := 1; i <= 20; i++ {
		code := 900 + r.Intn(100)
		phone := fmt.Sprintf("7%03d%07d", code, r.Intn(10000000))
		_, err := pool.Exec(ctx, `INSERT INTO clients
(phone, operator_code, tag, timezone, created_at, updated_at)
VALUES ($1,$2,$3,$4,now(),now()) ON CONFLICT DO NOTHING`,
			phone, code, tags[r.Intn(len(tags))], zones[r.Intn(len(zones))])
		if err != nil {
			return err
		}
	}

	tag := "vip"
	_, err := pool.Exec(ctx, `INSERT INTO mailings
(text, start_date, end_date, start_minute, end_minute, filter_tag, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,now(),now()) ON CONFLICT DO NOTHING`,
		"Demo mailing", time.Now(), time.Now().AddDate(0, 0, 1), 9*60, 18*60, tag)
	return err
}
