package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m5frls/gedanbot/bot/participants"
	"github.com/m5frls/gedanbot/core/logger"
)

// PostgresStore keeps orders in the orders table with participants as JSONB.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type orderRow struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	Username        string         `db:"username"`
	Tariff          string         `db:"tariff"`
	Participants    []byte         `db:"participants"`
	TotalPrice      int            `db:"total_price"`
	Status          string         `db:"status"`
	ReceiptVerified bool           `db:"receipt_verified"`
	ReceiptURL      sql.NullString `db:"receipt_url"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r orderRow) toOrder() (Order, error) {
	var people []participants.Participant
	if len(r.Participants) > 0 {
		if err := json.Unmarshal(r.Participants, &people); err != nil {
			return Order{}, fmt.Errorf("decode participants for order %d: %w", r.ID, err)
		}
	}
	return Order{
		ID:              r.ID,
		UserID:          r.UserID,
		Username:        r.Username,
		Tariff:          r.Tariff,
		Participants:    people,
		TotalPrice:      r.TotalPrice,
		Status:          Status(r.Status),
		ReceiptVerified: r.ReceiptVerified,
		ReceiptURL:      r.ReceiptURL.String,
		CreatedAt:       r.CreatedAt,
	}, nil
}

// Create inserts a new pending order and returns the stored row.
func (s *PostgresStore) Create(ctx context.Context, o Order) (Order, error) {
	if o.Status == "" {
		o.Status = StatusPending
	}
	blob, err := json.Marshal(o.Participants)
	if err != nil {
		return Order{}, fmt.Errorf("encode participants: %w", err)
	}

	const q = `
		INSERT INTO orders (user_id, username, tariff, participants, total_price, status, receipt_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	row := s.db.QueryRowxContext(ctx, q,
		o.UserID, o.Username, o.Tariff, blob, o.TotalPrice, string(o.Status), o.ReceiptVerified,
	)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		logger.SVCOrders.LogAttrs(ctx, slog.LevelError, "order.create.failed",
			slog.Int64("user_id", o.UserID),
			slog.String("tariff", o.Tariff),
			slog.String("err", err.Error()),
		)
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	logger.SVCOrders.LogAttrs(ctx, slog.LevelInfo, "order.created",
		slog.Int64("order_id", o.ID),
		slog.Int64("user_id", o.UserID),
		slog.String("tariff", o.Tariff),
		slog.Int("total_price", o.TotalPrice),
	)
	return o, nil
}

// UpdateStatus sets the status and, when requested, the verified flag.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status Status, verified bool) error {
	const q = `
		UPDATE orders
		SET status = $2, receipt_verified = (receipt_verified OR $3)
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, q, id, string(status), verified)
	if err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.SVCOrders.LogAttrs(ctx, slog.LevelInfo, "order.status_changed",
		slog.Int64("order_id", id),
		slog.String("status", string(status)),
		slog.Bool("verified", verified),
	)
	return nil
}

// SetReceiptURL stores the public receipt link on the order row.
func (s *PostgresStore) SetReceiptURL(ctx context.Context, id int64, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET receipt_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("link receipt to order %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link receipt to order %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get fetches one order by ID.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Order, error) {
	var r orderRow
	err := s.db.GetContext(ctx, &r, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order %d: %w", id, err)
	}
	return r.toOrder()
}

// ListByStatus returns newest-first orders with the given status.
// A non-positive limit returns everything.
func (s *PostgresStore) ListByStatus(ctx context.Context, status Status, limit int) ([]Order, error) {
	const q = `SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
	return s.list(ctx, q, string(status), limitArg(limit))
}

// ListRecent returns the newest orders regardless of status.
// A non-positive limit returns everything.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	const q = `SELECT * FROM orders ORDER BY created_at DESC LIMIT $1`
	return s.list(ctx, q, limitArg(limit))
}

// limitArg maps a non-positive limit to SQL NULL, which Postgres reads
// as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (s *PostgresStore) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toOrder()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Statistics aggregates counters in one round trip.
func (s *PostgresStore) Statistics(ctx context.Context, now time.Time) (Statistics, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	const q = `
		SELECT
			COUNT(*)                                                       AS total_orders,
			COUNT(*) FILTER (WHERE status = 'paid')                        AS paid_orders,
			COUNT(*) FILTER (WHERE status = 'pending')                     AS pending_orders,
			COALESCE(SUM(total_price) FILTER (WHERE status = 'paid'), 0)   AS total_revenue,
			COUNT(DISTINCT user_id)                                        AS unique_users,
			COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2)   AS today_orders,
			COALESCE(SUM(total_price) FILTER (
				WHERE status = 'paid' AND created_at >= $1 AND created_at < $2), 0) AS today_revenue
		FROM orders`

	var row struct {
		TotalOrders   int `db:"total_orders"`
		PaidOrders    int `db:"paid_orders"`
		PendingOrders int `db:"pending_orders"`
		TotalRevenue  int `db:"total_revenue"`
		UniqueUsers   int `db:"unique_users"`
		TodayOrders   int `db:"today_orders"`
		TodayRevenue  int `db:"today_revenue"`
	}
	if err := s.db.GetContext(ctx, &row, q, dayStart, dayEnd); err != nil {
		return Statistics{}, fmt.Errorf("aggregate statistics: %w", err)
	}
	return Statistics(row), nil
}
