package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m5frls/gedanbot/core/logger"
)

// PostgresRegistry stores the audience in the broadcast_users table.
type PostgresRegistry struct {
	db *sqlx.DB
}

// NewPostgresRegistry wraps an existing connection pool.
func NewPostgresRegistry(db *sqlx.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) Record(ctx context.Context, userID int64) error {
	const q = `INSERT INTO broadcast_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("record broadcast user %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logger.SVCUsers.LogAttrs(ctx, slog.LevelInfo, "audience.user_added",
			slog.Int64("user_id", userID),
		)
	}
	return nil
}

func (r *PostgresRegistry) List(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM broadcast_users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list broadcast users: %w", err)
	}
	return ids, nil
}

func (r *PostgresRegistry) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM broadcast_users`); err != nil {
		return 0, fmt.Errorf("count broadcast users: %w", err)
	}
	return n, nil
}
