// Package users tracks everyone who has talked to the bot, forming the
// broadcast audience.
package users

import "context"

// Registry is the broadcast audience contract. Record is idempotent:
// seeing the same user twice keeps a single row.
type Registry interface {
	Record(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}
