// Package orders persists ticket orders and their moderation status.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/m5frls/gedanbot/bot/participants"
)

// Status is the moderation state of an order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is a persisted ticket order. An order comes into existence only
// after the buyer's receipt has been accepted.
type Order struct {
	ID              int64                      `db:"id"`
	UserID          int64                      `db:"user_id"`
	Username        string                     `db:"username"`
	Tariff          string                     `db:"tariff"`
	Participants    []participants.Participant `db:"-"`
	TotalPrice      int                        `db:"total_price"`
	Status          Status                     `db:"status"`
	ReceiptVerified bool                       `db:"receipt_verified"`
	ReceiptURL      string                     `db:"receipt_url"`
	CreatedAt       time.Time                  `db:"created_at"`
}

// Statistics aggregates order counters for the operator dashboard.
type Statistics struct {
	TotalOrders   int
	PaidOrders    int
	PendingOrders int
	TotalRevenue  int
	UniqueUsers   int
	TodayOrders   int
	TodayRevenue  int
}

// Store is the order persistence contract.
type Store interface {
	// Create inserts a pending order and returns it with ID and CreatedAt set.
	Create(ctx context.Context, o Order) (Order, error)
	// UpdateStatus moves an order to the given status. verified
	// additionally marks the receipt as checked by an operator.
	UpdateStatus(ctx context.Context, id int64, status Status, verified bool) error
	// SetReceiptURL links the archived receipt to the order.
	SetReceiptURL(ctx context.Context, id int64, url string) error
	Get(ctx context.Context, id int64) (Order, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Order, error)
	ListRecent(ctx context.Context, limit int) ([]Order, error)
	// Statistics aggregates counters; "today" is derived from now in
	// its location.
	Statistics(ctx context.Context, now time.Time) (Statistics, error)
}
