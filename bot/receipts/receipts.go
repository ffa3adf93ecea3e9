// Package receipts archives payment confirmations buyers upload.
package receipts

import (
	"context"
	"errors"
)

// Kind distinguishes uploaded receipt formats.
type Kind string

const (
	KindDocument Kind = "document"
	KindPhoto    Kind = "photo"
)

// ErrNotFound is returned when no receipt exists for an order.
var ErrNotFound = errors.New("receipt not found")

// Ref points at one archived receipt.
type Ref struct {
	Name      string
	PublicURL string
	Size      int64
}

// Store is the receipt archive contract.
type Store interface {
	// Save archives receipt bytes for the order and returns its ref.
	// ext is the original file extension including the dot.
	Save(ctx context.Context, orderID, userID int64, data []byte, ext string) (Ref, error)
	// Find locates the receipt archived for the order.
	Find(ctx context.Context, orderID int64) (Ref, error)
	// Open returns the raw bytes of an archived receipt by name.
	Open(ctx context.Context, name string) ([]byte, error)
}
