// Package moderation gives operators control over persisted orders.
package moderation

import (
	"context"
	"log/slog"

	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/users"
	coreconfig "github.com/m5frls/gedanbot/core/config"
	"github.com/m5frls/gedanbot/core/logger"
)

// Notifier delivers best-effort direct messages to buyers. Failures
// never roll back a status change.
type Notifier interface {
	SendText(ctx context.Context, userID int64, text string) error
}

// Controller is the stateless moderation surface. Every entry point is
// gated on operator identity by the handlers.
type Controller struct {
	cfg      *coreconfig.Config
	orders   orders.Store
	receipts receipts.Store
	audience users.Registry
	notify   Notifier
}

// NewController wires the moderation surface.
func NewController(
	cfg *coreconfig.Config,
	orderStore orders.Store,
	receiptStore receipts.Store,
	audience users.Registry,
	notify Notifier,
) *Controller {
	return &Controller{
		cfg:      cfg,
		orders:   orderStore,
		receipts: receiptStore,
		audience: audience,
		notify:   notify,
	}
}

// Approve moves an order to paid with the receipt marked verified and
// notifies the buyer. Re-approving an already paid order re-applies
// the same state. The returned order reflects the final state.
func (m *Controller) Approve(ctx context.Context, orderID int64) (orders.Order, error) {
	if err := m.orders.UpdateStatus(ctx, orderID, orders.StatusPaid, true); err != nil {
		return orders.Order{}, err
	}
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}

	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "order.approved",
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", order.UserID),
	)

	if m.notify != nil && order.UserID != 0 {
		if err := m.notify.SendText(ctx, order.UserID, approvedDM(m.cfg, orderID)); err != nil {
			logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "order.approve.notify_failed",
				slog.Int64("order_id", orderID),
				slog.String("err", err.Error()),
			)
		}
	}
	return order, nil
}

// Cancel moves an order to canceled and notifies the buyer with the
// order details snapshotted before the change.
func (m *Controller) Cancel(ctx context.Context, orderID int64) (orders.Order, error) {
	snapshot, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if err := m.orders.UpdateStatus(ctx, orderID, orders.StatusCanceled, false); err != nil {
		return orders.Order{}, err
	}

	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "order.canceled",
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", snapshot.UserID),
	)

	if m.notify != nil && snapshot.UserID != 0 {
		if err := m.notify.SendText(ctx, snapshot.UserID, canceledDM(m.cfg, orderID, snapshot)); err != nil {
			logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "order.cancel.notify_failed",
				slog.Int64("order_id", orderID),
				slog.String("err", err.Error()),
			)
		}
	}
	return snapshot, nil
}

// RefreshReceipt re-reads the archived receipt ref for an order. It
// mutates nothing.
func (m *Controller) RefreshReceipt(ctx context.Context, orderID int64) (receipts.Ref, error) {
	if _, err := m.orders.Get(ctx, orderID); err != nil {
		return receipts.Ref{}, err
	}
	return m.receipts.Find(ctx, orderID)
}
