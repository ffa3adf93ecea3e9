package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/participants"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/users"
	coreconfig "github.com/m5frls/gedanbot/core/config"
)

type fakeNotifier struct {
	sent []int64
	err  error
}

func (f *fakeNotifier) SendText(_ context.Context, userID int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, userID)
	return nil
}

type testEnv struct {
	ctrl     *Controller
	orders   *orders.MemoryStore
	receipts *receipts.DiskStore
	notify   *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{AdminIDs: []int64{900}},
		Event:    coreconfig.EventConfig{Title: "NEW YEAR GEDAN PARTY", Date: "27.12.2025 | 20:00", Venue: "Просторный дом с русской баней"},
		Support:  coreconfig.SupportConfig{Contact: "@m5frls"},
	}
	orderStore := orders.NewMemoryStore()
	receiptStore, err := receipts.NewDiskStore(t.TempDir(), "https://files.example.com")
	if err != nil {
		t.Fatalf("receipt store: %v", err)
	}
	notify := &fakeNotifier{}
	return &testEnv{
		ctrl:     NewController(cfg, orderStore, receiptStore, users.NewMemoryRegistry(), notify),
		orders:   orderStore,
		receipts: receiptStore,
		notify:   notify,
	}
}

func (env *testEnv) createOrder(t *testing.T, userID int64) orders.Order {
	t.Helper()
	o, err := env.orders.Create(context.Background(), orders.Order{
		UserID:   userID,
		Username: "buyer",
		Tariff:   "Сам себе Санта",
		Participants: []participants.Participant{
			{FullName: "Иванов Иван Иванович", Telegram: "@ivanov", Phone: "79991234567"},
		},
		TotalPrice: 3000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestApprove(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, 10)

	got, err := env.ctrl.Approve(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != orders.StatusPaid || !got.ReceiptVerified {
		t.Fatalf("unexpected state: %+v", got)
	}
	if len(env.notify.sent) != 1 || env.notify.sent[0] != 10 {
		t.Fatalf("buyer not notified: %v", env.notify.sent)
	}
}

func TestApproveIdempotent(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, 10)

	if _, err := env.ctrl.Approve(context.Background(), o.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	got, err := env.ctrl.Approve(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("second approve must not fail: %v", err)
	}
	if got.Status != orders.StatusPaid || !got.ReceiptVerified {
		t.Fatalf("unexpected state after re-approve: %+v", got)
	}
}

func TestApproveNotifyFailureKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, 10)
	env.notify.err = errors.New("blocked by user")

	if _, err := env.ctrl.Approve(context.Background(), o.ID); err != nil {
		t.Fatalf("approve must survive a notify failure: %v", err)
	}
	got, _ := env.orders.Get(context.Background(), o.ID)
	if got.Status != orders.StatusPaid {
		t.Fatalf("status rolled back: %+v", got)
	}
}

func TestApproveUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.ctrl.Approve(context.Background(), 404); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelNotifiesWithSnapshot(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, 20)

	snapshot, err := env.ctrl.Cancel(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// the returned snapshot is the pre-cancel state
	if snapshot.Status != orders.StatusPending {
		t.Fatalf("snapshot status = %s, want pending", snapshot.Status)
	}
	got, _ := env.orders.Get(context.Background(), o.ID)
	if got.Status != orders.StatusCanceled {
		t.Fatalf("status = %s, want canceled", got.Status)
	}
	if len(env.notify.sent) != 1 || env.notify.sent[0] != 20 {
		t.Fatalf("buyer not notified: %v", env.notify.sent)
	}
}

func TestRefreshReceipt(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, 30)

	if _, err := env.ctrl.RefreshReceipt(context.Background(), o.ID); !errors.Is(err, receipts.ErrNotFound) {
		t.Fatalf("expected receipt ErrNotFound, got %v", err)
	}

	saved, err := env.receipts.Save(context.Background(), o.ID, 30, []byte("%PDF"), ".pdf")
	if err != nil {
		t.Fatalf("save receipt: %v", err)
	}

	ref, err := env.ctrl.RefreshReceipt(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if ref.Name != saved.Name {
		t.Fatalf("ref mismatch: %q vs %q", ref.Name, saved.Name)
	}

	// refresh is read-only
	got, _ := env.orders.Get(context.Background(), o.ID)
	if got.Status != orders.StatusPending {
		t.Fatalf("refresh mutated the order: %+v", got)
	}
}
