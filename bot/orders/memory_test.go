package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m5frls/gedanbot/bot/participants"
)

func newTestOrder(userID int64, tariff string, price int) Order {
	return Order{
		UserID:   userID,
		Username: "buyer",
		Tariff:   tariff,
		Participants: []participants.Participant{
			{FullName: "Иванов Иван Иванович", Telegram: "@ivanov", Phone: "79991234567"},
		},
		TotalPrice: price,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, newTestOrder(10, "Сам себе Санта", 3000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("create must assign an ID")
	}
	if created.Status != StatusPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tariff != "Сам себе Санта" || len(got.Participants) != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := s.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	o, _ := s.Create(ctx, newTestOrder(10, "Сам себе Санта", 3000))

	if err := s.UpdateStatus(ctx, o.ID, StatusPaid, true); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, o.ID)
	if got.Status != StatusPaid || !got.ReceiptVerified {
		t.Fatalf("unexpected state after approve: %+v", got)
	}

	// verified flag is sticky across later status changes
	if err := s.UpdateStatus(ctx, o.ID, StatusCanceled, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.Get(ctx, o.ID)
	if got.Status != StatusCanceled || !got.ReceiptVerified {
		t.Fatalf("verified flag lost: %+v", got)
	}

	if err := s.UpdateStatus(ctx, 999, StatusPaid, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreSetReceiptURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	o, _ := s.Create(ctx, newTestOrder(10, "Сам себе Санта", 3000))

	if err := s.SetReceiptURL(ctx, o.ID, "https://example.com/r/1.pdf"); err != nil {
		t.Fatalf("set receipt url: %v", err)
	}
	got, _ := s.Get(ctx, o.ID)
	if got.ReceiptURL != "https://example.com/r/1.pdf" {
		t.Fatalf("receipt url = %q", got.ReceiptURL)
	}

	if err := s.SetReceiptURL(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		o := newTestOrder(int64(i+1), "Снежная королева", 2500)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		created, _ := s.Create(ctx, o)
		if i%2 == 0 {
			_ = s.UpdateStatus(ctx, created.ID, StatusPaid, true)
		}
	}

	recent, err := s.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d rows, want 3", len(recent))
	}
	if !recent[0].CreatedAt.After(recent[1].CreatedAt) {
		t.Fatal("recent must be newest first")
	}

	pending, err := s.ListByStatus(ctx, StatusPending, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	for _, o := range pending {
		if o.Status != StatusPending {
			t.Fatalf("wrong status in pending list: %s", o.Status)
		}
	}
}

func TestMemoryStoreStatistics(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 12, 21, 15, 0, 0, 0, time.UTC)

	// paid today
	o1 := newTestOrder(1, "Сам себе Санта", 3000)
	o1.CreatedAt = now.Add(-time.Hour)
	c1, _ := s.Create(ctx, o1)
	_ = s.UpdateStatus(ctx, c1.ID, StatusPaid, true)

	// pending today, same buyer
	o2 := newTestOrder(1, "Снежная королева", 2500)
	o2.CreatedAt = now.Add(-2 * time.Hour)
	_, _ = s.Create(ctx, o2)

	// paid yesterday, other buyer
	o3 := newTestOrder(2, "DUO VIP", 6500)
	o3.CreatedAt = now.Add(-30 * time.Hour)
	c3, _ := s.Create(ctx, o3)
	_ = s.UpdateStatus(ctx, c3.ID, StatusPaid, true)

	stats, err := s.Statistics(ctx, now)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	want := Statistics{
		TotalOrders:   3,
		PaidOrders:    2,
		PendingOrders: 1,
		TotalRevenue:  9500,
		UniqueUsers:   2,
		TodayOrders:   2,
		TodayRevenue:  3000,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}
