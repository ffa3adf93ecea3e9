package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local runs
// without a database.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Order

	// FailCreate forces Create to fail, for exercising error paths.
	FailCreate error
}

// NewMemoryStore creates an empty in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, rows: make(map[int64]Order)}
}

func (s *MemoryStore) Create(_ context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return Order{}, s.FailCreate
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.ID = s.nextID
	s.nextID++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	s.rows[o.ID] = o
	return o, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, status Status, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	if verified {
		o.ReceiptVerified = true
	}
	s.rows[id] = o
	return nil
}

func (s *MemoryStore) SetReceiptURL(_ context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	o.ReceiptURL = url
	s.rows[id] = o
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status Status, limit int) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.rows {
		if o.Status == status {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return clip(out, limit), nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.rows))
	for _, o := range s.rows {
		out = append(out, o)
	}
	sortNewestFirst(out)
	return clip(out, limit), nil
}

func (s *MemoryStore) Statistics(_ context.Context, now time.Time) (Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var stats Statistics
	users := make(map[int64]struct{})
	for _, o := range s.rows {
		stats.TotalOrders++
		users[o.UserID] = struct{}{}
		today := !o.CreatedAt.Before(dayStart) && o.CreatedAt.Before(dayEnd)
		if today {
			stats.TodayOrders++
		}
		switch o.Status {
		case StatusPaid:
			stats.PaidOrders++
			stats.TotalRevenue += o.TotalPrice
			if today {
				stats.TodayRevenue += o.TotalPrice
			}
		case StatusPending:
			stats.PendingOrders++
		}
	}
	stats.UniqueUsers = len(users)
	return stats, nil
}

func sortNewestFirst(list []Order) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func clip(list []Order, limit int) []Order {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
