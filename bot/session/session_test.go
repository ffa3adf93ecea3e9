package session

import (
	"sync"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	if s.InProgress(1) {
		t.Fatal("fresh user must be idle")
	}

	s.Update(1, func(sess *Session) {
		sess.Stage = StageTariff
		sess.Order = &OrderDraft{Tariff: "Снежная королева", Total: 2500}
	})

	if !s.InProgress(1) {
		t.Fatal("user with an active stage must be in progress")
	}
	if s.InProgress(2) {
		t.Fatal("other users must stay idle")
	}

	snap := s.Snapshot(1)
	if snap.Stage != StageTariff || snap.Order == nil || snap.Order.Tariff != "Снежная королева" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	s.Clear(1)
	if s.InProgress(1) {
		t.Fatal("cleared user must be idle")
	}
	if snap := s.Snapshot(1); snap.Order != nil || snap.Broadcast != nil {
		t.Fatalf("clear must drop drafts: %+v", snap)
	}
}

func TestStoreUpdateSeesCurrentState(t *testing.T) {
	s := NewStore()
	s.Update(7, func(sess *Session) { sess.Stage = StageParticipants })
	s.Update(7, func(sess *Session) {
		if sess.Stage != StageParticipants {
			t.Fatalf("update saw stale stage %v", sess.Stage)
		}
		sess.Stage = StagePayment
	})
	if got := s.Snapshot(7).Stage; got != StagePayment {
		t.Fatalf("stage = %v, want payment", got)
	}
}

// Concurrent read-modify-write increments through Update must not lose
// writes when they target the same user.
func TestStorePerUserAtomicity(t *testing.T) {
	s := NewStore()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Update(42, func(sess *Session) {
					if sess.Order == nil {
						sess.Order = &OrderDraft{}
					}
					sess.Order.Total++
				})
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot(42).Order.Total; got != workers*perWorker {
		t.Fatalf("lost updates: total = %d, want %d", got, workers*perWorker)
	}
}

func TestStoreIndependentUsers(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			s.Update(userID, func(sess *Session) { sess.Stage = StageRules })
			s.Clear(userID)
		}(id)
	}
	wg.Wait()
	for id := int64(1); id <= 8; id++ {
		if s.InProgress(id) {
			t.Fatalf("user %d left in progress", id)
		}
	}
}

func TestStageString(t *testing.T) {
	if StageReceipt.String() != "receipt" {
		t.Fatalf("stage name = %q", StageReceipt.String())
	}
	if Stage(99).String() != "unknown" {
		t.Fatalf("out-of-range stage must stringify as unknown")
	}
}
