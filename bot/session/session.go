// Package session keeps per-user conversation state in memory.
// Sessions never survive a restart; orders only exist once persisted.
package session

import (
	"sync"

	"github.com/m5frls/gedanbot/bot/participants"
)

// Stage is the position of a user inside a conversation.
type Stage int

const (
	StageIdle Stage = iota
	StageRules
	StageTariff
	StageParticipants
	StagePayment
	StageReceipt
	StageBroadcastContent
	StageBroadcastConfirm
)

var stageNames = map[Stage]string{
	StageIdle:             "idle",
	StageRules:            "rules",
	StageTariff:           "tariff",
	StageParticipants:     "participants",
	StagePayment:          "payment",
	StageReceipt:          "receipt",
	StageBroadcastContent: "broadcast_content",
	StageBroadcastConfirm: "broadcast_confirm",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// OrderDraft accumulates the order being composed. It becomes a real
// order only when the receipt is accepted.
type OrderDraft struct {
	Tariff       string
	Participants []participants.Participant
	Total        int
}

// BroadcastDraft holds pending broadcast content for an operator.
type BroadcastDraft struct {
	Kind        string // "text" or "photo"
	Text        string
	PhotoFileID string
	Caption     string
}

// Session is one user's conversation state.
type Session struct {
	Stage     Stage
	Order     *OrderDraft
	Broadcast *BroadcastDraft
}

// Store serializes all state transitions per user. Each user has an own
// lock, so concurrent updates from the same user apply one at a time
// while different users never block each other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*entry
}

type entry struct {
	mu      sync.Mutex
	session Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*entry)}
}

func (s *Store) get(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[userID]
	if !ok {
		e = &entry{}
		s.sessions[userID] = e
	}
	return e
}

// Update runs fn with exclusive access to the user's session. The
// session seen by fn is current and its mutations are retained.
func (s *Store) Update(userID int64, fn func(*Session)) {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

// Snapshot returns a copy of the user's session.
func (s *Store) Snapshot(userID int64) Session {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Clear resets the user's session to idle and drops any drafts.
func (s *Store) Clear(userID int64) {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = Session{}
}

// InProgress reports whether the user has an active conversation.
func (s *Store) InProgress(userID int64) bool {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Stage != StageIdle
}
