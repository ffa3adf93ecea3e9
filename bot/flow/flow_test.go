package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/m5frls/gedanbot/bot/broadcast"
	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/bot/users"
	coreconfig "github.com/m5frls/gedanbot/core/config"
)

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type testEnv struct {
	engine   *Engine
	sessions *session.Store
	orders   *orders.MemoryStore
	fetcher  *fakeFetcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{AdminIDs: []int64{900}},
		Payment:  coreconfig.PaymentConfig{BankName: "Сбербанк", Account: "2200701684127670"},
		Receipts: coreconfig.ReceiptsConfig{Dir: t.TempDir(), MaxFileSizeMB: 20},
		Support:  coreconfig.SupportConfig{Contact: "@m5frls"},
	}
	sessions := session.NewStore()
	orderStore := orders.NewMemoryStore()
	audience := users.NewMemoryRegistry()
	receiptStore, err := receipts.NewDiskStore(cfg.Receipts.Dir, "")
	if err != nil {
		t.Fatalf("receipt store: %v", err)
	}
	fetcher := &fakeFetcher{data: []byte("%PDF-1.4")}
	broadcasts := broadcast.NewEngine(sessions, audience, nil)

	return &testEnv{
		engine:   NewEngine(cfg, sessions, orderStore, audience, receiptStore, fetcher, broadcasts),
		sessions: sessions,
		orders:   orderStore,
		fetcher:  fetcher,
	}
}

func (env *testEnv) toReceiptStage(t *testing.T, userID int64) {
	t.Helper()
	if _, err := env.engine.SelectTariff(userID, "Сам себе Санта"); err != nil {
		t.Fatalf("select tariff: %v", err)
	}
	out := env.engine.SubmitParticipants(userID, "Иванов Иван Иванович, @ivanov, 79991234567", "")
	if !out.Advanced {
		t.Fatalf("submit did not advance: %+v", out)
	}
	if pay := env.engine.ProceedToPayment(userID); !pay.OK {
		t.Fatal("proceed to payment refused")
	}
}

func TestSingleSeatHappyPathToPayment(t *testing.T) {
	env := newTestEnv(t)
	const userID = 1

	tariff, err := env.engine.SelectTariff(userID, "Сам себе Санта")
	if err != nil {
		t.Fatalf("select tariff: %v", err)
	}
	if tariff.Seats != 1 || tariff.Price != 3000 {
		t.Fatalf("unexpected tariff: %+v", tariff)
	}

	out := env.engine.SubmitParticipants(userID, "Иванов Иван Иванович, @ivanov, 79991234567", "")
	if !out.Advanced {
		t.Fatalf("expected advance, got %+v", out)
	}
	if len(out.People) != 1 || out.Total != 3000 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	snap := env.sessions.Snapshot(userID)
	if snap.Stage != session.StagePayment {
		t.Fatalf("stage = %v, want payment", snap.Stage)
	}
	if snap.Order.Total != 3000 || len(snap.Order.Participants) != 1 {
		t.Fatalf("draft not stored: %+v", snap.Order)
	}
}

func TestWrongBatchSizeStaysInParticipants(t *testing.T) {
	env := newTestEnv(t)
	const userID = 2

	if _, err := env.engine.SelectTariff(userID, "Братья по шампанскому"); err != nil {
		t.Fatalf("select tariff: %v", err)
	}

	out := env.engine.SubmitParticipants(userID, "Иванов Иван, @ivanov, 79991234567", "")
	if out.Advanced || !out.CountMismatch {
		t.Fatalf("one line for a two-seat tariff must be a count mismatch: %+v", out)
	}
	if out.GotLines != 1 {
		t.Fatalf("got lines = %d", out.GotLines)
	}

	snap := env.sessions.Snapshot(userID)
	if snap.Stage != session.StageParticipants {
		t.Fatalf("stage = %v, want participants", snap.Stage)
	}
	if snap.Order == nil || snap.Order.Tariff != "Братья по шампанскому" {
		t.Fatalf("selected tariff lost after failed attempt: %+v", snap.Order)
	}
}

func TestFieldErrorsStayInParticipants(t *testing.T) {
	env := newTestEnv(t)
	const userID = 3

	if _, err := env.engine.SelectTariff(userID, "Сам себе Санта"); err != nil {
		t.Fatalf("select tariff: %v", err)
	}

	out := env.engine.SubmitParticipants(userID, "И, @ivanov, 123", "")
	if out.Advanced || out.CountMismatch || len(out.Errors) == 0 {
		t.Fatalf("expected field errors: %+v", out)
	}
	if env.sessions.Snapshot(userID).Stage != session.StageParticipants {
		t.Fatal("stage must stay on participants")
	}
}

func TestSelectUnknownTariffLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.SelectTariff(9, "Несуществующий"); err == nil {
		t.Fatal("expected an error")
	}
	if env.sessions.InProgress(9) {
		t.Fatal("failed selection must not start a conversation")
	}
}

func TestProceedWithIncompleteDraftClearsSession(t *testing.T) {
	env := newTestEnv(t)
	const userID = 4

	// Payment stage with a gutted draft simulates a corrupted session.
	env.sessions.Update(userID, func(s *session.Session) {
		s.Stage = session.StagePayment
		s.Order = &session.OrderDraft{Tariff: "Сам себе Санта"}
	})

	if out := env.engine.ProceedToPayment(userID); out.OK {
		t.Fatal("incomplete draft must refuse payment")
	}
	if env.sessions.InProgress(userID) {
		t.Fatal("session must be cleared on the fail-safe path")
	}
}

func TestProceedMovesToReceiptStage(t *testing.T) {
	env := newTestEnv(t)
	const userID = 5
	env.toReceiptStage(t, userID)

	if got := env.sessions.Snapshot(userID).Stage; got != session.StageReceipt {
		t.Fatalf("stage = %v, want receipt", got)
	}
}

func TestAcceptReceiptCreatesOrderAndClearsSession(t *testing.T) {
	env := newTestEnv(t)
	const userID = 6
	env.toReceiptStage(t, userID)

	out, err := env.engine.AcceptReceipt(context.Background(), userID, "buyer",
		ReceiptUpload{FileID: "f1", Size: 1024, Ext: ".pdf"})
	if err != nil {
		t.Fatalf("accept receipt: %v", err)
	}
	if out.OrderID == 0 || !out.Archived || out.Total != 3000 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	order, err := env.orders.Get(context.Background(), out.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != orders.StatusPending || order.UserID != userID {
		t.Fatalf("unexpected order: %+v", order)
	}
	if env.sessions.InProgress(userID) {
		t.Fatal("session must be cleared after acceptance")
	}
}

func TestReceiptValidationKeepsStage(t *testing.T) {
	env := newTestEnv(t)
	const userID = 7
	env.toReceiptStage(t, userID)

	_, err := env.engine.AcceptReceipt(context.Background(), userID, "buyer",
		ReceiptUpload{FileID: "f", Size: 30 * 1024 * 1024, Ext: ".pdf"})
	if !errors.Is(err, errReceiptTooBig) {
		t.Fatalf("expected size rejection, got %v", err)
	}

	_, err = env.engine.AcceptReceipt(context.Background(), userID, "buyer",
		ReceiptUpload{FileID: "f", Size: 100, Ext: ".exe"})
	if !errors.Is(err, errReceiptBadExt) {
		t.Fatalf("expected extension rejection, got %v", err)
	}

	if got := env.sessions.Snapshot(userID).Stage; got != session.StageReceipt {
		t.Fatalf("stage = %v, want receipt after rejections", got)
	}
}

func TestOrderCreateFailureKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	const userID = 8
	env.toReceiptStage(t, userID)

	env.orders.FailCreate = errors.New("db down")
	_, err := env.engine.AcceptReceipt(context.Background(), userID, "buyer",
		ReceiptUpload{FileID: "f", Size: 100, Ext: ".pdf"})
	if !errors.Is(err, errReceiptCreate) {
		t.Fatalf("expected create failure, got %v", err)
	}

	snap := env.sessions.Snapshot(userID)
	if snap.Stage != session.StageReceipt || snap.Order == nil {
		t.Fatalf("entered data must survive a create failure: %+v", snap)
	}
}

func TestArchiveFailureStillConfirmsOrder(t *testing.T) {
	env := newTestEnv(t)
	const userID = 9
	env.toReceiptStage(t, userID)

	env.fetcher.err = errors.New("telegram file api down")
	out, err := env.engine.AcceptReceipt(context.Background(), userID, "buyer",
		ReceiptUpload{FileID: "f", Size: 100, Ext: ".pdf"})
	if err != nil {
		t.Fatalf("accept receipt: %v", err)
	}
	if out.Archived {
		t.Fatal("archive must be reported as failed")
	}
	if out.OrderID == 0 {
		t.Fatal("order must exist despite the archive failure")
	}
	if env.sessions.InProgress(userID) {
		t.Fatal("session must still be cleared")
	}
}

func TestHandleFallbackForNoUsername(t *testing.T) {
	env := newTestEnv(t)
	const userID = 10

	if _, err := env.engine.SelectTariff(userID, "Сам себе Санта"); err != nil {
		t.Fatalf("select tariff: %v", err)
	}
	out := env.engine.SubmitParticipants(userID, "Иванов Иван Иванович, ivanov, 79991234567", "sender")
	if !out.Advanced {
		t.Fatalf("expected advance: %+v", out)
	}
	if out.People[0].Telegram != "@sender" {
		t.Fatalf("handle = %q", out.People[0].Telegram)
	}
}

func TestDocumentExt(t *testing.T) {
	cases := map[string]string{
		"чек.PDF":      ".pdf",
		"receipt.jpeg": ".jpeg",
		"document":     "",
	}
	for name, want := range cases {
		if got := documentExt(name); got != want {
			t.Errorf("documentExt(%q) = %q, want %q", name, got, want)
		}
	}
}
