package flow

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/m5frls/gedanbot/bot/catalog"
	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/participants"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/core/logger"
)

// SelectTariff records the chosen tariff and moves the user to
// participant entry. Unknown tariffs leave the session untouched.
func (e *Engine) SelectTariff(userID int64, name string) (catalog.Tariff, error) {
	t, err := catalog.Resolve(name)
	if err != nil {
		return catalog.Tariff{}, err
	}
	e.sessions.Update(userID, func(s *session.Session) {
		s.Stage = session.StageParticipants
		s.Order = &session.OrderDraft{Tariff: t.Name}
	})
	return t, nil
}

// participantsOutcome describes one participant batch submission.
type participantsOutcome struct {
	Advanced      bool
	Tariff        catalog.Tariff
	Total         int
	People        []participants.Participant
	CountMismatch bool
	GotLines      int
	Errors        []participants.FieldError
	// StaleSession is set when the stage or draft no longer matches.
	StaleSession bool
}

// SubmitParticipants validates the batch and either advances the user
// to payment or keeps them on participant entry with the errors. The
// chosen tariff survives failed attempts.
func (e *Engine) SubmitParticipants(userID int64, raw, fallbackHandle string) participantsOutcome {
	var out participantsOutcome
	e.sessions.Update(userID, func(s *session.Session) {
		if s.Stage != session.StageParticipants || s.Order == nil {
			out.StaleSession = true
			*s = session.Session{}
			return
		}
		t, err := catalog.Resolve(s.Order.Tariff)
		if err != nil {
			out.StaleSession = true
			*s = session.Session{}
			return
		}
		out.Tariff = t

		people, errs := participants.ParseBatch(raw, t.Seats, fallbackHandle)
		if len(errs) > 0 {
			if errs[0].Line == 0 {
				out.CountMismatch = true
				out.GotLines = countLines(raw)
			}
			out.Errors = errs
			return
		}

		s.Order.Participants = people
		s.Order.Total = t.Total()
		s.Stage = session.StagePayment

		out.Advanced = true
		out.People = people
		out.Total = t.Total()
	})
	return out
}

func countLines(raw string) int {
	n := 0
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// paymentOutcome describes the proceed-to-payment transition.
type paymentOutcome struct {
	OK     bool
	Tariff string
	Total  int
}

// ProceedToPayment re-validates draft completeness before showing
// payment instructions. An incomplete draft means the session was
// corrupted or restarted mid-flow: it is cleared and the user must
// start over.
func (e *Engine) ProceedToPayment(userID int64) paymentOutcome {
	var out paymentOutcome
	e.sessions.Update(userID, func(s *session.Session) {
		d := s.Order
		if s.Stage != session.StagePayment || d == nil || d.Tariff == "" || len(d.Participants) == 0 || d.Total <= 0 {
			*s = session.Session{}
			return
		}
		s.Stage = session.StageReceipt
		out = paymentOutcome{OK: true, Tariff: d.Tariff, Total: d.Total}
	})
	return out
}

// ReceiptUpload is the metadata of an incoming receipt file.
type ReceiptUpload struct {
	FileID string
	Size   int64
	Ext    string
}

// Receipt acceptance outcomes.
var (
	errReceiptTooBig = errors.New("receipt too big")
	errReceiptBadExt = errors.New("receipt extension not accepted")
	errReceiptStale  = errors.New("session incomplete")
	errReceiptCreate = errors.New("order creation failed")
)

// receiptOutcome describes a finished receipt acceptance.
type receiptOutcome struct {
	OrderID  int64
	Tariff   string
	Total    int
	Archived bool
}

// AcceptReceipt validates the upload, creates the pending order (the
// single order-creation point), archives the file, and clears the
// session. Validation failures and create failures keep the session so
// the user can retry.
func (e *Engine) AcceptReceipt(ctx context.Context, userID int64, username string, up ReceiptUpload) (receiptOutcome, error) {
	ext := strings.ToLower(up.Ext)
	if up.Size > e.cfg.MaxReceiptBytes() {
		return receiptOutcome{}, errReceiptTooBig
	}
	if !receipts.AllowedExtension(ext) {
		return receiptOutcome{}, errReceiptBadExt
	}

	var draft session.OrderDraft
	stale := false
	e.sessions.Update(userID, func(s *session.Session) {
		if s.Stage != session.StageReceipt || s.Order == nil || s.Order.Tariff == "" || len(s.Order.Participants) == 0 {
			stale = true
			*s = session.Session{}
			return
		}
		draft = *s.Order
	})
	if stale {
		return receiptOutcome{}, errReceiptStale
	}

	order, err := e.orders.Create(ctx, orders.Order{
		UserID:       userID,
		Username:     username,
		Tariff:       draft.Tariff,
		Participants: draft.Participants,
		TotalPrice:   draft.Total,
		Status:       orders.StatusPending,
	})
	if err != nil {
		// Session stays so the buyer does not retype everything.
		return receiptOutcome{}, errReceiptCreate
	}

	out := receiptOutcome{OrderID: order.ID, Tariff: draft.Tariff, Total: draft.Total}

	// The order exists from here on. Archive problems are logged and
	// the buyer is still confirmed.
	data, err := e.fetch.Fetch(ctx, up.FileID)
	if err != nil {
		logger.SVCOrders.LogAttrs(ctx, slog.LevelError, "receipt.fetch.failed",
			slog.Int64("order_id", order.ID),
			slog.String("err", err.Error()),
		)
	} else if ref, err := e.receipts.Save(ctx, order.ID, userID, data, ext); err != nil {
		logger.SVCOrders.LogAttrs(ctx, slog.LevelError, "receipt.archive.failed",
			slog.Int64("order_id", order.ID),
			slog.String("err", err.Error()),
		)
	} else {
		out.Archived = true
		if err := e.orders.SetReceiptURL(ctx, order.ID, ref.PublicURL); err != nil {
			logger.SVCOrders.LogAttrs(ctx, slog.LevelError, "receipt.link.failed",
				slog.Int64("order_id", order.ID),
				slog.String("err", err.Error()),
			)
		}
	}

	e.sessions.Clear(userID)
	return out, nil
}

// documentExt extracts a lower-case extension from an uploaded file name.
func documentExt(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
