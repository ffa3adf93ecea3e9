package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/bot/users"
)

type fakeSender struct {
	texts  []int64
	photos []int64
	fail   map[int64]error
}

func (f *fakeSender) SendText(_ context.Context, userID int64, _ string) error {
	if err := f.fail[userID]; err != nil {
		return err
	}
	f.texts = append(f.texts, userID)
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, userID int64, _, _ string) error {
	if err := f.fail[userID]; err != nil {
		return err
	}
	f.photos = append(f.photos, userID)
	return nil
}

func newTestEngine(out Sender) *Engine {
	return NewEngine(session.NewStore(), users.NewMemoryRegistry(), out)
}

func TestFanOutText(t *testing.T) {
	out := &fakeSender{}
	e := newTestEngine(out)

	draft := session.BroadcastDraft{Kind: KindText, Text: "Привет!"}
	report := e.FanOut(context.Background(), draft, []int64{1, 2, 3})

	if report.Total != 3 || report.Sent != 3 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(out.texts) != 3 {
		t.Fatalf("sent to %v", out.texts)
	}
}

func TestFanOutCountsFailuresAndContinues(t *testing.T) {
	out := &fakeSender{fail: map[int64]error{2: errors.New("blocked")}}
	e := newTestEngine(out)

	draft := session.BroadcastDraft{Kind: KindText, Text: "Привет!"}
	report := e.FanOut(context.Background(), draft, []int64{1, 2, 3})

	if report.Total != 3 || report.Sent != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	// user 3 is still reached after user 2 fails
	if len(out.texts) != 2 || out.texts[1] != 3 {
		t.Fatalf("sent to %v", out.texts)
	}
}

func TestFanOutZeroRecipients(t *testing.T) {
	out := &fakeSender{}
	e := newTestEngine(out)

	report := e.FanOut(context.Background(), session.BroadcastDraft{Kind: KindText, Text: "x"}, nil)
	if report != (Report{}) {
		t.Fatalf("report = %+v, want zero", report)
	}
	if len(out.texts) != 0 || len(out.photos) != 0 {
		t.Fatal("no sends expected for an empty audience")
	}
}

func TestFanOutPhoto(t *testing.T) {
	out := &fakeSender{}
	e := newTestEngine(out)

	draft := session.BroadcastDraft{Kind: KindPhoto, PhotoFileID: "file123", Caption: "подпись"}
	report := e.FanOut(context.Background(), draft, []int64{5})

	if report.Sent != 1 || len(out.photos) != 1 || out.photos[0] != 5 {
		t.Fatalf("report = %+v, photos = %v", report, out.photos)
	}
}

func TestPreviewText(t *testing.T) {
	text := previewText(session.BroadcastDraft{Kind: KindText, Text: "a < b"})
	if text != "<b>Текст:</b>\na &lt; b" {
		t.Fatalf("preview = %q", text)
	}

	photo := previewText(session.BroadcastDraft{Kind: KindPhoto})
	if photo != "<b>Фото для рассылки</b>\n\n<i>Без подписи</i>" {
		t.Fatalf("preview = %q", photo)
	}

	captioned := previewText(session.BroadcastDraft{Kind: KindPhoto, Caption: "ёлка"})
	if captioned != "<b>Фото для рассылки</b>\n\n<b>Подпись:</b>\nёлка" {
		t.Fatalf("preview = %q", captioned)
	}
}

func TestInBroadcast(t *testing.T) {
	sessions := session.NewStore()
	e := NewEngine(sessions, users.NewMemoryRegistry(), &fakeSender{})

	if e.InBroadcast(1) {
		t.Fatal("idle user must not be in broadcast")
	}
	sessions.Update(1, func(s *session.Session) { s.Stage = session.StageBroadcastContent })
	if !e.InBroadcast(1) {
		t.Fatal("content stage counts as in broadcast")
	}
	sessions.Update(1, func(s *session.Session) { s.Stage = session.StageParticipants })
	if e.InBroadcast(1) {
		t.Fatal("order stages are not broadcast stages")
	}
}
