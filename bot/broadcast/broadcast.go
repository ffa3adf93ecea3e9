// Package broadcast lets operators fan a message out to everyone the
// bot has ever talked to.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/bot/users"
	"github.com/m5frls/gedanbot/core/logger"
	"github.com/m5frls/gedanbot/core/telegram/format"
	"github.com/m5frls/gedanbot/core/telegram/helpers"
	"github.com/m5frls/gedanbot/core/telegram/keyboard"
)

// Draft kinds.
const (
	KindText  = "text"
	KindPhoto = "photo"
)

// Callback keys wired into the registry.
const (
	CallbackConfirm = "broadcast_confirm"
	CallbackCancel  = "broadcast_cancel"
)

// Sender delivers broadcast content to one recipient. Fan-out sends
// directly, without the retrying dispatcher, so every failure counts
// exactly once.
type Sender interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendPhoto(ctx context.Context, userID int64, fileID, caption string) error
}

// Report summarises one completed fan-out.
type Report struct {
	Total  int
	Sent   int
	Failed int
}

// Engine drives the operator broadcast conversation.
type Engine struct {
	sessions *session.Store
	audience users.Registry
	out      Sender
}

// NewEngine wires the broadcast conversation.
func NewEngine(sessions *session.Store, audience users.Registry, out Sender) *Engine {
	return &Engine{sessions: sessions, audience: audience, out: out}
}

// Start puts the operator into the content stage.
func (e *Engine) Start(c tele.Context) error {
	e.sessions.Update(c.Sender().ID, func(s *session.Session) {
		*s = session.Session{Stage: session.StageBroadcastContent}
	})
	const text = `📢 <b>Режим рассылки</b>

Отправьте сообщение для рассылки:
• Текст
• Фото с подписью
• Только фото

Отмена - /cancel`
	return helpers.SendHTML(c, text)
}

// Cancel aborts the broadcast conversation from any of its stages.
func (e *Engine) Cancel(c tele.Context) error {
	e.sessions.Clear(c.Sender().ID)
	return helpers.SendText(c, "❌ Рассылка отменена.")
}

// InBroadcast reports whether the user is inside the broadcast conversation.
func (e *Engine) InBroadcast(userID int64) bool {
	stage := e.sessions.Snapshot(userID).Stage
	return stage == session.StageBroadcastContent || stage == session.StageBroadcastConfirm
}

// HandleContent consumes the operator's message in the content stage.
// Text and photo updates become the draft; anything else is ignored.
func (e *Engine) HandleContent(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	var draft session.BroadcastDraft
	switch {
	case msg.Photo != nil:
		draft = session.BroadcastDraft{
			Kind:        KindPhoto,
			PhotoFileID: msg.Photo.FileID,
			Caption:     msg.Caption,
		}
	case msg.Text != "":
		draft = session.BroadcastDraft{Kind: KindText, Text: msg.Text}
	default:
		return nil
	}

	e.sessions.Update(c.Sender().ID, func(s *session.Session) {
		s.Stage = session.StageBroadcastConfirm
		s.Broadcast = &draft
	})

	count, err := e.audience.Count(helpers.BuildContext(c))
	if err != nil {
		logger.SVCBroadcast.LogAttrs(helpers.BuildContext(c), slog.LevelError, "broadcast.audience.count_failed",
			slog.String("err", err.Error()),
		)
	}

	preview := previewText(draft)
	confirmation := fmt.Sprintf(`📋 <b>Предпросмотр рассылки</b>

%s

Количество получателей: <b>%d</b>

✅ <b>Начать рассылку?</b>`, preview, count)

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Да, начать рассылку", Unique: CallbackConfirm}},
		[]keyboard.InlineBtn{{Text: "❌ Отменить", Unique: CallbackCancel}},
	)

	if draft.Kind == KindPhoto {
		photo := &tele.Photo{File: tele.File{FileID: draft.PhotoFileID}}
		return helpers.SendPhotoHTML(c, photo, confirmation, markup)
	}
	return helpers.SendHTML(c, confirmation, markup)
}

func previewText(d session.BroadcastDraft) string {
	if d.Kind == KindPhoto {
		out := "<b>Фото для рассылки</b>"
		if d.Caption != "" {
			out += "\n\n<b>Подпись:</b>\n" + format.EscapeHTML(d.Caption)
		} else {
			out += "\n\n<i>Без подписи</i>"
		}
		return out
	}
	return "<b>Текст:</b>\n" + format.EscapeHTML(d.Text)
}

// Confirm runs the fan-out for the stored draft and reports the result.
func (e *Engine) Confirm(c tele.Context) error {
	operatorID := c.Sender().ID

	var draft *session.BroadcastDraft
	e.sessions.Update(operatorID, func(s *session.Session) {
		if s.Stage == session.StageBroadcastConfirm {
			draft = s.Broadcast
		}
		*s = session.Session{}
	})
	if draft == nil {
		return helpers.SendText(c, "❌ Ошибка: данные рассылки не найдены.")
	}

	ctx := helpers.BuildContext(c)
	recipients, err := e.audience.List(ctx)
	if err != nil {
		return helpers.SendText(c, "❌ Не удалось получить список получателей.")
	}

	progress, progressErr := c.Bot().Send(
		tele.ChatID(c.Chat().ID),
		fmt.Sprintf("🔄 Начинаю рассылку для %d пользователей...", len(recipients)),
	)

	report := e.FanOut(ctx, *draft, recipients)

	result := fmt.Sprintf(`✅ <b>Рассылка завершена!</b>

📊 <b>Статистика:</b>
• Всего получателей: %d
• ✅ Успешно: %d
• ❌ Не удалось: %d`, report.Total, report.Sent, report.Failed)

	if progressErr == nil && progress != nil {
		_, err := c.Bot().Edit(progress, result, &tele.SendOptions{ParseMode: tele.ModeHTML})
		if err == nil {
			return nil
		}
	}
	return helpers.SendHTML(c, result)
}

// CancelCallback aborts from the confirmation keyboard.
func (e *Engine) CancelCallback(c tele.Context) error {
	e.sessions.Clear(c.Sender().ID)
	return helpers.EditOrSendHTML(c, "❌ Рассылка отменена.")
}

// FanOut delivers the draft to every recipient sequentially. A failed
// recipient is counted and skipped; nothing is retried. An empty
// recipient list yields an immediate zero report.
func (e *Engine) FanOut(ctx context.Context, draft session.BroadcastDraft, recipients []int64) Report {
	report := Report{Total: len(recipients)}

	for _, userID := range recipients {
		var err error
		switch draft.Kind {
		case KindPhoto:
			err = e.out.SendPhoto(ctx, userID, draft.PhotoFileID, draft.Caption)
		default:
			err = e.out.SendText(ctx, userID, draft.Text)
		}
		if err != nil {
			report.Failed++
			logger.SVCBroadcast.LogAttrs(ctx, slog.LevelWarn, "broadcast.send.failed",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			continue
		}
		report.Sent++
	}

	logger.SVCBroadcast.LogAttrs(ctx, slog.LevelInfo, "broadcast.completed",
		slog.Int("recipients", report.Total),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
	)
	return report
}
