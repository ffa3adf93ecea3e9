// Package flow drives the buyer conversation from rules acceptance to
// receipt submission.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tele "gopkg.in/telebot.v4"

	"github.com/m5frls/gedanbot/bot/broadcast"
	"github.com/m5frls/gedanbot/bot/catalog"
	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/bot/users"
	coreconfig "github.com/m5frls/gedanbot/core/config"
	"github.com/m5frls/gedanbot/core/logger"
	"github.com/m5frls/gedanbot/core/telegram/helpers"
	"github.com/m5frls/gedanbot/core/telegram/keyboard"
)

// Callback keys wired into the registry.
const (
	CallbackRulesAccept = "rules_accept"
	CallbackShowTariffs = "show_tariffs"
	CallbackTariffCat   = "tariff_cat"
	CallbackTariffPick  = "tariff_pick"
	CallbackShowAll     = "show_all"
	CallbackToPayment   = "to_payment"
	CallbackSendReceipt = "send_receipt"
	CallbackBackMain    = "back_main"
	CallbackBackTariffs = "back_tariffs"
	CallbackBackCats    = "back_cats"
)

// FileFetcher downloads a Telegram file by its file ID.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Engine is the order conversation engine. It implements the message
// router's FSM contract.
type Engine struct {
	cfg      *coreconfig.Config
	sessions *session.Store
	orders   orders.Store
	audience users.Registry
	receipts receipts.Store
	fetch    FileFetcher

	broadcasts *broadcast.Engine
}

// NewEngine wires the order conversation.
func NewEngine(
	cfg *coreconfig.Config,
	sessions *session.Store,
	orderStore orders.Store,
	audience users.Registry,
	receiptStore receipts.Store,
	fetch FileFetcher,
	broadcasts *broadcast.Engine,
) *Engine {
	return &Engine{
		cfg:        cfg,
		sessions:   sessions,
		orders:     orderStore,
		audience:   audience,
		receipts:   receiptStore,
		fetch:      fetch,
		broadcasts: broadcasts,
	}
}

// InProgress reports whether the user has an active conversation.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// recordUser registers the sender in the broadcast audience. Failures
// are logged and ignored: audience tracking never blocks the flow.
func (e *Engine) recordUser(c tele.Context) {
	ctx := helpers.BuildContext(c)
	if err := e.audience.Record(ctx, c.Sender().ID); err != nil {
		logger.SVCUsers.LogAttrs(ctx, slog.LevelWarn, "audience.record.failed",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) mainMenuMarkup(userID int64) *tele.ReplyMarkup {
	rows := [][]string{
		{BtnStart},
		{BtnInfo},
		{BtnTariffs, BtnHelp},
	}
	if e.cfg.IsAdmin(userID) {
		rows = append(rows, []string{BtnAdmin})
	}
	return keyboard.ReplyButtons(rows...)
}

// ShowMainMenu renders the main menu with the reply keyboard.
func (e *Engine) ShowMainMenu(c tele.Context) error {
	return helpers.SendHTML(c, mainMenuText, e.mainMenuMarkup(c.Sender().ID))
}

// CmdStart handles /start: reset, register for broadcasts, main menu.
func (e *Engine) CmdStart(c tele.Context) error {
	e.sessions.Clear(c.Sender().ID)
	e.recordUser(c)
	return e.ShowMainMenu(c)
}

// CmdReset clears any in-flight conversation.
func (e *Engine) CmdReset(c tele.Context) error {
	e.sessions.Clear(c.Sender().ID)
	return helpers.SendText(c, "✅ Состояние сброшено. Начните заново с /start")
}

// CmdCancel aborts a broadcast in progress, or acts like /reset.
func (e *Engine) CmdCancel(c tele.Context) error {
	if e.broadcasts != nil && e.broadcasts.InBroadcast(c.Sender().ID) {
		return e.broadcasts.Cancel(c)
	}
	return e.CmdReset(c)
}

// HandleMenuText dispatches reply-keyboard button presses; any other
// text outside a conversation falls back to the main menu.
func (e *Engine) HandleMenuText(c tele.Context) error {
	switch c.Text() {
	case BtnStart:
		e.sessions.Clear(c.Sender().ID)
		e.recordUser(c)
		return helpers.SendHTML(c, welcomeText(e.cfg), e.mainMenuMarkup(c.Sender().ID))
	case BtnInfo:
		e.recordUser(c)
		return e.showEventInfo(c)
	case BtnTariffs:
		e.recordUser(c)
		return e.showRules(c)
	case BtnHelp:
		e.recordUser(c)
		return e.showHelp(c)
	case BtnAdmin:
		if !e.cfg.IsAdmin(c.Sender().ID) {
			return helpers.SendText(c, "❌ У вас нет доступа к консоли админа")
		}
		return helpers.SendHTML(c, adminConsoleText)
	}
	return e.ShowMainMenu(c)
}

func (e *Engine) showEventInfo(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🎫 ВЫБРАТЬ ТАРИФ", Unique: CallbackShowTariffs}},
		[]keyboard.InlineBtn{{Text: "⬅️ НАЗАД", Unique: CallbackBackMain}},
	)
	text := eventInfoText(e.cfg)

	if path := e.cfg.Event.ImagePath; path != "" {
		if _, err := os.Stat(path); err == nil {
			photo := &tele.Photo{File: tele.FromDisk(path)}
			return helpers.SendPhotoHTML(c, photo, text, markup)
		}
	}
	return helpers.SendHTML(c, text, markup)
}

func (e *Engine) showHelp(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "⬅️ НАЗАД", Unique: CallbackBackMain}},
	)
	return helpers.SendHTML(c, helpText(e.cfg), markup)
}

// showRules is the only entry into the order conversation.
func (e *Engine) showRules(c tele.Context) error {
	e.sessions.Update(c.Sender().ID, func(s *session.Session) {
		*s = session.Session{Stage: session.StageRules}
	})
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Я ознакомлен(-а) и согласен(-а)", Unique: CallbackRulesAccept}},
		[]keyboard.InlineBtn{{Text: "⬅️ НАЗАД", Unique: CallbackBackMain}},
	)
	return helpers.SendHTML(c, rulesText, markup)
}

// ManagerHandler consumes text, document, and photo updates for users
// with an active conversation, routed here by the message router.
func (e *Engine) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	stage := e.sessions.Snapshot(userID).Stage

	switch stage {
	case session.StageBroadcastContent:
		if e.broadcasts != nil {
			return e.broadcasts.HandleContent(c)
		}
		return nil
	case session.StageBroadcastConfirm:
		// Waiting for the inline confirm/cancel buttons.
		return nil
	case session.StageParticipants:
		return e.handleParticipantsText(c)
	case session.StageReceipt:
		return e.handleReceiptUpdate(c)
	default:
		// Rules, tariff, and payment advance through inline buttons;
		// free text there is stage-mismatched input.
		e.sessions.Clear(userID)
		return e.ShowMainMenu(c)
	}
}

func (e *Engine) handleParticipantsText(c tele.Context) error {
	if c.Text() == "" {
		return helpers.SendHTML(c, "❌ Пришлите данные участников текстом.")
	}

	out := e.SubmitParticipants(c.Sender().ID, c.Text(), c.Sender().Username)
	switch {
	case out.StaleSession:
		return helpers.SendText(c, "❌ Ошибка, начните снова с /start")
	case out.CountMismatch:
		return helpers.SendHTML(c, countMismatchText(out.Tariff, out.GotLines))
	case len(out.Errors) > 0:
		return helpers.SendHTML(c, batchErrorsText(out.Errors))
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "💳 ПЕРЕЙТИ К ОПЛАТЕ", Unique: CallbackToPayment}},
		[]keyboard.InlineBtn{{Text: "⬅️ ВЫБРАТЬ ДРУГОЙ ТАРИФ", Unique: CallbackBackTariffs}},
	)
	return helpers.SendHTML(c, orderSummaryText(out.Tariff, out.People, out.Total), markup)
}

func (e *Engine) handleReceiptUpdate(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	var up ReceiptUpload
	switch {
	case msg.Document != nil:
		up = ReceiptUpload{
			FileID: msg.Document.FileID,
			Size:   msg.Document.FileSize,
			Ext:    documentExt(msg.Document.FileName),
		}
	case msg.Photo != nil:
		up = ReceiptUpload{
			FileID: msg.Photo.FileID,
			Size:   msg.Photo.FileSize,
			Ext:    ".jpg",
		}
	default:
		// Receipt stage expects a file; re-emit the instructions.
		return helpers.SendHTML(c, receiptPromptText(e.cfg))
	}

	ctx := helpers.BuildContext(c)
	out, err := e.AcceptReceipt(ctx, c.Sender().ID, c.Sender().Username, up)
	switch {
	case errors.Is(err, errReceiptTooBig):
		return helpers.SendText(c, fileTooBigText(e.cfg.Receipts.MaxFileSizeMB, up.Size))
	case errors.Is(err, errReceiptBadExt):
		return helpers.SendText(c, badExtensionText(up.Ext))
	case errors.Is(err, errReceiptStale):
		return helpers.SendText(c, "❌ Ошибка данных, начните заново с /start")
	case errors.Is(err, errReceiptCreate):
		return helpers.SendText(c, "❌ Ошибка при сохранении заказа. Попробуйте еще раз или свяжитесь с поддержкой.")
	case err != nil:
		return err
	}

	return helpers.SendHTML(c, receiptAcceptedText(e.cfg, out.OrderID, out.Tariff, out.Total, out.Archived))
}

func categoryMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🎅 ДЛЯ ПАРНЕЙ", Unique: CallbackTariffCat, Data: string(catalog.CategoryMale)},
			{Text: "👸 ДЛЯ ДЕВУШЕК", Unique: CallbackTariffCat, Data: string(catalog.CategoryFemale)},
		},
		[]keyboard.InlineBtn{
			{Text: "❤️ ДЛЯ ПАР", Unique: CallbackTariffCat, Data: string(catalog.CategoryCouple)},
			{Text: "⭐ VIP ТАРИФЫ", Unique: CallbackTariffCat, Data: string(catalog.CategoryVIP)},
		},
		[]keyboard.InlineBtn{
			{Text: "📋 ВСЕ ТАРИФЫ", Unique: CallbackShowAll},
		},
	)
}

// showTariffMenu moves the user to tariff selection.
func (e *Engine) showTariffMenu(c tele.Context, edit bool) error {
	e.sessions.Update(c.Sender().ID, func(s *session.Session) {
		s.Stage = session.StageTariff
		s.Order = nil
	})
	if edit {
		return helpers.EditOrSendHTML(c, tariffsIntroText, categoryMenuMarkup())
	}
	return helpers.SendHTML(c, tariffsIntroText, categoryMenuMarkup())
}
