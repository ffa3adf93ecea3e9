package moderation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	tg "github.com/m5frls/gedanbot/core/telegram"
	"github.com/m5frls/gedanbot/core/telegram/callbacks"
	"github.com/m5frls/gedanbot/core/telegram/format"
	"github.com/m5frls/gedanbot/core/telegram/helpers"
	"github.com/m5frls/gedanbot/core/telegram/keyboard"
)

// Callback keys wired into the registry.
const (
	CallbackApprove = "order_approve"
	CallbackCancel  = "order_cancel"
	CallbackRefresh = "order_refresh"
)

// RegisterCallbacks wires the per-order management callbacks.
func (m *Controller) RegisterCallbacks(reg *tg.Registry) error {
	entries := map[string]tele.HandlerFunc{
		CallbackApprove: m.cbApprove,
		CallbackCancel:  m.cbCancel,
		CallbackRefresh: m.cbRefresh,
	}
	for key, h := range entries {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	return nil
}

// isOperator guards every moderation entry point. Callbacks are not
// covered by the command admin middleware, so the check lives here.
func (m *Controller) isOperator(c tele.Context) bool {
	return m.cfg.IsAdmin(c.Sender().ID)
}

func denyCallback(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: accessDeniedText, ShowAlert: true})
}

func (m *Controller) cbApprove(c tele.Context) error {
	if !m.isOperator(c) {
		return denyCallback(c)
	}
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Некорректный номер заказа", ShowAlert: true})
	}

	ctx := helpers.BuildContext(c)
	if _, err := m.Approve(ctx, orderID); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Заказ не найден", ShowAlert: true})
		}
		return c.Respond(&tele.CallbackResponse{Text: "❌ Не удалось подтвердить заказ", ShowAlert: true})
	}
	return helpers.EditOrSendHTML(c, fmt.Sprintf("✅ Заказ #%d подтвержден и перемещен в оплаченные!", orderID))
}

func (m *Controller) cbCancel(c tele.Context) error {
	if !m.isOperator(c) {
		return denyCallback(c)
	}
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Некорректный номер заказа", ShowAlert: true})
	}

	ctx := helpers.BuildContext(c)
	if _, err := m.Cancel(ctx, orderID); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Заказ не найден", ShowAlert: true})
		}
		return c.Respond(&tele.CallbackResponse{Text: "❌ Не удалось отменить заказ", ShowAlert: true})
	}
	return helpers.EditOrSendHTML(c, fmt.Sprintf("❌ Заказ #%d отменен! Пользователь уведомлен.", orderID))
}

func (m *Controller) cbRefresh(c tele.Context) error {
	if !m.isOperator(c) {
		return denyCallback(c)
	}
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Некорректный номер заказа", ShowAlert: true})
	}

	ctx := helpers.BuildContext(c)
	ref, err := m.RefreshReceipt(ctx, orderID)
	if err != nil {
		if errors.Is(err, receipts.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Чек не найден в хранилище", ShowAlert: true})
		}
		if errors.Is(err, orders.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Заказ не найден", ShowAlert: true})
		}
		return c.Respond(&tele.CallbackResponse{Text: "❌ Ошибка обновления", ShowAlert: true})
	}
	if err := helpers.SendHTML(c, receiptInfoText(orderID, ref)); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "✅ Информация обновлена"})
}

// CmdStats reports the order statistics aggregate.
func (m *Controller) CmdStats(c tele.Context) error {
	if !m.isOperator(c) {
		return helpers.SendText(c, accessDeniedText)
	}
	ctx := helpers.BuildContext(c)
	now := time.Now()
	stats, err := m.orders.Statistics(ctx, now)
	if err != nil {
		return helpers.SendText(c, "❌ Ошибка получения статистики")
	}
	return helpers.SendHTML(c, statsText(stats, now))
}

// CmdOrders lists the 15 most recent orders.
func (m *Controller) CmdOrders(c tele.Context) error {
	if !m.isOperator(c) {
		return helpers.SendText(c, accessDeniedText)
	}
	ctx := helpers.BuildContext(c)
	list, err := m.orders.ListRecent(ctx, 15)
	if err != nil {
		return helpers.SendText(c, "❌ Ошибка получения заказов")
	}
	if len(list) == 0 {
		return helpers.SendText(c, "📭 В базе нет заказов")
	}
	return helpers.SendHTML(c, ordersListText(list))
}

// CmdPending sends every pending order as a full card with the receipt
// attached and a management keyboard.
func (m *Controller) CmdPending(c tele.Context) error {
	if !m.isOperator(c) {
		return helpers.SendText(c, accessDeniedText)
	}
	ctx := helpers.BuildContext(c)
	list, err := m.orders.ListByStatus(ctx, orders.StatusPending, 0)
	if err != nil {
		return helpers.SendText(c, "❌ Ошибка получения заказов")
	}
	if len(list) == 0 {
		return helpers.SendText(c, "✅ Нет заказов ожидающих оплаты")
	}

	if err := helpers.SendHTML(c, pendingHeaderText(list)); err != nil {
		return err
	}

	for _, o := range list {
		m.sendOrderCard(c, o)
	}

	return helpers.SendHTML(c, pendingFooterText(list))
}

// sendOrderCard emits one pending order: card text (with the receipt
// file when the archive has it) plus the management keyboard. Errors
// per order are reported inline and do not stop the listing.
func (m *Controller) sendOrderCard(c tele.Context, o orders.Order) {
	ctx := helpers.BuildContext(c)
	card := orderCardText(o)

	ref, err := m.receipts.Find(ctx, o.ID)
	switch {
	case err == nil:
		caption := card + receiptCaption(ref)
		if blob, openErr := m.receipts.Open(ctx, ref.Name); openErr == nil {
			m.sendReceiptFile(c, ref, blob, caption)
		} else {
			_ = helpers.SendHTML(c, card+"\n❌ <b>Не удалось загрузить файл чека</b>"+receiptLink(ref))
		}
	case errors.Is(err, receipts.ErrNotFound):
		_ = helpers.SendHTML(c, card+"\n❌ <b>Чек не прикреплен</b>")
	default:
		_ = helpers.SendHTML(c, card+"\n❌ <b>Ошибка чтения чека</b>")
	}

	payload := fmt.Sprintf("%d", o.ID)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Подтвердить оплату", Unique: CallbackApprove, Data: payload},
			{Text: "❌ Отменить заказ", Unique: CallbackCancel, Data: payload},
		},
		[]keyboard.InlineBtn{
			{Text: "🔄 Обновить чек", Unique: CallbackRefresh, Data: payload},
		},
	)
	appendContactButton(markup, o.UserID)

	_ = helpers.SendHTML(c, fmt.Sprintf("⚡ <b>Управление заказа #%d</b>", o.ID), markup)
}

// appendContactButton adds a tg://user deep link row for reaching the buyer.
func appendContactButton(markup *tele.ReplyMarkup, userID int64) {
	btn := tele.InlineButton{
		Text: "📞 Связаться с покупателем",
		URL:  fmt.Sprintf("tg://user?id=%d", userID),
	}
	markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{btn})
}

func receiptCaption(ref receipts.Ref) string {
	kind := "Фото"
	if strings.HasSuffix(ref.Name, ".pdf") {
		kind = "PDF"
	}
	return fmt.Sprintf("\n📎 <b>Чек прикреплен</b> (%s)", kind) + receiptLink(ref)
}

func receiptLink(ref receipts.Ref) string {
	if ref.PublicURL == "" {
		return ""
	}
	return "\n🔗 " + format.Link(ref.PublicURL, "Ссылка на чек")
}

func (m *Controller) sendReceiptFile(c tele.Context, ref receipts.Ref, blob []byte, caption string) {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if strings.HasSuffix(ref.Name, ".pdf") {
		doc := &tele.Document{
			File:     tele.FromReader(bytes.NewReader(blob)),
			FileName: ref.Name,
			Caption:  caption,
		}
		_ = c.Send(doc, opts)
		return
	}
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(blob)),
		Caption: caption,
	}
	_ = c.Send(photo, opts)
}

// CmdPaid lists paid orders with the revenue footer.
func (m *Controller) CmdPaid(c tele.Context) error {
	if !m.isOperator(c) {
		return helpers.SendText(c, accessDeniedText)
	}
	ctx := helpers.BuildContext(c)
	list, err := m.orders.ListByStatus(ctx, orders.StatusPaid, 0)
	if err != nil {
		return helpers.SendText(c, "❌ Ошибка получения заказов")
	}
	if len(list) == 0 {
		return helpers.SendText(c, "💰 Нет оплаченных заказов")
	}
	return helpers.SendHTML(c, paidListText(list))
}

// CmdUsers reports the broadcast audience size.
func (m *Controller) CmdUsers(c tele.Context) error {
	if !m.isOperator(c) {
		return helpers.SendText(c, accessDeniedText)
	}
	ctx := helpers.BuildContext(c)
	count, err := m.audience.Count(ctx)
	if err != nil {
		return helpers.SendText(c, "❌ Ошибка получения статистики пользователей")
	}
	return helpers.SendHTML(c, usersStatsText(count))
}
