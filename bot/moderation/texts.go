package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	coreconfig "github.com/m5frls/gedanbot/core/config"
	"github.com/m5frls/gedanbot/core/telegram/format"
)

const accessDeniedText = "❌ У вас нет доступа"

func approvedDM(cfg *coreconfig.Config, orderID int64) string {
	return fmt.Sprintf(`🎉 <b>ВАШ ЗАКАЗ ПОДТВЕРЖДЕН!</b>

Заказ #%d успешно подтвержден администратором.
Ждем вас на мероприятии!

📅 <b>%s</b>
🗓 %s
📍 %s

💬 <b>По вопросам:</b> %s`,
		orderID,
		format.EscapeHTML(cfg.Event.Title),
		format.EscapeHTML(cfg.Event.Date),
		format.EscapeHTML(cfg.Event.Venue),
		format.EscapeHTML(cfg.Support.Contact),
	)
}

func canceledDM(cfg *coreconfig.Config, orderID int64, o orders.Order) string {
	return fmt.Sprintf(`❌ <b>ВАШ ЗАКАЗ ОТМЕНЕН</b>

Заказ #%d был отменен администратором.
Если у вас есть вопросы, пожалуйста, свяжитесь с поддержкой.

<b>Детали отмененного заказа:</b>
• Тариф: %s
• Участники: %d человек
• Сумма: %d₽

💬 <b>По вопросам:</b> %s`,
		orderID,
		format.EscapeHTML(o.Tariff),
		len(o.Participants),
		o.TotalPrice,
		format.EscapeHTML(cfg.Support.Contact),
	)
}

func statsText(s orders.Statistics, now time.Time) string {
	return fmt.Sprintf(`<b>📊 СТАТИСТИКА ЗАКАЗОВ</b>

🎫 <b>ОБЩАЯ СТАТИСТИКА:</b>
• Всего заказов: %d
• ✅ Оплаченных: %d
• ⏳ Ожидают оплаты: %d
• 👥 Уникальных пользователей: %d
• 💰 Общая выручка: %d₽

📅 <b>ЗА СЕГОДНЯ:</b>
• Новых заказов: %d
• 💰 Выручка сегодня: %d₽

🕐 <b>Последнее обновление:</b> %s`,
		s.TotalOrders, s.PaidOrders, s.PendingOrders, s.UniqueUsers, s.TotalRevenue,
		s.TodayOrders, s.TodayRevenue,
		now.Format("15:04:05"),
	)
}

func statusEmoji(s orders.Status) string {
	switch s {
	case orders.StatusPaid:
		return "✅"
	case orders.StatusCanceled:
		return "❌"
	}
	return "⏳"
}

func ordersListText(list []orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>📋 ПОСЛЕДНИЕ %d ЗАКАЗОВ:</b>\n\n", len(list))
	for _, o := range list {
		fmt.Fprintf(&b, "%s <b>Заказ #%d</b>\n", statusEmoji(o.Status), o.ID)
		fmt.Fprintf(&b, "👤 @%s (ID: %d)\n", format.EscapeHTML(o.Username), o.UserID)
		fmt.Fprintf(&b, "🎫 Тариф: %s\n", format.EscapeHTML(o.Tariff))
		fmt.Fprintf(&b, "💰 Сумма: %d₽\n", o.TotalPrice)
		fmt.Fprintf(&b, "👥 Участников: %d\n", len(o.Participants))
		fmt.Fprintf(&b, "📅 Дата: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "📊 Статус: %s\n\n", o.Status)
	}
	return b.String()
}

func pendingHeaderText(list []orders.Order) string {
	total := 0
	for _, o := range list {
		total += o.TotalPrice
	}
	return fmt.Sprintf("<b>⏳ ЗАКАЗЫ ОЖИДАЮЩИЕ ОПЛАТЫ</b>\n\n📊 Всего: %d заказов на сумму %d₽\n", len(list), total)
}

func orderCardText(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🎫 ЗАКАЗ #%d</b>\n\n", o.ID)
	b.WriteString("👤 <b>Покупатель:</b>\n")
	fmt.Fprintf(&b, "• ID: %d\n", o.UserID)
	fmt.Fprintf(&b, "• Username: @%s\n\n", format.EscapeHTML(o.Username))
	b.WriteString("📋 <b>Информация о заказе:</b>\n")
	fmt.Fprintf(&b, "• Тариф: %s\n", format.EscapeHTML(o.Tariff))
	fmt.Fprintf(&b, "• Сумма: %d₽\n", o.TotalPrice)
	fmt.Fprintf(&b, "• Дата: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "• Статус: %s\n\n", o.Status)
	fmt.Fprintf(&b, "👥 <b>Участники (%d чел.):</b>\n", len(o.Participants))
	for i, p := range o.Participants {
		fmt.Fprintf(&b, "\n<b>Участник %d:</b>\n", i+1)
		fmt.Fprintf(&b, "• ФИО: %s\n", format.EscapeHTML(p.FullName))
		fmt.Fprintf(&b, "• Telegram: %s\n", format.EscapeHTML(p.Telegram))
		fmt.Fprintf(&b, "• Телефон: %s\n", format.EscapeHTML(p.Phone))
	}
	return b.String()
}

func pendingFooterText(list []orders.Order) string {
	total, people := 0, 0
	for _, o := range list {
		total += o.TotalPrice
		people += len(o.Participants)
	}
	return fmt.Sprintf(`✅ <b>ОБРАБОТКА ЗАВЕРШЕНА</b>

📈 <b>Итоговая статистика:</b>
• 📋 Всего заказов: %d
• 💰 Общая сумма: %d₽
• 👥 Всего участников: %d

💡 <b>Быстрые команды:</b>
Используйте кнопки выше для управления заказами`,
		len(list), total, people)
}

func paidListText(list []orders.Order) string {
	var b strings.Builder
	b.WriteString("<b>✅ ОПЛАЧЕННЫЕ ЗАКАЗЫ:</b>\n\n")
	shown := list
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, o := range shown {
		fmt.Fprintf(&b, "🎫 <b>Заказ #%d</b>\n", o.ID)
		fmt.Fprintf(&b, "👤 @%s (ID: %d)\n", format.EscapeHTML(o.Username), o.UserID)
		fmt.Fprintf(&b, "📋 Тариф: %s\n", format.EscapeHTML(o.Tariff))
		fmt.Fprintf(&b, "💰 Сумма: %d₽\n", o.TotalPrice)
		fmt.Fprintf(&b, "👥 Участников: %d\n", len(o.Participants))
		fmt.Fprintf(&b, "📅 Дата: %s\n\n", o.CreatedAt.Format("2006-01-02 15:04"))
	}
	if len(list) > 10 {
		fmt.Fprintf(&b, "📎 ... и еще %d заказов\n", len(list)-10)
	}
	total := 0
	for _, o := range list {
		total += o.TotalPrice
	}
	fmt.Fprintf(&b, "💰 <b>Общая выручка:</b> %d₽", total)
	return b.String()
}

func usersStatsText(count int) string {
	return fmt.Sprintf(`<b>📊 СТАТИСТИКА ПОЛЬЗОВАТЕЛЕЙ ДЛЯ РАССЫЛКИ</b>

👥 <b>Всего пользователей:</b> %d

💡 <b>Как добавляются пользователи:</b>
• Автоматически при команде /start
• Автоматически при нажатии "🚀 Старт"
• Автоматически при просмотре тарифов
• Автоматически при запросе информации
• Автоматически при запросе помощи

📈 <b>Охват рассылки:</b> %d пользователей

⚡ <b>Рассылка:</b> /broadcast`,
		count, count)
}

func receiptInfoText(orderID int64, ref receipts.Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔄 <b>Обновленная информация по заказу #%d</b>\n\n", orderID)
	fmt.Fprintf(&b, "📎 Чек: %s\n", format.EscapeHTML(ref.Name))
	if ref.PublicURL != "" {
		fmt.Fprintf(&b, "🔗 Ссылка: %s\n", format.EscapeHTML(ref.PublicURL))
	}
	fmt.Fprintf(&b, "📏 Размер: %d байт\n", ref.Size)
	return b.String()
}
