package flow

import (
	"fmt"
	"strings"

	"github.com/m5frls/gedanbot/bot/catalog"
	"github.com/m5frls/gedanbot/bot/participants"
	coreconfig "github.com/m5frls/gedanbot/core/config"
	"github.com/m5frls/gedanbot/core/telegram/format"
)

// Reply keyboard button labels.
const (
	BtnStart   = "🚀 Старт"
	BtnInfo    = "📅 Информация о мероприятии"
	BtnTariffs = "🎫 Посмотреть тарифы"
	BtnHelp    = "💬 Помощь"
	BtnAdmin   = "👨‍💼 Консоль Админа"
)

const mainMenuText = `<b>🎫 ОФИЦИАЛЬНЫЙ БОТ ДЛЯ ПОКУПКИ БИЛЕТОВ ОТ GEDAN</b>

Привет! Я помогу тебе приобрести билеты на наши мероприятия.
Выбери нужный раздел ниже 👇`

func welcomeText(cfg *coreconfig.Config) string {
	return fmt.Sprintf(`<b>🎫 ДОБРО ПОЖАЛОВАТЬ В ОФИЦИАЛЬНЫЙ БОТ GEDAN!</b>

Я - твой помощник в мире незабываемых мероприятий! 🎭

✨ <b>Что я умею:</b>
• Продавать билеты на лучшие вечеринки GEDAN
• Помогать выбрать подходящий тариф
• Обеспечивать быструю и безопасную оплату
• Предоставлять всю информацию о мероприятиях

🎯 <b>Ближайшее событие:</b>
<b>%s</b> 🎄✨
%s | %s

Готовы окунуться в атмосферу новогодней магии? Выбирай раздел ниже! 👇`,
		format.EscapeHTML(cfg.Event.Title),
		format.EscapeHTML(cfg.Event.Date),
		format.EscapeHTML(cfg.Event.Venue),
	)
}

func eventInfoText(cfg *coreconfig.Config) string {
	return fmt.Sprintf(`<b>%s 🎄✨</b>

🗓 <b>Когда:</b> %s
📍 <b>Место:</b> %s
📌 <b>Адрес:</b> %s

✨ <b>Что ждёт внутри:</b>
• 🎁 Игры и подарки: Новогодние розыгрыши и сюрпризы для всех гостей
• 🍹 Коктейльная карта: От классики до авторских рецептов
• 🎅 Главный звук: Мощный DJ-сет, где хиты этого года встретятся с новогодней классикой
• 🍪 Уютные зоны: Приватные комнаты для тёплых бесед и особых моментов
• 🏠 Русская баня, бильярд и другие приятные мелочи

🎯 <b>Бонусы:</b>
• 🖼️ Лакей: встречает вас на станции Захарово с 17:30 (Горьковское направление) и заказывает такси (до нашего дома и обратно до станции до 5 утра!)
• 💤 Часы сна: с 5 до 11 утра - соблюдаем тишину
• 🔄 Возможность передать комнату другому участнику

⚡ <i>Дамы и господа! Стартуем в Новый год вместе с Gedan! Ждём абсолютно каждого на нашей праздничной вечеринке!</i>

Готовы стать частью самого эпицентра праздника? Выбирай тариф ниже!`,
		format.EscapeHTML(cfg.Event.Title),
		format.EscapeHTML(cfg.Event.Date),
		format.EscapeHTML(cfg.Event.Venue),
		format.EscapeHTML(cfg.Event.Address),
	)
}

const rulesText = `<b>ВАЖНО!</b>

Правила площадки:
- Посещение территории дома возможно только при наличии оригиналов соответствующих документов.
- Каждый участник несет личную ответственность за свои действия, состояние и сохранность своих вещей.
- Пронос алкогольной продукции и еды на территорию дома запрещен.
- Наркотические вещества строго запрещены. За нарушение — штраф 10 000 ₽ и удаление с мероприятия без возврата денег.
- Курение разрешено только в специально отведённой зоне на улице.
- Запрещено проносить оружие, колюще-режущие предметы и опасные вещества.
- Участники с заболеваниями обязаны иметь при себе необходимые лекарства и следить за своим здоровьем самостоятельно.
- Нарушение законов РФ влечет ответственность по законодательству.
- Требования организаторов обязаны для исполнения.
- Без оплаты билета вход невозможен.
- При нарушении правил организаторы вправе удалить участника без возврата денежных средств.

Нажмите кнопку ниже, чтобы продолжить`

const tariffsIntroText = `<b>🎫 ВЫБЕРИ СВОЙ ПУТЬ НА NEW YEAR GEDAN PARTY</b>

Каждый тариф — это не просто билет, это твой уникальный опыт и комьюнити!`

func allTariffsText() string {
	var b strings.Builder
	b.WriteString("<b>🎫 ВСЕ ТАРИФЫ НА NEW YEAR GEDAN PARTY</b>\n")

	sections := []struct {
		title string
		cat   catalog.Category
	}{
		{"🎅 <b>ДЛЯ ПАРНЕЙ:</b>", catalog.CategoryMale},
		{"👸 <b>ДЛЯ ДЕВУШЕК:</b>", catalog.CategoryFemale},
		{"❤️ <b>ДЛЯ ПАР:</b>", catalog.CategoryCouple},
		{"⭐ <b>VIP ТАРИФЫ:</b>", catalog.CategoryVIP},
	}
	for _, s := range sections {
		b.WriteString("\n" + s.title + "\n")
		for _, t := range catalog.ByCategory(s.cat) {
			fmt.Fprintf(&b, "• %s %s - %s\n", t.Emoji, t.Name, t.PriceLine())
		}
	}
	return b.String()
}

func tariffDescription(t catalog.Tariff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>«%s»</b>\n", t.Emoji, t.Name)

	switch {
	case t.Category == catalog.CategoryVIP:
		fmt.Fprintf(&b, "💵 <b>%d₽ за %s</b>\n", t.Total(), seatsWord(t.Seats))
		fmt.Fprintf(&b, "💳 <b>Всего: %d₽</b>\n", t.Total())
	case t.Seats > 1:
		fmt.Fprintf(&b, "💵 <b>%d₽ с человека</b>\n", t.Price)
		fmt.Fprintf(&b, "💳 <b>Всего: %d₽</b>\n", t.Total())
	default:
		fmt.Fprintf(&b, "💵 <b>Стоимость: %d₽</b>\n", t.Price)
	}

	fmt.Fprintf(&b, "\n📖 %s\n", t.Description)
	b.WriteString("\n✅ <b>Включено:</b>\n")
	fmt.Fprintf(&b, "• %s\n", t.Includes)
	b.WriteString("• Полный доступ на New Year Gedan Party\n")
	b.WriteString("• Участие в новогодних розыгрышах\n")
	b.WriteString("• Доступ к бане, бильярду и уютным зонам\n")
	b.WriteString("• Услуги лакея (такси туда и обратно до 5 утра)\n")
	return b.String()
}

func seatsWord(n int) string {
	switch n {
	case 2:
		return "двоих"
	case 4:
		return "четверых"
	}
	return fmt.Sprintf("%d человек", n)
}

func participantsPrompt(t catalog.Tariff) string {
	if t.Seats == 1 {
		return tariffDescription(t) + `

📝 <b>Теперь введите свои данные в формате:</b>
<code>ФИО, телеграмм, номер телефона</code>

<b>Пример:</b>
<code>Иванов Иван Иванович, @ivanov, 79991234567</code>`
	}
	return tariffDescription(t) + fmt.Sprintf(`

📝 <b>Теперь введите данные всех %d участников в формате:</b>
Каждый участник с новой строки:
<code>ФИО, телеграмм, номер телефона</code>

<b>Пример для %d человек:</b>
<code>Иванов Иван Иванович, @ivanov, 79991234567</code>
<code>Петрова Анна Сергеевна, @petrova, 79997654321</code>`, t.Seats, t.Seats)
}

func countMismatchText(t catalog.Tariff, got int) string {
	return fmt.Sprintf(`❌ Для тарифа '%s' нужно указать ровно %d участника.
Ты указал(-а) %d. Попробуй еще раз (каждый участник с новой строки):

<b>Формат для каждого участника:</b>
ФИО, телеграмм, номер телефона

<b>Пример для %d человек:</b>
Иванов Иван Иванович, @ivanov, 79991234567
Петрова Анна Сергеевна, @petrova, 79997654321`,
		format.EscapeHTML(t.Name), t.Seats, got, t.Seats)
}

func batchErrorsText(errs []participants.FieldError) string {
	var b strings.Builder
	b.WriteString("<b>❌ Ошибки в данных:</b>\n")
	for _, e := range errs {
		b.WriteString(e.Render() + "\n")
	}
	b.WriteString(`
<b>Попробуйте еще раз. Формат для каждого участника:</b>
ФИО, телеграмм, телефон

<b>Пример:</b>
Иванов Иван, @ivanov, 79991234567`)
	return b.String()
}

func orderSummaryText(t catalog.Tariff, people []participants.Participant, total int) string {
	var b strings.Builder
	b.WriteString("<b>✅ ВАШ ЗАКАЗ ПОДТВЕРЖДЁН! 🎫</b>\n\n")
	for i, p := range people {
		fmt.Fprintf(&b, "👤 <b>Участник %d:</b>\n", i+1)
		fmt.Fprintf(&b, "   • ФИО: %s\n", format.EscapeHTML(p.FullName))
		fmt.Fprintf(&b, "   • Telegram: %s\n", format.EscapeHTML(p.Telegram))
		fmt.Fprintf(&b, "   • Телефон: %s\n\n", format.EscapeHTML(p.Phone))
	}
	fmt.Fprintf(&b, "📋 <b>Тариф:</b> %s %s\n", t.Emoji, t.Name)
	fmt.Fprintf(&b, "💎 <b>Сумма:</b> %d₽\n", total)
	b.WriteString(`
🎄 <b>Бонусы мероприятия:</b>
• Лакей: такси туда и обратно до 5 утра
• Уютные комнаты и русская баня
• Новогодние розыгрыши и подарки
• Часы сна: с 5 до 11 утра - соблюдаем тишину

Нажмите ниже для завершения бронирования ⬇️`)
	return b.String()
}

func paymentText(cfg *coreconfig.Config, tariffName string, total int) string {
	return fmt.Sprintf(`<b>ФИНАЛЬНЫЙ ШАГ - ОПЛАТА 💳</b>

🎯 <b>Тариф:</b> %s
💎 <b>Сумма к оплате:</b> %d₽

📋 <b>Инструкция по оплате:</b>
1. Переведите %d₽ на указанный ниже счет
2. Сохраните чек об оплате в виде PDF
3. Вернитесь в этот чат и отправьте чек

🏦 <b>РЕКВИЗИТЫ ДЛЯ ПЕРЕВОДА</b>

<b>Банк:</b> %s
<b>Номер счета:</b>
<code>%s</code>

💡 <b>Совет:</b> Скопируйте номер счета выше и вставьте в приложении банка

⚠️ <b>Важно:</b>

• Бронирование подтверждается только после проверки чека
• Чек должен содержать сумму и дату перевода
• Проверка занимает до 24 часов
• Поддерживаемые форматы: PDF(макс. %dMB)
• ДРУГИЕ ФОРМАТЫ НЕ ПРИНИМАЮТСЯ!`,
		format.EscapeHTML(tariffName), total, total,
		format.EscapeHTML(cfg.Payment.BankName),
		format.EscapeHTML(cfg.Payment.Account),
		cfg.Receipts.MaxFileSizeMB,
	)
}

func receiptPromptText(cfg *coreconfig.Config) string {
	return fmt.Sprintf(`📎 <b>Пришлите чек об оплате</b>

Пожалуйста, отправьте PDF-файл с чеком перевода.
Чек должен содержать:
• Сумму перевода
• Дату и время
• Номер счета получателя

<b>Ограничения:</b>
• Максимальный размер: %dMB
• Файл должен быть читаемым

<b>После отправки чека ваш заказ будет сохранен в систему.</b>`,
		cfg.Receipts.MaxFileSizeMB)
}

func receiptAcceptedText(cfg *coreconfig.Config, orderID int64, tariffName string, total int, archived bool) string {
	storageLine := "📎 Файл чека сохранен"
	if archived {
		storageLine = "☁️ <b>Чек загружен в облачное хранилище</b>"
	}
	return fmt.Sprintf(`<b>✅ ЧЕК ПОЛУЧЕН И ЗАКАЗ СОХРАНЕН!</b>

📦 <b>Заказ:</b> #%d
🎯 <b>Тариф:</b> %s
💎 <b>Сумма:</b> %d₽

✅ <b>Статус:</b> Заказ сохранен в систему
⏳ <b>Ожидайте:</b> Подтверждение в течение 24 часов

%s

💬 <b>По вопросам:</b> %s`,
		orderID, format.EscapeHTML(tariffName), total, storageLine,
		format.EscapeHTML(cfg.Support.Contact),
	)
}

func helpText(cfg *coreconfig.Config) string {
	return fmt.Sprintf(`<b>ПОМОЩЬ И ПОДДЕРЖКА 🆘</b>

📋 <b>Команды бота:</b>
• Старт - начать работу
• Информация о мероприятии - детали вечеринки
• Посмотреть тарифы - выбрать билет
• Помощь - эта информация

📞 <b>Техподдержка:</b>
• По вопросам оплаты и мероприятию: %s
• Чат: %s

💡 <b>Частые вопросы:</b>
• Оплата: перевод на карту Сбербанка
• Возвраты: за 48 часов до события
• Дресс-код: новогодние костюмы приветствуются!
• Чеки: принимаем только <b>PDF</b> (макс. %dMB)`,
		format.EscapeHTML(cfg.Support.Contact),
		format.EscapeHTML(cfg.Support.ChatURL),
		cfg.Receipts.MaxFileSizeMB,
	)
}

const adminConsoleText = `<b>👨‍💼 КОНСОЛЬ АДМИНА</b>

📊 <b>Статистика:</b>
/stats - статистика заказов
/orders - все заказы
/users - статистика пользователей

👤 <b>Управление заказами:</b>
/pending - ожидающие оплаты (с реальными чеками)
/paid - оплаченные

📢 <b>Рассылка:</b>
/broadcast - рассылка сообщений

💡 <b>Быстрые команды:</b>
Просто введите команду выше`

const accessDeniedText = "❌ У вас нет доступа"

func fileTooBigText(maxMB int, gotBytes int64) string {
	return fmt.Sprintf(`❌ Файл слишком большой! Максимальный размер: %dMB
Ваш файл: %dMB
Пожалуйста, отправьте файл меньшего размера или сделайте скриншот.`,
		maxMB, gotBytes/(1024*1024))
}

func badExtensionText(ext string) string {
	return fmt.Sprintf(`❌ Неподдерживаемый формат файла: %s
Поддерживаемые форматы: PDF
Пожалуйста, отправьте чек в одном из этих форматов.`, format.EscapeHTML(ext))
}
