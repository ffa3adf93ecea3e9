package flow

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m5frls/gedanbot/bot/catalog"
	"github.com/m5frls/gedanbot/bot/session"
	tg "github.com/m5frls/gedanbot/core/telegram"
	"github.com/m5frls/gedanbot/core/telegram/callbacks"
	"github.com/m5frls/gedanbot/core/telegram/helpers"
	"github.com/m5frls/gedanbot/core/telegram/keyboard"
)

const staleSessionText = "⏰ Сессия устарела. Начните заново с /start"

// RegisterCallbacks wires every order conversation callback.
func (e *Engine) RegisterCallbacks(reg *tg.Registry) error {
	entries := map[string]tele.HandlerFunc{
		CallbackShowTariffs: e.cbShowTariffs,
		CallbackRulesAccept: e.cbRulesAccept,
		CallbackTariffCat:   e.cbTariffCategory,
		CallbackTariffPick:  e.cbTariffPick,
		CallbackShowAll:     e.cbShowAll,
		CallbackToPayment:   e.cbToPayment,
		CallbackSendReceipt: e.cbSendReceipt,
		CallbackBackMain:    e.cbBackToMain,
		CallbackBackTariffs: e.cbBackToTariffs,
		CallbackBackCats:    e.cbBackToCategories,
	}
	for key, h := range entries {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	return nil
}

// cbShowTariffs is the "choose a tariff" entry from the event card:
// it leads through the rules gate, same as the menu button.
func (e *Engine) cbShowTariffs(c tele.Context) error {
	return e.showRules(c)
}

func (e *Engine) cbRulesAccept(c tele.Context) error {
	stale := true
	e.sessions.Update(c.Sender().ID, func(s *session.Session) {
		if s.Stage == session.StageRules {
			s.Stage = session.StageTariff
			stale = false
		}
	})
	if stale {
		return helpers.SendText(c, staleSessionText)
	}
	// The rules message is replaced by the tariff menu.
	_ = c.Delete()
	return helpers.SendHTML(c, tariffsIntroText, categoryMenuMarkup())
}

func (e *Engine) cbTariffCategory(c tele.Context) error {
	raw := callbacks.CallbackPayload(c)
	cat, ok := catalog.ParseCategory(raw)
	if !ok {
		return helpers.EditOrSendHTML(c, tariffsIntroText, categoryMenuMarkup())
	}

	var rows [][]keyboard.InlineBtn
	for _, t := range catalog.ByCategory(cat) {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("%s %s - %d₽", t.Emoji, t.Name, t.Total()),
			Unique: CallbackTariffPick,
			Data:   t.Name,
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ НАЗАД", Unique: CallbackBackCats}})

	return helpers.EditOrSendHTML(c, catalog.CategoryTitle(cat), keyboard.InlineButtonsRows(rows...))
}

func (e *Engine) cbTariffPick(c tele.Context) error {
	name := callbacks.CallbackPayload(c)
	t, err := e.SelectTariff(c.Sender().ID, name)
	if err != nil {
		// Unknown tariff: report and stay where we are.
		return c.Respond(&tele.CallbackResponse{
			Text:      fmt.Sprintf("❌ Тариф '%s' не найден", name),
			ShowAlert: true,
		})
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "⬅️ ВЫБРАТЬ ДРУГОЙ ТАРИФ", Unique: CallbackBackTariffs}},
	)
	return helpers.EditOrSendHTML(c, participantsPrompt(t), markup)
}

func (e *Engine) cbShowAll(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🎅 ВЫБРАТЬ ДЛЯ ПАРНЕЙ", Unique: CallbackTariffCat, Data: string(catalog.CategoryMale)}},
		[]keyboard.InlineBtn{{Text: "👸 ВЫБРАТЬ ДЛЯ ДЕВУШЕК", Unique: CallbackTariffCat, Data: string(catalog.CategoryFemale)}},
		[]keyboard.InlineBtn{{Text: "❤️ ВЫБРАТЬ ДЛЯ ПАР", Unique: CallbackTariffCat, Data: string(catalog.CategoryCouple)}},
		[]keyboard.InlineBtn{{Text: "⭐ ВЫБРАТЬ VIP", Unique: CallbackTariffCat, Data: string(catalog.CategoryVIP)}},
		[]keyboard.InlineBtn{{Text: "⬅️ НАЗАД", Unique: CallbackBackCats}},
	)
	return helpers.EditOrSendHTML(c, allTariffsText(), markup)
}

func (e *Engine) cbToPayment(c tele.Context) error {
	out := e.ProceedToPayment(c.Sender().ID)
	if !out.OK {
		return helpers.SendText(c, "❌ Ошибка данных, начните заново с /start")
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📎 Прислать чек", Unique: CallbackSendReceipt}},
		[]keyboard.InlineBtn{{Text: "⬅️ НАЗАД К ТАРИФАМ", Unique: CallbackBackTariffs}},
	)
	return helpers.EditOrSendHTML(c, paymentText(e.cfg, out.Tariff, out.Total), markup)
}

func (e *Engine) cbSendReceipt(c tele.Context) error {
	return helpers.SendHTML(c, receiptPromptText(e.cfg))
}

func (e *Engine) cbBackToMain(c tele.Context) error {
	e.sessions.Clear(c.Sender().ID)
	_ = c.Delete()
	return e.ShowMainMenu(c)
}

func (e *Engine) cbBackToTariffs(c tele.Context) error {
	return e.showTariffMenu(c, true)
}

func (e *Engine) cbBackToCategories(c tele.Context) error {
	return e.showTariffMenu(c, true)
}
