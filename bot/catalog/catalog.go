package catalog

import (
	"errors"
	"fmt"
)

// Category groups tariffs by audience.
type Category string

const (
	CategoryMale   Category = "male"
	CategoryFemale Category = "female"
	CategoryCouple Category = "couple"
	CategoryVIP    Category = "vip"
)

// ErrUnknownTariff is returned by Resolve for names outside the catalog.
var ErrUnknownTariff = errors.New("unknown tariff")

// Tariff describes one ticket option.
type Tariff struct {
	Name        string
	Emoji       string
	Category    Category
	Price       int // per person, rubles
	Seats       int // exact number of participants required
	GroupTotal  int // explicit total for multi-seat tariffs; 0 -> Price*Seats
	Description string
	Includes    string
}

// Total returns the full order price for the tariff.
func (t Tariff) Total() int {
	if t.GroupTotal > 0 {
		return t.GroupTotal
	}
	return t.Price * t.Seats
}

// PriceLine renders the tariff price for menus, e.g. "5500₽ (2750₽/чел)".
func (t Tariff) PriceLine() string {
	if t.Seats > 1 && t.Category != CategoryVIP {
		return fmt.Sprintf("%d₽ (%d₽/чел)", t.Total(), t.Price)
	}
	return fmt.Sprintf("%d₽", t.Total())
}

const commonIncludes = "Все включено в доме"

// tariffs lists every sellable option. Order matters: menus render
// tariffs in catalog order within each category.
var tariffs = []Tariff{
	{
		Name:        "Сам себе Санта",
		Emoji:       "🎅",
		Category:    CategoryMale,
		Price:       3000,
		Seats:       1,
		Description: "Ты - главный волшебник вечера! Приходи один и докажи, что новогоднее настроение создаётся не количеством, а качеством 🎅✨",
		Includes:    commonIncludes,
	},
	{
		Name:        "Братья по шампанскому",
		Emoji:       "👥",
		Category:    CategoryMale,
		Price:       2750,
		Seats:       2,
		GroupTotal:  5500,
		Description: "Два лучших друга + шампанское = идеальная формула новогоднего безумия! 🥂",
		Includes:    commonIncludes,
	},
	{
		Name:        "Компания друзей",
		Emoji:       "👥👥",
		Category:    CategoryMale,
		Price:       2625,
		Seats:       4,
		GroupTotal:  10500,
		Description: "Четверо смелых, готовых устроить самый эпичный новогодний корпоратив! 🎊",
		Includes:    commonIncludes,
	},
	{
		Name:        "Снежная королева",
		Emoji:       "👸",
		Category:    CategoryFemale,
		Price:       2500,
		Seats:       1,
		Description: "Королева вечера прибыла! Твоя магия растопит любое сердце ❄️👑",
		Includes:    commonIncludes,
	},
	{
		Name:        "Сестры по глинтвейну",
		Emoji:       "👭",
		Category:    CategoryFemale,
		Price:       2250,
		Seats:       2,
		GroupTotal:  4500,
		Description: "Две подруги + глинтвейн = рецепт идеального новогоднего вечера! ☕️💫",
		Includes:    commonIncludes,
	},
	{
		Name:        "Квартет снегурочек",
		Emoji:       "👭👭",
		Category:    CategoryFemale,
		Price:       2125,
		Seats:       4,
		GroupTotal:  8500,
		Description: "Четверо снегурочек готовы устроить снежную бурю эмоций и веселья! ❄️👭👭",
		Includes:    commonIncludes,
	},
	{
		Name:        "Мистер и миссис Клаус",
		Emoji:       "👩‍❤️‍👨",
		Category:    CategoryCouple,
		Price:       2550,
		Seats:       2,
		GroupTotal:  5100,
		Description: "Пара, которая создаёт новогоднюю магию! Ваша любовь - главный подарок вечера 💝",
		Includes:    commonIncludes,
	},
	{
		Name:        "DUO VIP",
		Emoji:       "❤️",
		Category:    CategoryVIP,
		Price:       6500,
		Seats:       2,
		GroupTotal:  6500,
		Description: "Именная комната + новогодние сюрпризы = романтический вечер мечты! 🌟❤️",
		Includes:    "Все включено + именная комната + новогодние сюрпризы",
	},
	{
		Name:        "SQUAD SUPER VIP",
		Emoji:       "🎄",
		Category:    CategoryVIP,
		Price:       12000,
		Seats:       4,
		GroupTotal:  12000,
		Description: "Эксклюзивная комната с секретным проходом! Для тех, кто привык к особому отношению 🏰🎁",
		Includes:    "Все включено + эксклюзивная комната + секретные подарки",
	},
}

// All returns every tariff in catalog order.
func All() []Tariff {
	out := make([]Tariff, len(tariffs))
	copy(out, tariffs)
	return out
}

// Resolve finds a tariff by its exact name.
func Resolve(name string) (Tariff, error) {
	for _, t := range tariffs {
		if t.Name == name {
			return t, nil
		}
	}
	return Tariff{}, fmt.Errorf("%w: %q", ErrUnknownTariff, name)
}

// ByCategory returns tariffs of the given category in catalog order.
func ByCategory(cat Category) []Tariff {
	var out []Tariff
	for _, t := range tariffs {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

// CategoryTitle returns the menu heading for a category.
func CategoryTitle(cat Category) string {
	switch cat {
	case CategoryMale:
		return "🎅 <b>ТАРИФЫ ДЛЯ ПАРНЕЙ</b>"
	case CategoryFemale:
		return "👸 <b>ТАРИФЫ ДЛЯ ДЕВУШЕК</b>"
	case CategoryCouple:
		return "❤️ <b>ТАРИФЫ ДЛЯ ПАР</b>"
	case CategoryVIP:
		return "⭐ <b>VIP ТАРИФЫ</b>"
	}
	return "🎫 <b>ВЫБЕРИ ТАРИФ</b>"
}

// ParseCategory validates a category payload coming from a callback.
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryMale, CategoryFemale, CategoryCouple, CategoryVIP:
		return Category(raw), true
	}
	return "", false
}
