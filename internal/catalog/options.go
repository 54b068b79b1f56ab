package catalog

// Option is a fixed reply offered on a keyboard. Key is the stored value,
// Label is what the user sees and sends back.
type Option struct {
	Key   string
	Label string
}

// Group is an asset category with its subcategories.
type Group struct {
	Category      Option
	Subcategories []Option
}

// Groups lists asset categories in menu order.
var Groups = []Group{
	{
		Category: Option{Key: "Финансовые активы", Label: "📈 Финансовые активы"},
		Subcategories: plain(
			"Акции",
			"Облигации",
			"Индексные фонды (ETF, БПИФ)",
			"Паевые инвестиционные фонды",
			"Цифровые активы, криптовалюты",
			"REIT",
		),
	},
	{
		Category: Option{Key: "Реальные активы", Label: "🏠 Реальные активы"},
		Subcategories: plain(
			"Недвижимость (жилая)",
			"Земельные участки",
			"Драгоценные металлы",
			"Сырьевые товары (коммодити)",
		),
	},
	{
		Category: Option{Key: "Денежные активы и эквиваленты", Label: "💵 Денежные активы и эквиваленты"},
		Subcategories: plain(
			"Наличные и счета",
			"Депозиты/вклады",
		),
	},
	{
		Category: Option{Key: "Альтернативные активы", Label: "💎 Альтернативные активы"},
		Subcategories: plain(
			"Частные инвестиции, венчурный капитал",
			"Коллекционные предметы",
			"Интеллектуальная собственность",
			"Лизинговые инвестиции",
		),
	},
	{
		Category: Option{Key: "Транспортные средства и предметы роскоши", Label: "🚗 Транспортные средства и предметы роскоши"},
		Subcategories: plain(
			"Автомобили, яхты, личные суда",
			"Аренда и чартер",
		),
	},
}

// Currencies offered at the currency step.
var Currencies = []Option{
	{Key: "RUB", Label: "₽ RUB"},
	{Key: "USD", Label: "$ USD"},
	{Key: "EUR", Label: "€ EUR"},
	{Key: "CNY", Label: "¥ CNY"},
}

// Repeat decision keys.
const (
	RepeatYes = "yes"
	RepeatNo  = "no"
)

// RepeatOptions are offered after the image step.
var RepeatOptions = []Option{
	{Key: RepeatYes, Label: "➕ Да, добавить ещё актив"},
	{Key: RepeatNo, Label: "➡️ Нет, перейти к контактам"},
}

var nameExamples = map[string]string{
	"Акции":                                 "Акции Сбербанка",
	"Облигации":                             "ОФЗ 26238",
	"Индексные фонды (ETF, БПИФ)":           "БПИФ на индекс Мосбиржи",
	"Паевые инвестиционные фонды":           "ПИФ «Сбер Облигации»",
	"Цифровые активы, криптовалюты":         "Bitcoin",
	"REIT":                                  "Realty Income",
	"Недвижимость (жилая)":                  "Квартира в Москве",
	"Земельные участки":                     "Участок в Подмосковье",
	"Драгоценные металлы":                   "Золотой слиток 100 г",
	"Сырьевые товары (коммодити)":           "Нефть Brent",
	"Наличные и счета":                      "Накопительный счёт",
	"Депозиты/вклады":                       "Вклад на 12 месяцев",
	"Частные инвестиции, венчурный капитал": "Доля в стартапе",
	"Коллекционные предметы":                "Коллекция монет",
	"Интеллектуальная собственность":        "Патент на изобретение",
	"Лизинговые инвестиции":                 "Лизинг спецтехники",
	"Автомобили, яхты, личные суда":         "Toyota Camry 2020",
	"Аренда и чартер":                       "Яхта в чартере",
}

const genericNameExample = "Акции Сбербанка, Квартира в Москве"

func plain(keys ...string) []Option {
	out := make([]Option, len(keys))
	for i, k := range keys {
		out[i] = Option{Key: k, Label: k}
	}
	return out
}

// CategoryOptions returns the category menu.
func CategoryOptions() []Option {
	out := make([]Option, len(Groups))
	for i, g := range Groups {
		out[i] = g.Category
	}
	return out
}

// SubcategoryOptions returns subcategories of the category with the given key.
// An unknown or empty key yields every subcategory.
func SubcategoryOptions(category string) []Option {
	for _, g := range Groups {
		if g.Category.Key == category {
			return g.Subcategories
		}
	}
	var all []Option
	for _, g := range Groups {
		all = append(all, g.Subcategories...)
	}
	return all
}

// ParentCategory returns the category key owning the subcategory key.
func ParentCategory(subcategory string) (string, bool) {
	for _, g := range Groups {
		for _, s := range g.Subcategories {
			if s.Key == subcategory {
				return g.Category.Key, true
			}
		}
	}
	return "", false
}

// CategoryLabel returns the display label for a category key, or the key itself.
func CategoryLabel(key string) string {
	for _, g := range Groups {
		if g.Category.Key == key {
			return g.Category.Label
		}
	}
	return key
}

// NameExample returns the sample name shown for a subcategory.
func NameExample(subcategory string) string {
	if ex, ok := nameExamples[subcategory]; ok {
		return ex
	}
	return genericNameExample
}

// Match finds the option whose label equals text.
func Match(opts []Option, text string) (Option, bool) {
	for _, o := range opts {
		if o.Label == text {
			return o, true
		}
	}
	return Option{}, false
}
