package catalog

import (
	"fmt"

	"github.com/m3rciful/assetbot/core/telegram/format"
	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/validate"
)

// Default returns the asset questionnaire.
func Default() *Catalog {
	return MustNew(DefaultSteps()...)
}

// DefaultSteps lists the questionnaire steps in flow order.
func DefaultSteps() []Step {
	assetName := validate.Text(validate.MaxAssetName, "Например: "+genericNameExample)
	contactName := validate.Text(validate.MaxContactName, "Например: Иван Петров")

	return []Step{
		{
			ID:    Category,
			Title: "Категория",
			Field: asset.FieldCategory,
			Prompt: func(*asset.Answers) string {
				return "📊 " + format.Bold("Выберите категорию актива:")
			},
			Options: func(*asset.Answers) []Option { return CategoryOptions() },
			Next:    Subcategory,
			Prev:    Idle,
		},
		{
			ID:      Subcategory,
			Title:   "Подкатегория",
			Field:   asset.FieldSubcategory,
			Prompt:  subcategoryPrompt,
			Options: func(a *asset.Answers) []Option { return SubcategoryOptions(a.Draft.Category) },
			Write:   writeSubcategory,
			Next:    Name,
			Prev:    Category,
		},
		{
			ID:    Name,
			Title: "Название актива",
			Field: asset.FieldName,
			Prompt: func(a *asset.Answers) string {
				return format.Lines(
					"🏷️ "+format.Bold("Введите название актива:"),
					format.Italic("Пример: "+NameExample(a.Draft.Subcategory)),
				)
			},
			Validate: func(raw string) (any, error) { return assetName(raw) },
			Next:     Quantity,
			Prev:     Subcategory,
		},
		{
			ID:    Quantity,
			Title: "Количество",
			Field: asset.FieldQuantity,
			Prompt: func(a *asset.Answers) string {
				title := "Введите количество:"
				if a.Draft.Name != "" {
					title = fmt.Sprintf("Введите количество «%s»:", a.Draft.Name)
				}
				return format.Lines(
					"📊 "+format.Bold(title),
					format.Italic("Целое число или дробное через точку"),
				)
			},
			Validate: func(raw string) (any, error) { return validate.Amount(raw) },
			Next:     Currency,
			Prev:     Name,
		},
		{
			ID:    Currency,
			Title: "Валюта",
			Field: asset.FieldCurrency,
			Prompt: func(*asset.Answers) string {
				return "💱 " + format.Bold("Выберите валюту:")
			},
			Options: func(*asset.Answers) []Option { return Currencies },
			Next:    EntryPrice,
			Prev:    Quantity,
		},
		{
			ID:    EntryPrice,
			Title: "Цена входа",
			Field: asset.FieldEntryPrice,
			Prompt: func(a *asset.Answers) string {
				return format.Lines(
					"💰 "+format.Bold("Введите цену входа/покупки:"),
					format.Italic(fmt.Sprintf("Сумма в %s (например: 15000 или 1250.50)", currencyOrDefault(a))),
				)
			},
			Validate: func(raw string) (any, error) { return validate.Amount(raw) },
			Next:     EntryDate,
			Prev:     Currency,
		},
		{
			ID:    EntryDate,
			Title: "Дата входа",
			Field: asset.FieldEntryDate,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"📅 "+format.Bold("Введите дату входа/покупки:"),
					format.Italic(`Формат: ДД.ММ.ГГГГ (например: 15.05.2023) или "-"`),
				)
			},
			Suggestions: []string{asset.Sentinel},
			Validate:    func(raw string) (any, error) { return validate.Date(raw) },
			Next:        ExitDate,
			Prev:        EntryPrice,
		},
		{
			ID:    ExitDate,
			Title: "Дата выхода",
			Field: asset.FieldExitDate,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"📅 "+format.Bold("Введите дату выхода/продажи:"),
					format.Italic(`Формат: ДД.ММ.ГГГГ или "-", если актив не продан`),
				)
			},
			Suggestions: []string{asset.Sentinel},
			Validate:    func(raw string) (any, error) { return validate.Date(raw) },
			Next:        ExitPrice,
			Prev:        EntryDate,
		},
		{
			ID:    ExitPrice,
			Title: "Цена выхода",
			Field: asset.FieldExitPrice,
			Prompt: func(a *asset.Answers) string {
				return format.Lines(
					"💰 "+format.Bold("Введите цену выхода/продажи:"),
					format.Italic(fmt.Sprintf(`Сумма в %s или "-", если актив не продан`, currencyOrDefault(a))),
				)
			},
			Suggestions: []string{asset.Sentinel},
			Validate:    func(raw string) (any, error) { return validate.OptionalPrice(raw) },
			Next:        Image,
			Prev:        ExitDate,
		},
		{
			ID:    Image,
			Title: "Изображение",
			Field: asset.FieldImage,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"📸 "+format.Bold("Пришлите ссылку на изображение:"),
					format.Italic(`Или отправьте "-", если изображения нет`),
				)
			},
			Suggestions: []string{asset.Sentinel},
			Validate:    func(raw string) (any, error) { return validate.ImageURL(raw) },
			Next:        RepeatDecision,
			Prev:        ExitPrice,
		},
		{
			ID:    RepeatDecision,
			Title: "Ещё один актив?",
			Field: asset.FieldRepeat,
			Prompt: func(a *asset.Answers) string {
				head := "✅ Актив записан."
				if a.Draft.Name != "" {
					head = fmt.Sprintf("✅ Актив «%s» записан.", format.Escape(a.Draft.Name))
				}
				return format.Lines(head, format.Bold("Добавить ещё один актив?"))
			},
			Options: func(*asset.Answers) []Option { return RepeatOptions },
			Write:   writeRepeat,
			Next:    ContactName,
			Prev:    Image,
			Branch:  map[string]StepID{RepeatYes: Category, RepeatNo: ContactName},
		},
		{
			ID:    ContactName,
			Title: "Контактное имя",
			Field: asset.FieldContactName,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"👤 "+format.Bold("Введите контактное имя:"),
					format.Italic("Например: Иван Петров"),
				)
			},
			Validate: func(raw string) (any, error) { return contactName(raw) },
			Next:     ContactEmail,
			Prev:     RepeatDecision,
		},
		{
			ID:    ContactEmail,
			Title: "Email",
			Field: asset.FieldContactEmail,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"📧 "+format.Bold("Введите email:"),
					format.Italic("Например: user@example.com"),
				)
			},
			Validate: func(raw string) (any, error) { return validate.Email(raw) },
			Next:     ContactPhone,
			Prev:     ContactName,
		},
		{
			ID:    ContactPhone,
			Title: "Телефон",
			Field: asset.FieldContactPhone,
			Prompt: func(*asset.Answers) string {
				return format.Lines(
					"📱 "+format.Bold("Введите номер телефона:"),
					format.Italic("Например: +7 (999) 123-45-67"),
				)
			},
			Validate: func(raw string) (any, error) { return validate.Phone(raw) },
			Next:     Submitted,
			Prev:     ContactEmail,
		},
	}
}

func subcategoryPrompt(a *asset.Answers) string {
	if a.Draft.Category == "" {
		return "📊 " + format.Bold("Выберите подкатегорию актива:")
	}
	return format.Lines(
		format.Bold("Категория: ")+format.Escape(CategoryLabel(a.Draft.Category)),
		"📊 "+format.Bold("Выберите подкатегорию:"),
	)
}

// writeSubcategory back-fills the category when the session lost it.
func writeSubcategory(a *asset.Answers, v any) error {
	if err := a.Set(asset.FieldSubcategory, v); err != nil {
		return err
	}
	if a.Draft.Category == "" {
		if parent, ok := ParentCategory(a.Draft.Subcategory); ok {
			a.Draft.Category = parent
		}
	}
	return nil
}

// writeRepeat parks the finished draft when the user asks for another asset.
func writeRepeat(a *asset.Answers, v any) error {
	if err := a.Set(asset.FieldRepeat, v); err != nil {
		return err
	}
	if a.More {
		a.StartNext()
	}
	return nil
}

func currencyOrDefault(a *asset.Answers) string {
	if a.Draft.Currency != "" {
		return a.Draft.Currency
	}
	return "выбранной валюте"
}
