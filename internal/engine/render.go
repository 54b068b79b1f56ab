package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/assetbot/core/telegram/format"
	"github.com/m3rciful/assetbot/core/telegram/keyboard"
	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/catalog"
	"github.com/m3rciful/assetbot/internal/validate"
)

// Trigger labels shared with the transport.
const (
	EntryLabel = "➕ Добавить актив"
	BackLabel  = "⬅️ Назад"
)

func entryKeyboard() Keyboard {
	return Keyboard{Rows: [][]string{{EntryLabel}}}
}

func entryMenu(head string) Reply {
	return Reply{
		Text: format.Lines(
			head,
			"Нажмите «"+EntryLabel+"», чтобы внести данные об активе.",
		),
		Keyboard: entryKeyboard(),
	}
}

func welcome() Reply {
	return entryMenu("👋 " + format.Bold("Добро пожаловать!") + "\nЯ помогу записать сведения о ваших активах в таблицу.")
}

// shortLabel is the longest label still laid out two per row.
const shortLabel = 8

// stepKeyboard lists options (one per row, or two when all are short), then
// suggestions, then the back button.
func stepKeyboard(s catalog.Step, a *asset.Answers) Keyboard {
	opts := s.OptionsFor(a)
	labels := make([]string, len(opts))
	perRow := 2
	for i, o := range opts {
		labels[i] = o.Label
		if utf8.RuneCountInString(o.Label) > shortLabel {
			perRow = 1
		}
	}
	rows := keyboard.Chunk(labels, perRow)
	if len(s.Suggestions) > 0 {
		rows = append(rows, append([]string(nil), s.Suggestions...))
	}
	rows = append(rows, []string{BackLabel})
	return Keyboard{Rows: rows}
}

func prompt(s catalog.Step, a *asset.Answers) Reply {
	return Reply{Text: s.Prompt(a), Keyboard: stepKeyboard(s, a)}
}

func rejection(s catalog.Step, a *asset.Answers, err error) Reply {
	reason, example := "Некорректное значение", ""
	if r, ok := validate.AsRejection(err); ok {
		reason, example = r.Reason, r.Example
	}
	lines := []string{"❌ " + format.Escape(reason)}
	if example != "" {
		lines = append(lines, format.Italic(example))
	}
	return Reply{Text: format.Lines(lines...), Keyboard: stepKeyboard(s, a)}
}

func summary(records []asset.Record) Reply {
	lines := []string{
		"✅ " + format.Bold("Данные успешно сохранены!"),
		fmt.Sprintf("Записано активов: %d", len(records)),
	}
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("%d. %s, %s %s",
			i+1, format.Escape(r.Name), asset.FormatAmount(r.Quantity), format.Escape(r.Currency)))
	}
	return entryMenu(format.Lines(lines...))
}

func failure(err error) Reply {
	reason := "ошибка записи в таблицу"
	var incomplete *asset.IncompleteError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "хранилище не ответило вовремя"
	case errors.As(err, &incomplete):
		reason = "анкета заполнена не полностью"
	}
	return entryMenu(format.Lines(
		"❌ "+format.Bold("Не удалось сохранить данные")+": "+reason+".",
		"Введённые ответы сброшены, попробуйте заполнить анкету ещё раз.",
	))
}

func statusText(c *catalog.Catalog, step catalog.Step, a *asset.Answers) string {
	lines := []string{
		fmt.Sprintf("📋 Шаг %d из %d: %s", c.Position(step.ID), len(c.Order()), format.Bold(step.Title)),
		fmt.Sprintf("Активов в анкете: %d", a.Count()),
	}
	if a.Contact.Name != "" {
		lines = append(lines, "Контакт: "+format.Escape(a.Contact.Name))
	}
	return format.Lines(lines...)
}

func helpText() string {
	return strings.Join([]string{
		format.Bold("Команды:"),
		"/add: начать заполнение анкеты",
		"/back: вернуться к предыдущему вопросу",
		"/status: текущий шаг анкеты",
		"/cancel: отменить заполнение",
		"/start: начать заново",
	}, "\n")
}
