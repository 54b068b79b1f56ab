// Package keyboard builds Telegram reply keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a resized reply keyboard from rows of labels. Empty rows are skipped.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Chunk splits labels into rows of at most n. n <= 1 yields one label per row.
func Chunk(labels []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	rows := make([][]string, 0, (len(labels)+n-1)/n)
	for i := 0; i < len(labels); i += n {
		end := min(i+n, len(labels))
		rows = append(rows, labels[i:end])
	}
	return rows
}
