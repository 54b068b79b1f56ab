// Package format holds Telegram HTML parse-mode helpers.
package format

import (
	"html"
	"strings"
)

// Escape escapes text for Telegram HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Italic wraps escaped text in <i>.
func Italic(text string) string {
	return "<i>" + Escape(text) + "</i>"
}

// Lines joins non-empty lines with a newline.
func Lines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
