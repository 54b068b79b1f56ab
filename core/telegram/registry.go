package telegram

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/core/telegram/commands"
)

// Registry holds bot commands and the handler for plain text.
type Registry struct {
	commands     map[string]commands.Command
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds cmd under name, which must start with "/". Invalid or
// duplicate registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil {
		return
	}
	if reason := r.rejectReason(name, cmd); reason != "" {
		logger.Warn(context.Background(), "tg.wire", "register.command",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("cause", reason),
		)
		return
	}
	r.commands[name] = cmd
}

func (r *Registry) rejectReason(name string, cmd commands.Command) string {
	switch {
	case cmd.Handler == nil || strings.TrimSpace(cmd.Description) == "":
		return "invalid"
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return "no_slash_prefix"
	}
	if _, dup := r.commands[name]; dup {
		return "duplicate"
	}
	return ""
}

// ListCommands returns the menu entries sorted by name. visibleOnly leaves
// out hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if !visibleOnly || (!cmd.Hidden && !cmd.AdminOnly) {
			list = append(list, tele.Command{Text: name[1:], Description: cmd.Description})
		}
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves a command name or alias, with or without the
// leading slash, to its registered key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := "/" + strings.TrimPrefix(name, "/")
	if cmd, ok := r.commands[key]; ok {
		return key, cmd, true
	}
	for k, cmd := range r.commands {
		if slices.ContainsFunc(cmd.Aliases, func(a string) bool { return "/"+strings.TrimPrefix(a, "/") == key }) {
			return k, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets the handler for text that matched no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// SetupCommands publishes visible commands to the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	list := reg.ListCommands(true)
	ctx := context.Background()
	if err := bot.SetCommands(list); err != nil {
		logger.Error(ctx, "tg.wire", "commands.publish", slog.String("status", "fail"), slog.Any("err", err))
		return
	}
	logger.Info(ctx, "tg.wire", "commands.publish", slog.String("status", "ok"), slog.Int("commands", len(list)))
}
