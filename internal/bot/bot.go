// Package bot connects the questionnaire engine to Telegram.
package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/assetbot/core/telegram"
	"github.com/m3rciful/assetbot/core/telegram/commands"
	"github.com/m3rciful/assetbot/core/telegram/helpers"
	"github.com/m3rciful/assetbot/core/telegram/keyboard"
	"github.com/m3rciful/assetbot/core/telegram/router"
	"github.com/m3rciful/assetbot/internal/engine"
)

const (
	mediaText    = "📎 Файлы не принимаются. Пришлите ссылку на изображение текстом или \"-\"."
	limitedText  = "⏳ Слишком много сообщений. Подождите секунду."
	adminOnlyTxt = "⛔ Команда доступна только администратору."
)

// Bot turns Telegram updates into engine calls and engine replies into messages.
type Bot struct {
	engine  *engine.Engine
	adminID int64
}

// New returns a Bot over e. Commands marked admin-only are allowed for adminID only.
func New(e *engine.Engine, adminID int64) *Bot {
	return &Bot{engine: e, adminID: adminID}
}

// Register adds the bot commands and the plain-text fallback to reg.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.on(b.engine.Start),
		Description: "Главное меню",
	})
	reg.RegisterCommand("/add", commands.Command{
		Handler:     b.on(b.engine.Enter),
		Description: "Добавить актив",
	})
	reg.RegisterCommand("/back", commands.Command{
		Handler:     b.on(b.engine.Back),
		Description: "Вернуться к предыдущему вопросу",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.on(b.engine.Cancel),
		Description: "Отменить заполнение анкеты",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     b.on(b.engine.Status),
		Description: "Текущий шаг анкеты",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.on(b.engine.Help),
		Description: "Справка",
	})
	reg.RegisterCommand("/sessions", commands.Command{
		Handler:     b.sessions,
		Description: "Число незавершённых анкет",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.SetTextFallback(b.on(b.engine.Handle))
}

// Routes returns command, text and media routes for the bot runtime.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       b.adminID,
		OnAdminReject: func(c tele.Context) error { return helpers.SendHTML(c, adminOnlyTxt) },
	})
	return append(routes, router.TextRoutes(b, reg, router.TextOptions{
		UnknownMedia: b.media,
	})...)
}

// InProgress reports whether the user is answering the questionnaire.
func (b *Bot) InProgress(userID int64) bool {
	return b.engine.InProgress(userID)
}

// HandleText passes a dialog reply to the engine.
func (b *Bot) HandleText(c tele.Context) error {
	return b.on(b.engine.Handle)(c)
}

// Limited answers updates dropped by the rate limiter.
func (b *Bot) Limited(c tele.Context) error {
	return helpers.SendText(c, limitedText)
}

// media explains that files are not accepted and repeats the pending question.
func (b *Bot) media(c tele.Context) error {
	if c.Sender() == nil || !b.engine.InProgress(c.Sender().ID) {
		return helpers.SendHTML(c, mediaText)
	}
	r := b.engine.Enter(helpers.BuildContext(c), inbound(c))
	return helpers.SendHTML(c, mediaText+"\n\n"+r.Text, markup(r.Keyboard))
}

func (b *Bot) sessions(c tele.Context) error {
	return helpers.SendHTML(c, fmt.Sprintf("Незавершённых анкет: %d", b.engine.Sessions()))
}

func (b *Bot) on(fn func(context.Context, engine.Inbound) engine.Reply) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)
		r := fn(ctx, inbound(c))
		return helpers.SendHTML(c, r.Text, markup(r.Keyboard))
	}
}

func inbound(c tele.Context) engine.Inbound {
	in := engine.Inbound{Text: c.Text()}
	if u := c.Sender(); u != nil {
		in.UserID = u.ID
		in.Username = u.Username
		in.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return in
}

func markup(kb engine.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb.Remove:
		return keyboard.RemoveKeyboard()
	case len(kb.Rows) > 0:
		return keyboard.ReplyButtons(kb.Rows...)
	}
	return nil
}
