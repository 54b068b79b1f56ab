package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/assetbot/core/telegram"
	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/catalog"
	"github.com/m3rciful/assetbot/internal/engine"
	"github.com/m3rciful/assetbot/internal/session"
)

func newBot() *Bot {
	sub := engine.SubmitterFunc(func(context.Context, []asset.Record) error { return nil })
	return New(engine.New(catalog.Default(), session.NewMemoryStore(), sub), 42)
}

func TestInboundFromUpdate(t *testing.T) {
	c := tele.NewContext(nil, tele.Update{Message: &tele.Message{
		Sender: &tele.User{ID: 7, Username: "ivan", FirstName: "Иван", LastName: "Петров"},
		Text:   "5.5",
	}})
	assert.Equal(t, engine.Inbound{UserID: 7, Username: "ivan", DisplayName: "Иван Петров", Text: "5.5"}, inbound(c))

	c = tele.NewContext(nil, tele.Update{Message: &tele.Message{
		Sender: &tele.User{ID: 8, FirstName: "Anna"},
	}})
	assert.Equal(t, "Anna", inbound(c).DisplayName)
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, markup(engine.Keyboard{}))
	assert.True(t, markup(engine.Keyboard{Remove: true}).RemoveKeyboard)

	m := markup(engine.Keyboard{Rows: [][]string{{"₽ RUB", "$ USD"}, {"⬅️ Назад"}}})
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Equal(t, "$ USD", m.ReplyKeyboard[0][1].Text)
	assert.True(t, m.ResizeKeyboard)
}

func TestRegisterHidesAdminCommands(t *testing.T) {
	reg := tg.NewRegistry()
	newBot().Register(reg)

	var names []string
	for _, c := range reg.ListCommands(true) {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"add", "back", "cancel", "help", "start", "status"}, names)

	_, cmd, ok := reg.LookupCommand("/sessions")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)
	assert.NotNil(t, reg.TextFallback())
}

func TestRoutesCoverCommandsAndText(t *testing.T) {
	reg := tg.NewRegistry()
	b := newBot()
	b.Register(reg)

	endpoints := map[any]bool{}
	for _, r := range b.Routes(reg) {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/add", "/sessions", tele.OnText, tele.OnPhoto, tele.OnDocument} {
		assert.True(t, endpoints[want], "missing route %v", want)
	}
}

func TestInProgressFollowsEngine(t *testing.T) {
	b := newBot()
	assert.False(t, b.InProgress(1))
	b.engine.Enter(context.Background(), engine.Inbound{UserID: 1})
	assert.True(t, b.InProgress(1))
}
