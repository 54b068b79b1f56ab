package router

import (
	"errors"
	"net"
	"testing"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/assetbot/core/telegram"
	"github.com/m3rciful/assetbot/core/telegram/commands"
)

type fakeConv struct {
	active  bool
	handled int
}

func (f *fakeConv) InProgress(int64) bool { return f.active }

func (f *fakeConv) HandleText(tele.Context) error {
	f.handled++
	return nil
}

func textCtx(text string) tele.Context {
	return tele.NewContext(nil, tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: &tele.User{ID: 7},
			Chat:   &tele.Chat{ID: 7},
			Text:   text,
		},
	})
}

func textHandler(t *testing.T, routes []tg.Route) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == tele.OnText {
			return r.Handler
		}
	}
	t.Fatal("no OnText route")
	return nil
}

func TestTextRoutesPreferDialog(t *testing.T) {
	reg := tg.NewRegistry()
	var aliasHits, fallbackHits int
	reg.RegisterCommand("/add", commands.Command{
		Description: "add",
		Aliases:     []string{"new"},
		Handler:     func(tele.Context) error { aliasHits++; return nil },
	})
	reg.SetTextFallback(func(tele.Context) error { fallbackHits++; return nil })

	conv := &fakeConv{active: true}
	h := textHandler(t, TextRoutes(conv, reg, TextOptions{}))

	_ = h(textCtx("new"))
	if conv.handled != 1 || aliasHits != 0 {
		t.Fatalf("dialog=%d alias=%d", conv.handled, aliasHits)
	}

	conv.active = false
	_ = h(textCtx("new"))
	_ = h(textCtx("hello"))
	if aliasHits != 1 || fallbackHits != 1 {
		t.Fatalf("alias=%d fallback=%d", aliasHits, fallbackHits)
	}
}

func TestCommandRoutesWrapAdmin(t *testing.T) {
	reg := tg.NewRegistry()
	var hits, rejected int
	reg.RegisterCommand("/sessions", commands.Command{
		Description: "sessions",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { hits++; return nil },
	})
	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       99,
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	})
	if len(routes) != 1 {
		t.Fatalf("routes = %d", len(routes))
	}
	_ = routes[0].Handler(textCtx("/sessions"))
	if hits != 0 || rejected != 1 {
		t.Fatalf("hits=%d rejected=%d", hits, rejected)
	}
}

func TestPlainTextSkipsAdminOnlyCommands(t *testing.T) {
	reg := tg.NewRegistry()
	var hits, fallbackHits int
	reg.RegisterCommand("/sessions", commands.Command{
		Description: "sessions",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { hits++; return nil },
	})
	reg.SetTextFallback(func(tele.Context) error { fallbackHits++; return nil })

	h := textHandler(t, TextRoutes(&fakeConv{}, reg, TextOptions{}))
	for _, text := range []string{"sessions", "Sessions"} {
		_ = h(textCtx(text))
	}
	if hits != 0 || fallbackHits != 2 {
		t.Fatalf("admin hits=%d fallback=%d", hits, fallbackHits)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "store unavailable" }

func TestErrorCode(t *testing.T) {
	if got := errorCode(codedErr{}); got != "STORE_UNAVAILABLE" {
		t.Fatalf("code = %q", got)
	}
	wrapped := errors.Join(errors.New("ctx"), codedErr{})
	if got := errorCode(wrapped); got != "STORE_UNAVAILABLE" {
		t.Fatalf("wrapped code = %q", got)
	}
	if got := errorCode(&net.DNSError{}); got != "DNSERROR" {
		t.Fatalf("type code = %q", got)
	}
}

func TestHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Sessions ": "sessions",
		"my  cmd":    "my_cmd",
		" / ":        "unknown",
	}
	for in, want := range cases {
		if got := handlerName(in); got != want {
			t.Errorf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
