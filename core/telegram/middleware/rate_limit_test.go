package middleware

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func textUpdate(id int, userID int64, text string) tele.Context {
	return tele.NewContext(nil, tele.Update{
		ID: id,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
			Text:   text,
		},
	})
}

func TestRateLimitDropsBurstFromSameUser(t *testing.T) {
	var handled, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { handled++; return nil })

	_ = h(textUpdate(1, 10, "a"))
	_ = h(textUpdate(2, 10, "b"))
	_ = h(textUpdate(3, 11, "c"))

	if handled != 2 || limited != 1 {
		t.Fatalf("handled=%d limited=%d, want 2 and 1", handled, limited)
	}
}

func TestRateLimitExcludedKind(t *testing.T) {
	var handled int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"command": {}},
	})
	h := mw(func(tele.Context) error { handled++; return nil })

	_ = h(textUpdate(1, 10, "/start"))
	_ = h(textUpdate(2, 10, "/status"))
	if handled != 2 {
		t.Fatalf("handled=%d, want 2", handled)
	}
}

func TestUpdateKind(t *testing.T) {
	cases := map[string]tele.Update{
		"command": {Message: &tele.Message{Text: "/add"}},
		"message": {Message: &tele.Message{Text: "Акции"}},
		"media":   {Message: &tele.Message{Photo: &tele.Photo{}}},
		"other":   {},
	}
	for want, upd := range cases {
		if got := UpdateKind(upd); got != want {
			t.Errorf("UpdateKind = %q, want %q", got, want)
		}
	}
}

func TestAdminOnly(t *testing.T) {
	var reached, rejected int
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  10,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	h := mw(func(tele.Context) error { reached++; return nil })

	_ = h(textUpdate(1, 10, "/sessions"))
	_ = h(textUpdate(2, 11, "/sessions"))
	if reached != 1 || rejected != 1 {
		t.Fatalf("reached=%d rejected=%d", reached, rejected)
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(textUpdate(1, 10, "x")); err != nil {
		t.Fatalf("err = %v", err)
	}
}
