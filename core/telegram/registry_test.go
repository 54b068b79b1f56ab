package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/assetbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/add", commands.Command{Handler: noop, Description: "add", Aliases: []string{"new"}})
	reg.RegisterCommand("/sessions", commands.Command{Handler: noop, Description: "sessions", AdminOnly: true, Hidden: true})
	reg.RegisterCommand("status", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "duplicate"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})

	if got := len(reg.Commands()); got != 3 {
		t.Fatalf("commands = %d, want 3", got)
	}
	if reg.Commands()["/start"].Description != "start" {
		t.Fatal("duplicate registration replaced the original")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "add" || visible[1].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}

	key, _, ok := reg.LookupCommand("new")
	if !ok || key != "/add" {
		t.Fatalf("alias lookup = %q %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/missing"); ok {
		t.Fatal("unexpected command found")
	}
}
