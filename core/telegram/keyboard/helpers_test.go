package keyboard

import (
	"reflect"
	"testing"
)

func TestReplyButtonsLayout(t *testing.T) {
	m := ReplyButtons([]string{"a", "b"}, nil, []string{"c"})
	if !m.ResizeKeyboard {
		t.Fatal("keyboard must be resized")
	}
	if len(m.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.ReplyKeyboard))
	}
	if m.ReplyKeyboard[0][1].Text != "b" || m.ReplyKeyboard[1][0].Text != "c" {
		t.Fatalf("unexpected layout: %+v", m.ReplyKeyboard)
	}
}

func TestChunk(t *testing.T) {
	got := Chunk([]string{"a", "b", "c", "d", "e"}, 2)
	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Chunk = %v", got)
	}
	if got := Chunk([]string{"a", "b"}, 0); len(got) != 2 {
		t.Fatalf("Chunk n=0 = %v", got)
	}
}

func TestRemoveKeyboard(t *testing.T) {
	if !RemoveKeyboard().RemoveKeyboard {
		t.Fatal("RemoveKeyboard flag not set")
	}
}
