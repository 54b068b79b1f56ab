package format

import "testing"

func TestBoldEscapes(t *testing.T) {
	got := Bold("a<b>&c")
	want := "<b>a&lt;b&gt;&amp;c</b>"
	if got != want {
		t.Fatalf("Bold = %q, want %q", got, want)
	}
}

func TestLinesSkipsEmpty(t *testing.T) {
	got := Lines("one", "", "two")
	if got != "one\ntwo" {
		t.Fatalf("Lines = %q", got)
	}
}
