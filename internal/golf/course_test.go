package golf_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"golf-caddie/internal/golf"
)

func TestExtractCourseName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I'm on the first tee of Finchley Golf Club. Please give me a weather report", "Finchley Golf Club"},
		{"We're playing at St Andrews today", "St Andrews"},
		{"Royal Troon", "Royal Troon"},
		{"Knowle Golf Club, what are the conditions", "Knowle Golf Club"},
		{"first hole of Sunningdale!", "Sunningdale"},
	}
	for _, tt := range tests {
		if got := golf.ExtractCourseName(tt.text); got != tt.want {
			t.Errorf("ExtractCourseName(%q): got %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestMentionsCourse(t *testing.T) {
	tests := map[string]bool{
		"I'm on the first tee":        true,
		"just left the clubhouse":     true,
		"hole 7 is a short par 3":     true,
		"what a lovely course":        true,
		"150 yards, what club":        false,
		"the whole thing is downhill": false,
	}
	for text, want := range tests {
		if got := golf.MentionsCourse(text); got != want {
			t.Errorf("MentionsCourse(%q): got %v, want %v", text, got, want)
		}
	}
}

func TestLayoutRules(t *testing.T) {
	if !golf.ClearsLayout("Moving on to the next hole") {
		t.Error("next hole should clear layout")
	}
	if !golf.ClearsLayout("on hole 4 now") {
		t.Error("hole number should clear layout")
	}
	if golf.ClearsLayout("150 out, what club") {
		t.Error("plain shot should not clear layout")
	}

	if !golf.DescribesLayout("dogleg left with water short of the green") {
		t.Error("dogleg should describe layout")
	}
	if golf.DescribesLayout("150 out, what club") {
		t.Error("plain shot should not describe layout")
	}

	long := strings.Repeat("a", 300)
	if got := golf.LayoutNote(long); len(got) != golf.MaxLayoutChars {
		t.Errorf("LayoutNote length: got %d, want %d", len(got), golf.MaxLayoutChars)
	}
	if got := golf.LayoutNote("  narrow fairway  "); got != "narrow fairway" {
		t.Errorf("LayoutNote: got %q", got)
	}

	accented := strings.Repeat("é", golf.MaxLayoutChars+5)
	got := golf.LayoutNote(accented)
	if !utf8.ValidString(got) || utf8.RuneCountInString(got) != golf.MaxLayoutChars {
		t.Errorf("LayoutNote split a rune: valid=%v runes=%d", utf8.ValidString(got), utf8.RuneCountInString(got))
	}
}
