package chat

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt("retrieved knowledge")

	if !strings.Contains(prompt, "[CONTEXT BEGIN]\nretrieved knowledge\n[CONTEXT END]") {
		t.Error("context should sit between the delimiters")
	}
	if !strings.HasPrefix(prompt, "You are Krypton") {
		t.Error("persona preamble missing")
	}
	if strings.Contains(prompt, "%s") {
		t.Error("template placeholder leaked into the prompt")
	}
}

func TestBuildSystemPrompt_EmptyContext(t *testing.T) {
	prompt := buildSystemPrompt("")
	if !strings.Contains(prompt, "[CONTEXT BEGIN]\n\n[CONTEXT END]") {
		t.Error("empty context should leave an empty block")
	}
}

func TestSessionTitle(t *testing.T) {
	if got := sessionTitle("short"); got != "short" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := sessionTitle(long); len(got) != 30 {
		t.Errorf("expected 30 characters, got %d", len(got))
	}
	// rune-wise truncation must not split multibyte characters
	if got := sessionTitle(strings.Repeat("ü", 40)); len([]rune(got)) != 30 {
		t.Errorf("expected 30 runes, got %d", len([]rune(got)))
	}
}
