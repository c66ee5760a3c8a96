package ai_test

import (
	"strings"
	"testing"

	"escribito/internal/model/script"
	"escribito/internal/service/ai"
)

func testCast() script.Cast {
	return script.Cast{
		A: script.Character{Name: "Alice", Backstory: "A wandering knight."},
		B: script.Character{Name: "Bob", Backstory: "A retired dragon."},
	}
}

func TestComposeIncludesCharacterSheets(t *testing.T) {
	composer := ai.NewComposer(0)
	prompt := composer.Compose(testCast(), nil, script.SpeakerA)

	for _, want := range []string{"Alice", "A wandering knight.", "Bob", "A retired dragon."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.Contains(prompt, "spoken by Alice") {
		t.Fatalf("prompt does not name the next speaker:\n%s", prompt)
	}
}

func TestComposeRendersTranscriptInOrder(t *testing.T) {
	composer := ai.NewComposer(0)
	transcript := []script.Utterance{
		{Speaker: script.SpeakerA, Text: "Hello there."},
		{Speaker: script.SpeakerB, Text: "Who goes?"},
	}

	prompt := composer.Compose(testCast(), transcript, script.SpeakerA)

	first := strings.Index(prompt, "Alice: Hello there.")
	second := strings.Index(prompt, "Bob: Who goes?")
	if first < 0 || second < 0 {
		t.Fatalf("transcript lines missing:\n%s", prompt)
	}
	if first > second {
		t.Fatalf("transcript lines out of order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "spoken by Alice") {
		t.Fatalf("instruction does not name Alice:\n%s", prompt)
	}
}

func TestComposeEmptyTranscript(t *testing.T) {
	composer := ai.NewComposer(0)
	prompt := composer.Compose(testCast(), nil, script.SpeakerB)

	if !strings.Contains(prompt, "has not started yet") {
		t.Fatalf("expected empty-dialogue marker:\n%s", prompt)
	}
	if !strings.Contains(prompt, "spoken by Bob") {
		t.Fatalf("instruction does not name Bob:\n%s", prompt)
	}
}

func TestComposeTruncatesOldestFirst(t *testing.T) {
	transcript := []script.Utterance{
		{Speaker: script.SpeakerA, Text: "line-one"},
		{Speaker: script.SpeakerB, Text: "line-two"},
		{Speaker: script.SpeakerA, Text: "line-three"},
	}

	full := ai.NewComposer(0).Compose(testCast(), transcript, script.SpeakerB)
	truncated := ai.NewComposer(len(full) - 1).Compose(testCast(), transcript, script.SpeakerB)

	if strings.Contains(truncated, "line-one") {
		t.Fatalf("oldest line should be dropped first:\n%s", truncated)
	}
	for _, want := range []string{"line-two", "line-three"} {
		if !strings.Contains(truncated, want) {
			t.Fatalf("newer line %q should survive truncation:\n%s", want, truncated)
		}
	}
	if !strings.Contains(truncated, "A wandering knight.") {
		t.Fatalf("character sheets must never be truncated:\n%s", truncated)
	}
}

func TestComposeTinyBudgetKeepsSheetsAndInstruction(t *testing.T) {
	transcript := []script.Utterance{
		{Speaker: script.SpeakerA, Text: "anything"},
	}

	prompt := ai.NewComposer(1).Compose(testCast(), transcript, script.SpeakerB)

	if strings.Contains(prompt, "anything") {
		t.Fatalf("transcript should be fully dropped under a tiny budget:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Alice") || !strings.Contains(prompt, "spoken by Bob") {
		t.Fatalf("sheets and instruction must survive:\n%s", prompt)
	}
}
