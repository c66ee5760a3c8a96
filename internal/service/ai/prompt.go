package ai

import (
	"fmt"
	"strings"

	"escribito/internal/model/script"
)

// DefaultMaxPromptBytes bounds the rendered prompt when no budget is
// configured.
const DefaultMaxPromptBytes = 12000

// Composer renders a single-string generation prompt from the cast and the
// transcript so far.
type Composer struct {
	maxBytes int
}

// NewComposer returns a composer with the given prompt byte budget.
// Non-positive budgets select the default.
func NewComposer(maxBytes int) *Composer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPromptBytes
	}
	return &Composer{maxBytes: maxBytes}
}

// Compose builds the prompt: both character sheets, the transcript rendered as
// "Name: text" lines in order, and a closing instruction to continue as the
// designated next speaker. When the rendered prompt would exceed the byte
// budget, the oldest transcript lines are dropped first; the character sheets
// and the instruction are never dropped.
func (c *Composer) Compose(cast script.Cast, transcript []script.Utterance, next script.Speaker) string {
	var header strings.Builder
	header.WriteString("The following is a dialogue between two fictional characters.\n\n")
	writeCharacterSheet(&header, cast.A)
	writeCharacterSheet(&header, cast.B)
	header.WriteString("\nDialogue so far:\n")

	instruction := fmt.Sprintf(
		"\nContinue the dialogue with the next line spoken by %s. Reply with that line only.\n",
		cast.BySpeaker(next).Name,
	)

	lines := make([]string, len(transcript))
	total := header.Len() + len(instruction)
	for i, utt := range transcript {
		lines[i] = fmt.Sprintf("%s: %s\n", cast.BySpeaker(utt.Speaker).Name, utt.Text)
		total += len(lines[i])
	}

	start := 0
	for start < len(lines) && total > c.maxBytes {
		total -= len(lines[start])
		start++
	}

	var b strings.Builder
	b.WriteString(header.String())
	if len(lines) == 0 {
		b.WriteString("(the dialogue has not started yet)\n")
	}
	for _, line := range lines[start:] {
		b.WriteString(line)
	}
	b.WriteString(instruction)
	return b.String()
}

func writeCharacterSheet(b *strings.Builder, ch script.Character) {
	fmt.Fprintf(b, "- Name: %s\n  Backstory: %s\n", ch.Name, ch.Backstory)
}
