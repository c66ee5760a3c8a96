package script

import "time"

// Speaker identifies one of the two cast slots in a session.
type Speaker string

const (
	SpeakerA Speaker = "a"
	SpeakerB Speaker = "b"
)

// Valid reports whether s names one of the two cast slots.
func (s Speaker) Valid() bool {
	return s == SpeakerA || s == SpeakerB
}

// Other returns the opposite cast slot.
func (s Speaker) Other() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// Character is a named persona whose backstory conditions generated lines.
type Character struct {
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
}

// Cast holds both character definitions for a session.
type Cast struct {
	A Character `json:"a"`
	B Character `json:"b"`
}

// BySpeaker returns the character occupying the given slot.
func (c Cast) BySpeaker(s Speaker) Character {
	if s == SpeakerA {
		return c.A
	}
	return c.B
}

// Utterance is one attributed line of dialogue in the transcript.
type Utterance struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session captures one scripted dialogue and its cast.
type Session struct {
	ID        string    `json:"id"`
	Cast      Cast      `json:"cast"`
	CreatedAt time.Time `json:"createdAt"`
}
