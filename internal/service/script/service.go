package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"escribito/internal/model/script"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("a turn is already in flight for this session")
	ErrCharacterName   = errors.New("both characters need a name")
)

// Event describes one transcript mutation pushed to watchers.
type Event struct {
	Type      string            `json:"type"` // "utterance" or "reset"
	Utterance *script.Utterance `json:"utterance,omitempty"`
	Merged    bool              `json:"merged,omitempty"`
}

// Service owns the in-memory session state: one cast and one append-only
// transcript per session. All mutations go through the Resolver or Reset, so
// the transcript only ever grows by whole utterances.
type Service struct {
	mu          sync.RWMutex
	sessions    map[string]script.Session
	transcripts map[string][]script.Utterance
	inFlight    map[string]bool
	watchers    map[string]map[chan Event]struct{}
}

// NewService bootstraps the in-memory script service.
func NewService() *Service {
	return &Service{
		sessions:    make(map[string]script.Session),
		transcripts: make(map[string][]script.Utterance),
		inFlight:    make(map[string]bool),
		watchers:    make(map[string]map[chan Event]struct{}),
	}
}

// CreateSession provisions a session with the given cast and an empty
// transcript.
func (s *Service) CreateSession(_ context.Context, cast script.Cast) (script.Session, error) {
	if strings.TrimSpace(cast.A.Name) == "" || strings.TrimSpace(cast.B.Name) == "" {
		return script.Session{}, ErrCharacterName
	}

	session := script.Session{
		ID:        uuid.NewString(),
		Cast:      cast,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.transcripts[session.ID] = make([]script.Utterance, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (script.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return script.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns a copy of the session's transcript.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]script.Utterance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript, ok := s.transcripts[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]script.Utterance, len(transcript))
	copy(copied, transcript)
	return copied, nil
}

// UpdateCast replaces both character definitions. Characters are immutable
// while a generation turn is in flight.
func (s *Service) UpdateCast(_ context.Context, sessionID string, cast script.Cast) (script.Session, error) {
	if strings.TrimSpace(cast.A.Name) == "" || strings.TrimSpace(cast.B.Name) == "" {
		return script.Session{}, ErrCharacterName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return script.Session{}, ErrSessionNotFound
	}
	if s.inFlight[sessionID] {
		return script.Session{}, ErrTurnInFlight
	}

	session.Cast = cast
	s.sessions[sessionID] = session
	return session, nil
}

// Reset clears the transcript, keeping the session and its cast.
func (s *Service) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if s.inFlight[sessionID] {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.transcripts[sessionID] = s.transcripts[sessionID][:0]
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: "reset"})
	return nil
}

// ExportText renders the transcript as speaker-prefixed plain text lines.
func (s *Service) ExportText(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}

	var b strings.Builder
	for _, utt := range s.transcripts[sessionID] {
		fmt.Fprintf(&b, "%s: %s\n", session.Cast.BySpeaker(utt.Speaker).Name, utt.Text)
	}
	return b.String(), nil
}

// Subscribe registers a watcher for the session's transcript events. The
// returned cancel func must be called when the watcher goes away. Events are
// dropped rather than blocking a slow watcher.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan Event, 16)
	if s.watchers[sessionID] == nil {
		s.watchers[sessionID] = make(map[chan Event]struct{})
	}
	s.watchers[sessionID][ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.watchers[sessionID]; ok {
			delete(set, ch)
		}
	}
	return ch, cancel, nil
}

// beginTurn marks the session busy for the duration of one submit. It fails
// when another turn is already being resolved.
func (s *Service) beginTurn(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	if s.inFlight[sessionID] {
		return ErrTurnInFlight
	}
	s.inFlight[sessionID] = true
	return nil
}

func (s *Service) endTurn(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

// append commits a new utterance. Text must be non-empty; callers enforce it.
func (s *Service) append(sessionID string, speaker script.Speaker, text string) (script.Utterance, error) {
	utt := script.Utterance{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.mu.Unlock()
		return script.Utterance{}, ErrSessionNotFound
	}
	s.transcripts[sessionID] = append(s.transcripts[sessionID], utt)
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: "utterance", Utterance: &utt})
	return utt, nil
}

// mergeLast concatenates text onto the last utterance, which must belong to
// the given speaker. The utterance keeps its identity.
func (s *Service) mergeLast(sessionID string, speaker script.Speaker, text string) (script.Utterance, error) {
	s.mu.Lock()
	transcript, ok := s.transcripts[sessionID]
	if !ok {
		s.mu.Unlock()
		return script.Utterance{}, ErrSessionNotFound
	}
	last := &transcript[len(transcript)-1]
	if last.Speaker != speaker {
		s.mu.Unlock()
		return script.Utterance{}, fmt.Errorf("merge target speaker mismatch: %s != %s", last.Speaker, speaker)
	}
	last.Text = last.Text + " " + text
	utt := *last
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: "utterance", Utterance: &utt, Merged: true})
	return utt, nil
}

// lastSpeaker reports who spoke last, or false on an empty transcript.
func (s *Service) lastSpeaker(sessionID string) (script.Speaker, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript, ok := s.transcripts[sessionID]
	if !ok {
		return "", false, ErrSessionNotFound
	}
	if len(transcript) == 0 {
		return "", false, nil
	}
	return transcript[len(transcript)-1].Speaker, true, nil
}

func (s *Service) notify(sessionID string, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.watchers[sessionID] {
		select {
		case ch <- event:
		default:
		}
	}
}
