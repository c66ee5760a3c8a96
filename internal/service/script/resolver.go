package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"escribito/internal/model/script"
	"escribito/internal/service/ai"
)

var (
	ErrUnknownSpeaker     = errors.New("speaker must be one of the two characters")
	ErrGatewayUnavailable = errors.New("no model gateway configured")
	ErrEmptyGeneration    = errors.New("model returned an empty line")
)

// ResolverOptions configure generation turns.
type ResolverOptions struct {
	Model        string
	Temperature  *float64
	FirstSpeaker script.Speaker
}

// Resolver applies the turn-taking rule: non-empty input is appended (or
// merged onto the last utterance when the speaker repeats) verbatim, empty
// input hands the turn to the other character and asks the model gateway for
// their next line. Exactly one transcript mutation per successful submit,
// none on failure.
type Resolver struct {
	store    *Service
	gateway  ai.Gateway
	composer *ai.Composer
	opts     ResolverOptions
}

// NewResolver wires the resolver. gateway may be nil, in which case
// generation turns fail with ErrGatewayUnavailable while typed turns keep
// working.
func NewResolver(store *Service, gateway ai.Gateway, composer *ai.Composer, opts ResolverOptions) *Resolver {
	if !opts.FirstSpeaker.Valid() {
		opts.FirstSpeaker = script.SpeakerA
	}
	return &Resolver{store: store, gateway: gateway, composer: composer, opts: opts}
}

// Outcome describes the transcript mutation produced by one submit.
type Outcome struct {
	Utterance script.Utterance
	// Merged is true when the text was concatenated onto the previous
	// utterance instead of starting a new one.
	Merged bool
	// Generated is true when the line came from the model gateway.
	Generated bool
	// NextSpeaker is the character expected to speak after this turn,
	// for UI preselection.
	NextSpeaker script.Speaker
}

// Submit resolves one user submission against the session transcript.
func (r *Resolver) Submit(ctx context.Context, sessionID string, speaker script.Speaker, text string) (Outcome, error) {
	if !speaker.Valid() {
		return Outcome{}, ErrUnknownSpeaker
	}

	if err := r.store.beginTurn(sessionID); err != nil {
		return Outcome{}, err
	}
	defer r.store.endTurn(sessionID)

	if text != "" {
		return r.submitText(sessionID, speaker, text)
	}
	return r.submitGeneration(ctx, sessionID)
}

func (r *Resolver) submitText(sessionID string, speaker script.Speaker, text string) (Outcome, error) {
	last, ok, err := r.store.lastSpeaker(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	var utt script.Utterance
	merged := false
	if ok && last == speaker {
		utt, err = r.store.mergeLast(sessionID, speaker, text)
		merged = true
	} else {
		utt, err = r.store.append(sessionID, speaker, text)
	}
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Utterance: utt, Merged: merged, NextSpeaker: speaker.Other()}, nil
}

func (r *Resolver) submitGeneration(ctx context.Context, sessionID string) (Outcome, error) {
	if r.gateway == nil {
		return Outcome{}, ErrGatewayUnavailable
	}

	session, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	transcript, err := r.store.LoadTranscript(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	next := r.opts.FirstSpeaker
	if len(transcript) > 0 {
		next = transcript[len(transcript)-1].Speaker.Other()
	}

	prompt := r.composer.Compose(session.Cast, transcript, next)
	reply, err := r.gateway.Generate(ctx, ai.GenerationRequest{
		Prompt:      prompt,
		Model:       r.opts.Model,
		Temperature: r.opts.Temperature,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("generate line for %s: %w", session.Cast.BySpeaker(next).Name, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Outcome{}, ErrEmptyGeneration
	}

	utt, err := r.store.append(sessionID, next, reply)
	if err != nil {
		return Outcome{}, err
	}

	log.Printf("[script] generated turn, session=%s speaker=%s length=%d", sessionID, next, len(reply))
	return Outcome{Utterance: utt, Generated: true, NextSpeaker: next.Other()}, nil
}
