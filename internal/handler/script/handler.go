package script

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"escribito/internal/i18n"
	scriptModel "escribito/internal/model/script"
	scriptService "escribito/internal/service/script"
	"escribito/pkg/utils"
)

// Handler exposes session and turn endpoints.
type Handler struct {
	scripts  *scriptService.Service
	resolver *scriptService.Resolver
	bundle   *i18n.Bundle
}

// New creates the script handler.
func New(scripts *scriptService.Service, resolver *scriptService.Resolver, bundle *i18n.Bundle) *Handler {
	return &Handler{
		scripts:  scripts,
		resolver: resolver,
		bundle:   bundle,
	}
}

// RegisterRoutes mounts the script routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ui", h.handleUIConfig)
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Put("/sessions/{sessionID}/cast", h.handleUpdateCast)
	r.Post("/sessions/{sessionID}/turns", h.handleSubmitTurn)
	r.Post("/sessions/{sessionID}/reset", h.handleReset)
	r.Get("/sessions/{sessionID}/export", h.handleExport)
}

// handleUIConfig serves the resolved language bundle and default cast so the
// frontend carries no hardcoded text.
func (h *Handler) handleUIConfig(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"language":    h.bundle.Language(),
		"messages":    h.bundle.Messages(),
		"defaultCast": h.bundle.DefaultCast(),
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Cast *scriptModel.Cast `json:"cast"`
	}

	// An empty body is fine: the default cast comes from the language bundle.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cast := h.bundle.DefaultCast()
	if payload.Cast != nil {
		cast = *payload.Cast
	}

	session, err := h.scripts.CreateSession(r.Context(), cast)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.scripts.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	transcript, err := h.scripts.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session":    session,
		"transcript": transcript,
	})
}

func (h *Handler) handleUpdateCast(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var cast scriptModel.Cast
	if err := json.NewDecoder(r.Body).Decode(&cast); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.scripts.UpdateCast(r.Context(), sessionID, cast)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Speaker scriptModel.Speaker `json:"speaker"`
		Text    string              `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.resolver.Submit(r.Context(), sessionID, payload.Speaker, payload.Text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	transcript, err := h.scripts.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"utterance":   outcome.Utterance,
		"merged":      outcome.Merged,
		"generated":   outcome.Generated,
		"nextSpeaker": outcome.NextSpeaker,
		"transcript":  transcript,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.scripts.Reset(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	body, err := h.scripts.ExportText(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	filename := "escribito-" + shortID(sessionID) + ".txt"
	utils.RespondTextAttachment(w, filename, body)
}

// respondServiceError maps service sentinels to HTTP status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scriptService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scriptService.ErrTurnInFlight):
		utils.RespondError(w, http.StatusConflict, h.bundle.Get("error.turn_in_flight"))
	case errors.Is(err, scriptService.ErrUnknownSpeaker),
		errors.Is(err, scriptService.ErrCharacterName):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scriptService.ErrGatewayUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		// Gateway and generation failures: transcript is untouched, tell
		// the user in their language.
		utils.RespondError(w, http.StatusBadGateway, h.bundle.Get("error.generation"))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
