package watch

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	scriptService "escribito/internal/service/script"
	"escribito/pkg/utils"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler pushes transcript mutations to WebSocket watchers so every view of
// a session stays current without polling.
type Handler struct {
	scripts  *scriptService.Service
	upgrader websocket.Upgrader
}

// New creates the watch handler.
func New(scripts *scriptService.Service) *Handler {
	return &Handler{
		scripts: scripts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the watch route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/watch", h.handleWatch)
}

func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	events, cancel, err := h.scripts.Subscribe(sessionID)
	if err != nil {
		if errors.Is(err, scriptService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("[watch] upgrade failed for session=%s: %v", sessionID, err)
		return
	}

	log.Printf("[watch] opened for session=%s", sessionID)
	defer func() {
		cancel()
		conn.Close()
		log.Printf("[watch] closed for session=%s", sessionID)
	}()

	// Watchers never send meaningful frames; the read loop only detects
	// the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[watch] write failed for session=%s: %v", sessionID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
