package watch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	scriptService "escribito/internal/service/script"
)

func TestWatchUnknownSession(t *testing.T) {
	handler := New(scriptService.NewService())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/watch", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before upgrade, got %d", resp.Code)
	}
}
