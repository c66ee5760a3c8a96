package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	scriptHandler "escribito/internal/handler/script"
	"escribito/internal/handler/watch"
	"escribito/internal/i18n"
	middlewarePkg "escribito/internal/middleware"
	scriptService "escribito/internal/service/script"
	"escribito/pkg/utils"
)

// NewRouter wires HTTP routes to core services and the embedded UI.
func NewRouter(bundle *i18n.Bundle, scripts *scriptService.Service, resolver *scriptService.Resolver, ui fs.FS) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sh := scriptHandler.New(scripts, resolver, bundle)
	wh := watch.New(scripts)

	r.Route("/api", func(api chi.Router) {
		sh.RegisterRoutes(api)
		wh.RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/*", http.FileServer(http.FS(ui)))

	return r
}
