// Command escribito serves the two-character scripted dialogue UI.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"escribito/internal/config"
	"escribito/internal/handler"
	"escribito/internal/i18n"
	"escribito/internal/service/ai"
	scriptService "escribito/internal/service/script"
	"escribito/web"
)

func main() {
	language := flag.String("language", "", "UI language identifier (default from ESCRIBITO_LANGUAGE, then English)")
	apiKey := flag.String("api-key", "", "Cohere API key (default from COHERE_API_KEY)")
	port := flag.Int("port", 0, "HTTP port to listen on (default from PORT, then 7860)")
	langDir := flag.String("lang-dir", "", "directory with additional language files")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load(config.Flags{
		Language: *language,
		APIKey:   *apiKey,
		Port:     *port,
		LangDir:  *langDir,
	})
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	bundle, err := i18n.Load(cfg.I18n.Dir, cfg.I18n.Language)
	if err != nil {
		log.Fatalf("failed to load language bundle: %v", err)
	}
	log.Printf("language bundle resolved to %q", bundle.Language())

	scripts := scriptService.NewService()

	var gateway ai.Gateway
	if cfg.Cohere.Enabled() {
		cohere, err := ai.NewCohereGateway(cfg.Cohere.APIKey, cfg.Cohere.BaseURL)
		if err != nil {
			log.Fatalf("failed to initialize model gateway: %v", err)
		}
		gateway = cohere
		log.Printf("model gateway initialized, model=%s", cfg.Cohere.Model)
	} else {
		log.Println("warning: no Cohere API key configured (--api-key or COHERE_API_KEY)")
		log.Println("typed turns will work, generation turns will fail")
	}

	composer := ai.NewComposer(cfg.Script.MaxPromptBytes)
	resolver := scriptService.NewResolver(scripts, gateway, composer, scriptService.ResolverOptions{
		Model:        cfg.Cohere.Model,
		Temperature:  cfg.Cohere.Temperature,
		FirstSpeaker: cfg.Script.FirstSpeaker,
	})

	router := handler.NewRouter(bundle, scripts, resolver, web.Assets)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Escribito listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
