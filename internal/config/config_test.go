package config

import (
	"testing"

	"escribito/internal/model/script"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("COHERE_API_KEY", "")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":7860" {
		t.Fatalf("expected default addr :7860, got %q", cfg.Server.Addr)
	}
	if cfg.Cohere.Enabled() {
		t.Fatal("gateway should be disabled without an API key")
	}
	if cfg.Cohere.Model != "command-r" {
		t.Fatalf("expected default model command-r, got %q", cfg.Cohere.Model)
	}
	if cfg.Script.FirstSpeaker != script.SpeakerA {
		t.Fatalf("expected default first speaker a, got %q", cfg.Script.FirstSpeaker)
	}
	if cfg.Script.MaxPromptBytes != 12000 {
		t.Fatalf("expected default prompt budget 12000, got %d", cfg.Script.MaxPromptBytes)
	}
}

func TestLoadPortFromEnv(t *testing.T) {
	t.Setenv("PORT", "8000")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("expected :8000, got %q", cfg.Server.Addr)
	}
}

func TestLoadPortFlagWinsOverEnv(t *testing.T) {
	t.Setenv("PORT", "8000")

	cfg, err := Load(Flags{Port: 9000})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Server.Addr)
	}
}

func TestLoadPortWithHost(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:7860")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7860" {
		t.Fatalf("expected host:port passthrough, got %q", cfg.Server.Addr)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not a port")

	if _, err := Load(Flags{}); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestAPIKeyFlagWinsOverEnv(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "env-key")

	cfg, err := Load(Flags{APIKey: "flag-key"})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Cohere.APIKey != "flag-key" {
		t.Fatalf("expected flag key, got %q", cfg.Cohere.APIKey)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "env-key")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Cohere.APIKey != "env-key" {
		t.Fatalf("expected env key, got %q", cfg.Cohere.APIKey)
	}
	if !cfg.Cohere.Enabled() {
		t.Fatal("gateway should be enabled with an API key")
	}
}

func TestTemperatureParsed(t *testing.T) {
	t.Setenv("ESCRIBITO_TEMPERATURE", "0.6")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Cohere.Temperature == nil || *cfg.Cohere.Temperature != 0.6 {
		t.Fatalf("expected temperature 0.6, got %v", cfg.Cohere.Temperature)
	}
}

func TestInvalidTemperature(t *testing.T) {
	t.Setenv("ESCRIBITO_TEMPERATURE", "hot")

	if _, err := Load(Flags{}); err == nil {
		t.Fatal("expected error for invalid temperature")
	}
}

func TestFirstSpeakerOverride(t *testing.T) {
	t.Setenv("ESCRIBITO_FIRST_SPEAKER", "b")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Script.FirstSpeaker != script.SpeakerB {
		t.Fatalf("expected first speaker b, got %q", cfg.Script.FirstSpeaker)
	}
}

func TestInvalidFirstSpeaker(t *testing.T) {
	t.Setenv("ESCRIBITO_FIRST_SPEAKER", "both")

	if _, err := Load(Flags{}); err == nil {
		t.Fatal("expected error for invalid first speaker")
	}
}

func TestInvalidPromptBudget(t *testing.T) {
	t.Setenv("ESCRIBITO_MAX_PROMPT_BYTES", "-1")

	if _, err := Load(Flags{}); err == nil {
		t.Fatal("expected error for non-positive prompt budget")
	}
}

func TestLanguageFromEnv(t *testing.T) {
	t.Setenv("ESCRIBITO_LANGUAGE", "es")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.I18n.Language != "es" {
		t.Fatalf("expected es, got %q", cfg.I18n.Language)
	}

	cfg, err = Load(Flags{Language: "fr"})
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.I18n.Language != "fr" {
		t.Fatalf("flag should win, got %q", cfg.I18n.Language)
	}
}
