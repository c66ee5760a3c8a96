package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"escribito/internal/model/script"
)

// Config aggregates all service configuration.
type Config struct {
	Server ServerConfig
	Cohere CohereConfig
	Script ScriptConfig
	I18n   I18nConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// CohereConfig describes the model gateway credentials and parameters.
type CohereConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
}

// Enabled reports whether an API key was provided.
func (c CohereConfig) Enabled() bool {
	return c.APIKey != ""
}

// ScriptConfig tunes the turn resolver and prompt composer.
type ScriptConfig struct {
	FirstSpeaker   script.Speaker
	MaxPromptBytes int
}

// I18nConfig selects the UI language bundle.
type I18nConfig struct {
	Language string
	Dir      string
}

// Flags carries values parsed from the command line; zero fields defer to the
// environment.
type Flags struct {
	Language string
	APIKey   string
	Port     int
	LangDir  string
}

// Load builds the configuration from flags and environment variables. Flags
// win over environment values.
func Load(flags Flags) (*Config, error) {
	server, err := loadServerConfig(flags.Port)
	if err != nil {
		return nil, err
	}

	cohere, err := loadCohereConfig(flags.APIKey)
	if err != nil {
		return nil, err
	}

	scriptCfg, err := loadScriptConfig()
	if err != nil {
		return nil, err
	}

	language := flags.Language
	if language == "" {
		language = strings.TrimSpace(os.Getenv("ESCRIBITO_LANGUAGE"))
	}
	langDir := flags.LangDir
	if langDir == "" {
		langDir = strings.TrimSpace(os.Getenv("ESCRIBITO_LANG_DIR"))
	}

	return &Config{
		Server: server,
		Cohere: cohere,
		Script: scriptCfg,
		I18n:   I18nConfig{Language: language, Dir: langDir},
	}, nil
}

func loadServerConfig(portFlag int) (ServerConfig, error) {
	if portFlag != 0 {
		return ServerConfig{Addr: ":" + strconv.Itoa(portFlag)}, nil
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "7860"
	}

	if strings.Contains(port, ":") {
		// Allow ":7860" or "127.0.0.1:7860" directly.
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value %q: %w", port, err)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadCohereConfig(apiKeyFlag string) (CohereConfig, error) {
	temperature, err := parseOptionalFloatEnv("ESCRIBITO_TEMPERATURE")
	if err != nil {
		return CohereConfig{}, err
	}

	apiKey := strings.TrimSpace(apiKeyFlag)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("COHERE_API_KEY"))
	}

	return CohereConfig{
		APIKey:      apiKey,
		Model:       getEnvOrDefault("ESCRIBITO_MODEL", "command-r"),
		BaseURL:     strings.TrimSpace(os.Getenv("ESCRIBITO_BASE_URL")),
		Temperature: temperature,
	}, nil
}

func loadScriptConfig() (ScriptConfig, error) {
	first := script.Speaker(getEnvOrDefault("ESCRIBITO_FIRST_SPEAKER", string(script.SpeakerA)))
	if !first.Valid() {
		return ScriptConfig{}, fmt.Errorf("invalid ESCRIBITO_FIRST_SPEAKER value %q: want %q or %q", first, script.SpeakerA, script.SpeakerB)
	}

	maxPromptBytes := 12000
	if override, err := parseOptionalIntEnv("ESCRIBITO_MAX_PROMPT_BYTES"); err != nil {
		return ScriptConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ScriptConfig{}, fmt.Errorf("ESCRIBITO_MAX_PROMPT_BYTES must be positive, got %d", *override)
		}
		maxPromptBytes = *override
	}

	return ScriptConfig{FirstSpeaker: first, MaxPromptBytes: maxPromptBytes}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
