package i18n

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"escribito/internal/model/script"
)

//go:embed locales/*.yaml
var locales embed.FS

// DefaultLanguage is the bundle every lookup falls back to.
const DefaultLanguage = "en"

// Bundle maps UI text keys to translated strings with an English fallback
// chain. Bundles are immutable after Load.
type Bundle struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// Load returns the bundle for lang. When dir is non-empty it is consulted
// before the embedded locales, so deployments can ship their own
// translations. An unknown language falls back to embedded English rather
// than failing startup.
func Load(dir, lang string) (*Bundle, error) {
	fallback, err := loadEmbedded(DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("load default language bundle: %w", err)
	}

	if lang == "" {
		lang = DefaultLanguage
	}

	messages, err := loadMessages(dir, lang)
	if err != nil {
		if lang != DefaultLanguage {
			log.Printf("[i18n] language %q unavailable, falling back to %s: %v", lang, DefaultLanguage, err)
		}
		lang = DefaultLanguage
		messages = fallback
	}

	return &Bundle{lang: lang, messages: messages, fallback: fallback}, nil
}

// Language reports the language the bundle actually resolved to.
func (b *Bundle) Language() string {
	return b.lang
}

// Get looks up a key, falling back to English, then to the empty string.
func (b *Bundle) Get(key string) string {
	if v, ok := b.messages[key]; ok {
		return v
	}
	return b.fallback[key]
}

// Messages returns the merged key set for the frontend: English defaults
// overlaid with the resolved language.
func (b *Bundle) Messages() map[string]string {
	merged := make(map[string]string, len(b.fallback))
	for k, v := range b.fallback {
		merged[k] = v
	}
	for k, v := range b.messages {
		merged[k] = v
	}
	return merged
}

// DefaultCast builds the two default characters from the bundle.
func (b *Bundle) DefaultCast() script.Cast {
	return script.Cast{
		A: script.Character{Name: b.Get("character.a.name"), Backstory: b.Get("character.a.story")},
		B: script.Character{Name: b.Get("character.b.name"), Backstory: b.Get("character.b.story")},
	}
}

func loadMessages(dir, lang string) (map[string]string, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, lang+".yaml"))
		if err == nil {
			return parseMessages(data)
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read language file: %w", err)
		}
	}
	return loadEmbedded(lang)
}

func loadEmbedded(lang string) (map[string]string, error) {
	data, err := locales.ReadFile("locales/" + lang + ".yaml")
	if err != nil {
		return nil, err
	}
	return parseMessages(data)
}

func parseMessages(data []byte) (map[string]string, error) {
	messages := make(map[string]string)
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse language file: %w", err)
	}
	return messages, nil
}
