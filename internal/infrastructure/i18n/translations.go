package i18n

import (
	"embed"
	"fmt"
	"log"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"eventbot/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var catalogue = []string{"active.en.toml", "active.fr.toml"}

var _ output.Translator = (*Translator)(nil)

// Translator wraps a go-i18n bundle and caches one localizer per requested locale.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// NewTranslator loads the embedded catalogue. An unparsable defaultLocale falls back to English;
// a catalogue that fails to load is an error.
func NewTranslator(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		log.Printf("⚠️ Langue %q invalide, anglais utilisé", defaultLocale)
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range catalogue {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		localizers:      make(map[string]*i18n.Localizer),
	}, nil
}

// DefaultLocale is the locale used when callers pass "".
func (t *Translator) DefaultLocale() string {
	return t.defaultLanguage.String()
}

// T renders key for locale, falling back to the default locale, then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		log.Printf("⚠️ i18n: clé %q introuvable (locale=%q): %v", key, locale, err)
		return key
	}
	return msg
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	langs := []string{t.defaultLanguage.String()}
	if locale != "" {
		langs = append([]string{locale}, langs...)
	}
	l := i18n.NewLocalizer(t.bundle, langs...)
	t.localizers[locale] = l
	return l
}
