package localization

import (
	"embed"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Manager resolves translated strings. Unknown languages fall back to
// the configured default, unknown message ids fall back to the id
// itself so a missing translation is visible instead of fatal.
type Manager struct {
	bundle      *i18n.Bundle
	localizers  map[string]*i18n.Localizer
	supported   map[string]bool
	defaultLang string
	log         *tracing.Logger
}

func NewManager(config *configuration.Config, log *tracing.Logger) (*Manager, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			log.E("Failed to load locale file", "file", entry.Name(), tracing.InnerError, err)
			return nil, err
		}
	}

	manager := &Manager{
		bundle:      bundle,
		localizers:  make(map[string]*i18n.Localizer),
		supported:   make(map[string]bool),
		defaultLang: config.Localization.DefaultLanguage,
		log:         log,
	}

	for _, lang := range config.Localization.SupportedLanguages {
		manager.supported[lang] = true
		manager.localizers[lang] = i18n.NewLocalizer(bundle, lang, config.Localization.DefaultLanguage)
	}

	log.I("Localization initialized",
		"languages", config.Localization.SupportedLanguages,
		"default", config.Localization.DefaultLanguage,
	)

	return manager, nil
}

// Normalize maps any language tag to a supported one.
func (m *Manager) Normalize(lang string) string {
	if m.supported[lang] {
		return lang
	}
	return m.defaultLang
}

func (m *Manager) Default() string {
	return m.defaultLang
}

func (m *Manager) Supported() []string {
	langs := make([]string, 0, len(m.supported))
	for lang := range m.supported {
		langs = append(langs, lang)
	}
	return langs
}

func (m *Manager) T(lang, id string) string {
	return m.Td(lang, id, nil)
}

func (m *Manager) Td(lang, id string, data map[string]any) string {
	localizer, ok := m.localizers[m.Normalize(lang)]
	if !ok {
		localizer = i18n.NewLocalizer(m.bundle, m.defaultLang)
	}

	translated, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		m.log.W("Missing translation", "message_id", id, tracing.Language, lang)
		return id
	}
	return translated
}
