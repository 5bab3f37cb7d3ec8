// Package locale turns conversion outcomes into human-readable messages.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/engine"
	"github.com/tartampluch/go-timeline/internal/schema"
	"github.com/tartampluch/go-timeline/internal/timeline"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type catalog struct {
	bundle  *i18n.Bundle
	langs   []string
	matcher language.Matcher
}

var loadCatalog = sync.OnceValue(func() *catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	c := &catalog{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		c.matcher = language.NewMatcher([]language.Tag{language.English})
		return c
	}

	tags := []language.Tag{language.English}
	c.langs = []string{config.DefaultLanguage}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)

		if langCode != config.DefaultLanguage {
			tags = append(tags, tag)
			c.langs = append(c.langs, langCode)
		}
	}
	c.matcher = language.NewMatcher(tags)
	return c
})

// Languages lists the language codes with a loaded message file.
func Languages() []string {
	return append([]string(nil), loadCatalog().langs...)
}

// Match picks the best loaded language for an Accept-Language header or a
// plain language code. It returns config.DefaultLanguage when nothing matches.
func Match(preference string) string {
	c := loadCatalog()
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return config.DefaultLanguage
	}
	_, idx, confidence := c.matcher.Match(tags...)
	if confidence == language.No || idx >= len(c.langs) {
		return config.DefaultLanguage
	}
	return c.langs[idx]
}

// Translator localizes messages for one language.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a Translator for lang, falling back to English for missing keys.
func New(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(loadCatalog().bundle, lang, config.DefaultLanguage),
	}
}

// Language returns the requested language code.
func (t *Translator) Language() string {
	return t.lang
}

// Message translates key, or returns "" when the key is unknown.
func (t *Translator) Message(key string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// Plural translates a key with plural forms selected by count.
func (t *Translator) Plural(key string, count int, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = count
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data, PluralCount: count})
}

func (t *Translator) localize(cfg *i18n.LocalizeConfig) string {
	msg, err := t.localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyLang, t.lang,
			config.LogKeyError, err,
		)
		return ""
	}
	return msg
}

// TitleHeadline is the default headline of the title slide.
func (t *Translator) TitleHeadline() string {
	if msg := t.Message(config.TKeyTitleHeadline, nil); msg != "" {
		return msg
	}
	return config.DefaultTitleHeadline
}

// SyncSummary describes a successful synchronization.
func (t *Translator) SyncSummary(events, rejected int) string {
	if rejected > 0 {
		if msg := t.Plural(config.TKeySyncSummaryRejected, events, map[string]any{"Rejected": rejected}); msg != "" {
			return msg
		}
	} else if msg := t.Plural(config.TKeySyncSummary, events, nil); msg != "" {
		return msg
	}
	return fmt.Sprintf("%d/%d", events, events+rejected)
}

// ErrorCode classifies a conversion failure with a stable machine-readable code.
func ErrorCode(err error) string {
	code, _, _ := classify(err)
	return code
}

// ErrorMessage renders a conversion failure for an end user.
func (t *Translator) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	_, key, fallback := classify(err)

	var data map[string]any
	if strings.Contains(fallback, "%s") {
		detail := detailOf(err)
		data = map[string]any{"Detail": detail}
		fallback = fmt.Sprintf(fallback, detail)
	}
	if msg := t.Message(key, data); msg != "" {
		return msg
	}
	return fallback
}

func classify(err error) (code, key, fallback string) {
	var convErr *timeline.ConversionError
	var srcErr *engine.SourceError
	switch {
	case errors.Is(err, timeline.ErrNoData):
		return config.ErrCodeNoData, config.TKeyErrNoData, config.FallbackErrNoData
	case errors.Is(err, timeline.ErrNoCandidateRows):
		return config.ErrCodeNoCandidateRows, config.TKeyErrNoCandidates, config.FallbackErrNoCandidates
	case errors.Is(err, timeline.ErrNoSurvivingEvents):
		return config.ErrCodeNoSurvivingEvents, config.TKeyErrNoSurvivors, config.FallbackErrNoSurvivors
	case errors.Is(err, timeline.ErrNoValidEvents):
		return config.ErrCodeNoValidEvents, config.TKeyErrNoValidEvents, config.FallbackErrNoValidEvents
	case errors.As(err, &convErr):
		return config.ErrCodeConversion, config.TKeyErrConversion, config.FallbackErrConversion
	case errors.Is(err, schema.ErrInvalid):
		return config.ErrCodeSchema, config.TKeyErrSchema, config.FallbackErrSchema
	case errors.As(err, &srcErr):
		return config.ErrCodeSource, config.TKeyErrSource, config.FallbackErrSource
	default:
		return config.ErrCodeUnknown, config.TKeyErrUnknown, config.FallbackErrUnknown
	}
}

func detailOf(err error) string {
	var convErr *timeline.ConversionError
	if errors.As(err, &convErr) {
		return convErr.Detail
	}
	return err.Error()
}
