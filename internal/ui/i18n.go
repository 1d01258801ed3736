package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-contacts/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator owns the message bundle and picks a language per request.
type Translator struct {
	bundle    *i18n.Bundle
	matcher   language.Matcher
	tags      []language.Tag
	fallback  string
	Languages []string
}

// NewTranslator loads every embedded active.<lang>.json file. fallback is used
// when a request carries no usable Accept-Language header.
func NewTranslator(fallback string) *Translator {
	if fallback == "" {
		fallback = config.DefaultLanguage
	}
	t := &Translator{fallback: fallback}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	t.bundle = bundle

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.Languages = append(t.Languages, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
		)
	}

	// The fallback goes first so the matcher prefers it on a tie.
	t.tags = append(t.tags, language.Make(fallback))
	for _, tag := range bundle.LanguageTags() {
		if tag != t.tags[0] {
			t.tags = append(t.tags, tag)
		}
	}
	t.matcher = language.NewMatcher(t.tags)
	return t
}

// Localizer returns a Localizer for an Accept-Language header value.
func (t *Translator) Localizer(acceptLanguage string) *Localizer {
	lang := t.fallback
	if acceptLanguage != "" {
		if prefs, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(prefs) > 0 {
			_, idx, conf := t.matcher.Match(prefs...)
			if conf != language.No {
				base, _ := t.tags[idx].Base()
				lang = base.String()
			}
		}
	}
	return &Localizer{
		Lang: lang,
		loc:  i18n.NewLocalizer(t.bundle, lang, t.fallback),
	}
}

// Localizer translates message IDs into one language.
type Localizer struct {
	Lang string
	loc  *i18n.Localizer
}

// T translates key. A missing key is returned as-is.
func (l *Localizer) T(key string) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: key})
}

// TData translates key with template data.
func (l *Localizer) TData(key string, data map[string]any) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// TCount translates a plural key, exposing n as .Count.
func (l *Localizer) TCount(key string, n int) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
}

func (l *Localizer) localize(cfg *i18n.LocalizeConfig) string {
	if l == nil || l.loc == nil {
		return cfg.MessageID
	}
	msg, err := l.loc.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return cfg.MessageID
	}
	return msg
}
