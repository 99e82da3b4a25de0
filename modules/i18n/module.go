// Package i18n provides the internationalization feature. When enabled it
// negotiates the request language from the Accept-Language header against
// the configured language set and exposes the matched tag through the
// request context.
package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/internal/ctxlog"
)

// FeatureKind is the precedence key other features can attach after.
const FeatureKind = "i18n"

// Feature implements the configurator.Feature interface for this package.
type Feature struct {
	configurator.Base

	enabled bool
	matcher language.Matcher
	tags    []language.Tag
}

// New creates the i18n feature.
func New() *Feature {
	return &Feature{}
}

// Kind implements configurator.Feature.
func (f *Feature) Kind() string { return FeatureKind }

// Namespace implements configurator.Feature.
func (f *Feature) Namespace() string { return "i18n." }

// Defaults implements configurator.Feature.
func (f *Feature) Defaults() map[string]any {
	return map[string]any{
		"enabled":   false,
		"lang":      "",
		"languages": []string{},
	}
}

// Converters implements configurator.Feature.
func (f *Feature) Converters() map[string]config.Converter {
	return map[string]config.Converter{
		"enabled":   config.AsBool,
		"languages": config.AsList,
	}
}

// Setup builds the language matcher from the configured languages. The
// i18n.lang option names the primary language and is used when no language
// list is given; with neither set, English is the only supported tag.
func (f *Feature) Setup(ctx context.Context, settings config.Settings) error {
	f.enabled = settings.Bool("i18n.enabled", false)
	if !f.enabled {
		return nil
	}

	langs := settings.StringList("i18n.languages")
	if len(langs) == 0 {
		if lang := settings.String("i18n.lang", ""); lang != "" {
			langs = []string{lang}
		}
	}

	if len(langs) == 0 {
		f.tags = []language.Tag{language.English}
	} else {
		f.tags = make([]language.Tag, 0, len(langs))
		for _, lang := range langs {
			tag, err := language.Parse(lang)
			if err != nil {
				return configurator.Errorf("invalid language %q: %v", lang, err)
			}
			f.tags = append(f.tags, tag)
		}
	}

	f.matcher = language.NewMatcher(f.tags)
	ctxlog.FromContext(ctx).Debug("Language matcher initialized.", "languages", f.tags)
	return nil
}

// Middleware negotiates the request language. The first configured tag is
// the fallback when the client sends no usable Accept-Language header.
func (f *Feature) Middleware(_ config.Settings, next http.Handler) http.Handler {
	if !f.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepted, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		if err != nil {
			accepted = nil
		}
		tag, _, _ := f.matcher.Match(accepted...)
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), tag)))
	})
}

type ctxKey struct{}

// WithLanguage returns a context carrying the negotiated language tag.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// LanguageFromContext extracts the language negotiated by the i18n
// middleware. The boolean is false when the feature is disabled.
func LanguageFromContext(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(ctxKey{}).(language.Tag)
	return tag, ok
}
