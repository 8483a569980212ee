package internal

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/log"
)

// slowRequestLogger warns about requests slower than the threshold. A zero
// threshold falls back to 500ms.
func slowRequestLogger(logger log.Logger, threshold time.Duration) Middleware {
	if threshold <= 0 {
		threshold = 500 * time.Millisecond
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			elapsed := time.Since(start)
			if elapsed > threshold {
				logger.Warn("slow request",
					log.Str("method", r.Method),
					log.Str("path", r.URL.Path),
					log.Str("request_id", chimw.GetReqID(r.Context())),
					log.Dur("elapsed", elapsed))
			}
		})
	}
}

type langKey struct{}

// WithLanguage returns a context carrying the negotiated language tag.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, langKey{}, tag)
}

// LanguageFrom returns the negotiated language for the request context.
func LanguageFrom(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(langKey{}).(language.Tag)
	return tag, ok
}

// i18nNegotiator matches the Accept-Language header against the configured
// language set, falling back to i18n.lang.
type i18nNegotiator struct {
	matcher  language.Matcher
	fallback language.Tag
}

// newI18NNegotiator builds the negotiator from i18n.lang and i18n.languages.
// The fallback language is always the first match candidate.
func newI18NNegotiator(conf *config.Store) *i18nNegotiator {
	fallback := language.English
	if raw := conf.StringOr("i18n.lang", ""); raw != "" {
		if tag, err := language.Parse(raw); err == nil {
			fallback = tag
		}
	}

	supported := []language.Tag{fallback}
	if value, ok := conf.Lookup("i18n.languages"); ok {
		for _, item := range asStringList(value) {
			tag, err := language.Parse(item)
			if err != nil || tag == fallback {
				continue
			}
			supported = append(supported, tag)
		}
	}

	return &i18nNegotiator{
		matcher:  language.NewMatcher(supported),
		fallback: fallback,
	}
}

// Middleware attaches the negotiated language to the request context and
// echoes it in Content-Language.
func (n *i18nNegotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := n.fallback
		if accept := r.Header.Get("Accept-Language"); accept != "" {
			if wanted, _, err := language.ParseAcceptLanguage(accept); err == nil {
				tag, _, _ = n.matcher.Match(wanted...)
			}
		}

		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), tag)))
	})
}

func asStringList(value any) []string {
	switch list := value.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
