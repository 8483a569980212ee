package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
	"github.com/shaverlee/gearbox/hooks"
	"github.com/shaverlee/gearbox/testx"
)

func TestBlueprintValueAndView(t *testing.T) {
	c := NewConfigurator(nil, hooks.NewDispatcher(nil))
	c.UpdateBlueprint(map[string]any{
		"sa_auth.cookie_secret": "s",
		"sa_auth.cookie_name":   "tkt",
	})

	if _, err := c.BlueprintValue("sa_auth"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("bare group key: got %v, want NotFound", err)
	}

	view, err := c.BlueprintView("sa_auth")
	if err != nil {
		t.Fatalf("BlueprintView: %v", err)
	}
	if view.Len() != 2 {
		t.Fatalf("view len = %d, want 2", view.Len())
	}
}

func TestLoadEnvironmentLayering(t *testing.T) {
	t.Cleanup(func() { config.Default.PopProcess() })

	c := NewConfigurator(nil, hooks.NewDispatcher(nil))
	c.UpdateBlueprint(map[string]any{"debug": true, "package": "blog"})

	conf, err := c.LoadEnvironment(context.Background(),
		map[string]any{"package": "global-wins-over-blueprint"},
		map[string]any{"debug": false})
	if err != nil {
		t.Fatalf("LoadEnvironment: %v", err)
	}

	if got := conf.BoolOr("debug", true); got != false {
		t.Fatal("per-app layer must override the blueprint")
	}
	if got := conf.StringOr("package", ""); got != "global-wins-over-blueprint" {
		t.Fatalf("package = %q", got)
	}
	if got := conf.BoolOr("tg.strict_tmpl_context", false); got != true {
		t.Fatal("defaults must survive layering")
	}
}

func TestSlowRequestLoggerWarns(t *testing.T) {
	logger := testx.NewMockLogger(t)

	slow := slowRequestLogger(logger, time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	slow.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	logger.AssertLogged(t, "WARN", "slow request")

	logger = testx.NewMockLogger(t)
	fast := slowRequestLogger(logger, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	fast.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fast", nil))
	logger.AssertNotLogged(t, "WARN", "slow request")
}

func TestI18NNegotiatorFallback(t *testing.T) {
	conf := config.NewStore(map[string]any{"i18n.lang": "de"})
	n := newI18NNegotiator(conf)

	var got string
	handler := n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tag, ok := LanguageFrom(r.Context()); ok {
			got = tag.String()
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got != "de" {
		t.Fatalf("negotiated language = %q, want de", got)
	}
	if rec.Header().Get("Content-Language") != "de" {
		t.Fatalf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}

func TestI18NNegotiatorInvalidLangFallsBackToEnglish(t *testing.T) {
	conf := config.NewStore(map[string]any{"i18n.lang": "not-a-tag!"})
	n := newI18NNegotiator(conf)

	rec := httptest.NewRecorder()
	n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("Content-Language") != "en" {
		t.Fatalf("Content-Language = %q, want en", rec.Header().Get("Content-Language"))
	}
}

func TestRegisterApplicationWrapperAnchors(t *testing.T) {
	c := NewConfigurator(nil, hooks.NewDispatcher(nil))
	noop := func(next http.Handler) http.Handler { return next }

	if err := c.RegisterApplicationWrapper(noop, "a", ""); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := c.RegisterApplicationWrapper(noop, "b", "a"); err != nil {
		t.Fatalf("register b after a: %v", err)
	}
	if err := c.RegisterApplicationWrapper(noop, "c", "zzz"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("unknown anchor: got %v, want NotFound", err)
	}
	if err := c.RegisterApplicationWrapper(nil, "", ""); !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("nil wrapper: got %v, want InvalidArgument", err)
	}
}
