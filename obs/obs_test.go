package obs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaverlee/gearbox/core/errors"
)

func TestNewProviderRequiresAppName(t *testing.T) {
	_, err := NewProvider(context.Background(), Options{})
	if !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("empty app name: got %v, want InvalidArgument", err)
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{AppName: "blog", AppVersion: "1.0.0"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer provider.Shutdown(context.Background())

	handler := Middleware(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}

	scrape := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()

	if !strings.Contains(body, "http_server_requests") {
		t.Fatalf("scrape missing request counter:\n%s", body)
	}
	if !strings.Contains(body, `http_status="418"`) {
		t.Fatalf("scrape missing status attribute:\n%s", body)
	}
}

func TestShutdownIsIdempotentPerProvider(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{AppName: "blog"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
