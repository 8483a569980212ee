// Package serve runs the assembled application handler as an HTTP server
// with health endpoints and graceful shutdown.
//
// Overview:
//   - Responsibility: Server lifecycle around a ready http.Handler
//   - Key Types: Options, Checker for readiness probes
//   - Concurrency Model: Run blocks until the context is cancelled or the
//     server fails; shutdown is graceful with a timeout
//   - Error Semantics: Listener and shutdown failures are returned; health
//     probe failures surface as 503 responses, not errors
//   - Performance Notes: Health probes run on a separate server so slow
//     application handlers cannot starve them
//
// Usage:
//
//	err := serve.Run(ctx, handler, serve.Options{
//	    Logger:     logger,
//	    Addr:       ":8080",
//	    HealthAddr: ":8081",
//	    Checkers:   []serve.Checker{registryChecker},
//	})
package serve

import (
	"context"
	"net/http"
	"time"

	"github.com/shaverlee/gearbox/core/errors"
	"github.com/shaverlee/gearbox/core/log"
)

// Checker is a readiness probe consulted by the health endpoints.
type Checker interface {
	// Name identifies the probe in failure responses.
	Name() string

	// Check returns an error when the probed dependency is unhealthy.
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.CheckName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// Options configures the server runtime.
type Options struct {
	Logger          log.Logger    // Required
	Addr            string        // Application address, default ":8080"
	HealthAddr      string        // Health server address; empty disables it
	ShutdownTimeout time.Duration // Graceful shutdown budget, default 15s
	Checkers        []Checker     // Readiness probes for /ready and /health
}

// Run serves handler until ctx is cancelled or the server fails, then shuts
// down gracefully.
func Run(ctx context.Context, handler http.Handler, opts Options) error {
	if opts.Logger == nil {
		return errors.New(errors.CodeInvalidArgument, "logger is required")
	}
	if handler == nil {
		return errors.New(errors.CodeInvalidArgument, "handler is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	app := &http.Server{Addr: opts.Addr, Handler: handler}
	servers := []*http.Server{app}

	if opts.HealthAddr != "" {
		servers = append(servers, &http.Server{
			Addr:    opts.HealthAddr,
			Handler: HealthHandler(opts.Checkers),
		})
	}

	failed := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		go func() {
			opts.Logger.Info("server listening", log.Str("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				failed <- errors.Wrap(errors.CodeUnavailable, "serve.listen", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-failed:
		opts.Logger.Error(runErr, "server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = errors.Wrap(errors.CodeInternal, "serve.shutdown", err)
		}
	}

	opts.Logger.Info("server stopped")
	return runErr
}

// HealthHandler serves /live, /ready and /health. Liveness always succeeds;
// readiness and health run every checker and answer 503 on the first failure.
func HealthHandler(checkers []Checker) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	probe := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, checker := range checkers {
			if err := checker.Check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(checker.Name() + ": " + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
	mux.HandleFunc("/ready", probe)
	mux.HandleFunc("/health", probe)
	return mux
}
