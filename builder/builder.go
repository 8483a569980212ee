// Package builder assembles applications from an accumulated configuration
// blueprint.
//
// Overview:
//   - Responsibility: Accumulate blueprint keys, fire the lifecycle events and
//     produce the final http.Handler
//   - Key Types: Builder, LoadEnvironment, AppFactory
//   - Concurrency Model: A Builder is configured from a single goroutine
//     during startup; the produced handler is safe for concurrent use
//   - Error Semantics: Missing keys are coded NotFound; listener failures at
//     configuration time are fatal, startup listener failures are trapped
//   - Performance Notes: All assembly work happens once, before serving
//
// Usage:
//
//	b := builder.New(map[string]any{"package": "blog"}, builder.WithLogger(logger))
//	b.RegisterController("/posts", postsHandler)
//	handler, err := b.MakeHandler(ctx)
package builder

import (
	"context"
	"net/http"

	"github.com/shaverlee/gearbox/builder/internal"
	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/log"
	"github.com/shaverlee/gearbox/hooks"
	"github.com/shaverlee/gearbox/render"
	"github.com/shaverlee/gearbox/store"
)

// viewKeys are the blueprint keys that Get materializes as a grouped view
// rather than returning a raw value.
var viewKeys = map[string]struct{}{
	"sa_auth": {},
}

// LoadEnvironment resolves the layered configuration for one application and
// returns the resulting store.
type LoadEnvironment func(ctx context.Context, global, appConf map[string]any) (*config.Store, error)

// AppFactory produces the application handler from global and per-app
// configuration. A non-nil wrap is applied around the innermost handler
// before the middleware stack.
type AppFactory func(ctx context.Context, global, appConf map[string]any, wrap func(http.Handler) http.Handler) (http.Handler, error)

// Builder is the application configuration builder.
type Builder struct {
	configurator *internal.Configurator
	hooks        *hooks.Dispatcher
	logger       log.Logger
	configReady  hooks.ConfigListener
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger. The default discards output.
func WithLogger(logger log.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithConfigReady overrides the post-configuration callback fired first on
// initialized_config. The default is a no-op.
func WithConfigReady(l hooks.ConfigListener) Option {
	return func(b *Builder) { b.configReady = l }
}

// New creates a Builder, seeds the blueprint with the caller's keys and wires
// the lifecycle listeners.
func New(opts map[string]any, options ...Option) *Builder {
	b := &Builder{
		logger:      log.Discard(),
		configReady: func(*config.Store) error { return nil },
	}
	for _, opt := range options {
		opt(b)
	}

	b.hooks = hooks.NewDispatcher(b.logger)
	b.configurator = internal.NewConfigurator(b.logger, b.hooks)
	b.configurator.UpdateBlueprint(opts)

	// The config-ready override runs before any other initialized_config
	// listener; the user-level before/after_config events are layered on the
	// middleware events.
	b.hooks.RegisterConfig(hooks.EventInitializedConfig, func(conf *config.Store) error {
		return b.configReady(conf)
	})
	b.hooks.RegisterStartup(hooks.EventStartup, func() error {
		b.logger.Info("application configuration complete")
		return nil
	})
	b.hooks.RegisterApp(hooks.EventBeforeWSGIMiddlewares, func(app http.Handler) (http.Handler, error) {
		return b.hooks.NotifyApp(hooks.EventBeforeConfig, app)
	})
	b.hooks.RegisterApp(hooks.EventAfterWSGIMiddlewares, func(app http.Handler) (http.Handler, error) {
		return b.hooks.NotifyApp(hooks.EventAfterConfig, app)
	})

	return b
}

// Hooks returns the lifecycle dispatcher for listener registration.
func (b *Builder) Hooks() *hooks.Dispatcher { return b.hooks }

// Renderers returns the template engine registry.
func (b *Builder) Renderers() *render.Registry { return b.configurator.Renderers() }

// Stores returns the storage registry.
func (b *Builder) Stores() *store.Registry { return b.configurator.Stores() }

// Set merges a key into the blueprint.
func (b *Builder) Set(key string, value any) error {
	return b.configurator.SetBlueprintValue(key, value)
}

// Get returns a blueprint value. View keys (sa_auth) return the materialized
// prefix group instead of a raw value; absent keys are coded NotFound.
func (b *Builder) Get(key string) (any, error) {
	if _, ok := viewKeys[key]; ok {
		return b.configurator.BlueprintView(key)
	}
	return b.configurator.BlueprintValue(key)
}

// RegisterApplicationWrapper adds a middleware to the application stack.
func (b *Builder) RegisterApplicationWrapper(mw func(http.Handler) http.Handler, opts ...WrapperOption) error {
	var wo wrapperOptions
	for _, opt := range opts {
		opt(&wo)
	}
	return b.configurator.RegisterApplicationWrapper(mw, wo.name, wo.after)
}

// WrapperOption controls application wrapper ordering.
type WrapperOption func(*wrapperOptions)

type wrapperOptions struct {
	name  string
	after string
}

// Named gives the wrapper a name other wrappers can anchor after.
func Named(name string) WrapperOption {
	return func(o *wrapperOptions) { o.name = name }
}

// After inserts the wrapper right after the named one. An unknown anchor is
// a coded NotFound error at registration.
func After(name string) WrapperOption {
	return func(o *wrapperOptions) { o.after = name }
}

// RegisterEngine adds a template engine factory.
func (b *Builder) RegisterEngine(factory render.EngineFactory) error {
	return b.configurator.Renderers().Register(factory)
}

// RegisterControllerWrapper adds a wrapper applied around every controller.
func (b *Builder) RegisterControllerWrapper(mw func(http.Handler) http.Handler) error {
	return b.configurator.RegisterControllerWrapper(mw)
}

// RegisterController routes a pattern to a handler.
func (b *Builder) RegisterController(pattern string, handler http.Handler) error {
	return b.configurator.RegisterController(pattern, handler)
}

// MakeLoadEnvironment returns the environment loader for this builder's
// blueprint.
func (b *Builder) MakeLoadEnvironment() LoadEnvironment {
	return b.configurator.LoadEnvironment
}

// SetupAppFactory returns an application factory running loadEnv (the
// builder's own loader when nil) before handler construction.
func (b *Builder) SetupAppFactory(loadEnv LoadEnvironment) AppFactory {
	if loadEnv == nil {
		loadEnv = b.MakeLoadEnvironment()
	}
	return func(ctx context.Context, global, appConf map[string]any, wrap func(http.Handler) http.Handler) (http.Handler, error) {
		conf, err := loadEnv(ctx, global, appConf)
		if err != nil {
			return nil, err
		}
		return b.configurator.MakeApp(conf, wrap)
	}
}

// MakeHandler merges the overrides into the blueprint, loads the environment
// and builds the application handler.
func (b *Builder) MakeHandler(ctx context.Context, overrides ...map[string]any) (http.Handler, error) {
	for _, override := range overrides {
		b.configurator.UpdateBlueprint(override)
	}

	conf, err := b.configurator.LoadEnvironment(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return b.configurator.MakeApp(conf, nil)
}

// Close releases resources opened during environment loading: storage
// connections and the metrics provider.
func (b *Builder) Close(ctx context.Context) error {
	return b.configurator.Close(ctx)
}
