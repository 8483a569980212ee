// Package internal holds the configurator behind the builder facade: the
// blueprint, the component registries and the application assembly steps.
package internal

import (
	"context"
	"net/http"

	"dario.cat/mergo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shaverlee/gearbox/auth"
	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
	"github.com/shaverlee/gearbox/core/log"
	"github.com/shaverlee/gearbox/hooks"
	"github.com/shaverlee/gearbox/obs"
	"github.com/shaverlee/gearbox/render"
	"github.com/shaverlee/gearbox/store"
)

// Middleware wraps an application handler.
type Middleware func(http.Handler) http.Handler

// wrapperEntry is a registered application wrapper with its ordering anchors.
type wrapperEntry struct {
	name string
	mw   Middleware
}

// route is a controller registration.
type route struct {
	pattern string
	handler http.Handler
}

// Configurator accumulates the blueprint and the component registries, and
// turns them into a running application.
type Configurator struct {
	blueprint *config.Store
	logger    log.Logger
	hooks     *hooks.Dispatcher

	routes             []route
	controllerWrappers []Middleware
	appWrappers        []wrapperEntry

	renderers *render.Registry
	stores    *store.Registry
	metrics   *obs.Provider
	i18n      *i18nNegotiator
}

// NewConfigurator creates a configurator with an empty blueprint.
func NewConfigurator(logger log.Logger, dispatcher *hooks.Dispatcher) *Configurator {
	if logger == nil {
		logger = log.Discard()
	}
	return &Configurator{
		blueprint: config.NewStore(nil),
		logger:    logger,
		hooks:     dispatcher,
		renderers: render.NewRegistry(),
		stores:    store.NewRegistry(),
	}
}

// Logger returns the configurator's logger.
func (c *Configurator) Logger() log.Logger { return c.logger }

// Hooks returns the lifecycle dispatcher.
func (c *Configurator) Hooks() *hooks.Dispatcher { return c.hooks }

// Renderers returns the template engine registry.
func (c *Configurator) Renderers() *render.Registry { return c.renderers }

// Stores returns the storage registry.
func (c *Configurator) Stores() *store.Registry { return c.stores }

// SetBlueprintValue merges a single key into the blueprint.
func (c *Configurator) SetBlueprintValue(key string, value any) error {
	if key == "" {
		return errors.New(errors.CodeInvalidArgument, "blueprint key cannot be empty")
	}
	c.blueprint.Set(key, value)
	return nil
}

// UpdateBlueprint merges a mapping into the blueprint, overwriting existing
// keys.
func (c *Configurator) UpdateBlueprint(values map[string]any) {
	c.blueprint.Update(values)
}

// BlueprintValue returns the blueprint value for an exact key.
func (c *Configurator) BlueprintValue(key string) (any, error) {
	return c.blueprint.Get(key)
}

// BlueprintView materializes the prefix group for key from the blueprint.
func (c *Configurator) BlueprintView(key string) (config.View, error) {
	return c.blueprint.View(key)
}

// RegisterController adds a handler for a routing pattern.
func (c *Configurator) RegisterController(pattern string, handler http.Handler) error {
	if pattern == "" || handler == nil {
		return errors.New(errors.CodeInvalidArgument, "controller requires a pattern and a handler")
	}
	c.routes = append(c.routes, route{pattern: pattern, handler: handler})
	return nil
}

// RegisterControllerWrapper adds a wrapper applied around every controller.
func (c *Configurator) RegisterControllerWrapper(mw Middleware) error {
	if mw == nil {
		return errors.New(errors.CodeInvalidArgument, "controller wrapper cannot be nil")
	}
	c.controllerWrappers = append(c.controllerWrappers, mw)
	return nil
}

// RegisterApplicationWrapper adds a middleware to the application stack.
// When after names an existing wrapper, the new wrapper is inserted right
// after it; an unknown anchor is a coded NotFound error. An empty after
// appends.
func (c *Configurator) RegisterApplicationWrapper(mw Middleware, name, after string) error {
	if mw == nil {
		return errors.New(errors.CodeInvalidArgument, "application wrapper cannot be nil")
	}

	entry := wrapperEntry{name: name, mw: mw}
	if after == "" {
		c.appWrappers = append(c.appWrappers, entry)
		return nil
	}

	for i, existing := range c.appWrappers {
		if existing.name == after {
			c.appWrappers = append(c.appWrappers[:i+1],
				append([]wrapperEntry{entry}, c.appWrappers[i+1:]...)...)
			return nil
		}
	}
	return errors.Newf(errors.CodeNotFound, "no application wrapper named %q to anchor after", after)
}

// LoadEnvironment resolves the layered configuration (defaults, blueprint,
// global, per-app), pushes it as the process configuration, runs component
// setup and fires initialized_config followed by the trapped startup fan-out.
func (c *Configurator) LoadEnvironment(ctx context.Context, global, appConf map[string]any) (*config.Store, error) {
	merged := config.Defaults()
	for _, layer := range []map[string]any{c.blueprint.Snapshot(), global, appConf} {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, errors.Wrap(errors.CodeFailedSetup, "configurator.merge", err)
		}
	}

	conf := config.NewStore(merged)
	config.Default.PushProcess(conf)

	if err := c.setupStorage(ctx, conf); err != nil {
		return nil, err
	}
	if err := c.renderers.Setup(conf); err != nil {
		return nil, err
	}
	if err := c.setupMetrics(ctx, conf); err != nil {
		return nil, err
	}
	c.i18n = newI18NNegotiator(conf)

	if err := c.hooks.NotifyConfig(hooks.EventInitializedConfig, conf); err != nil {
		return nil, errors.Wrap(errors.CodeFailedSetup, "configurator.initialized_config", err)
	}
	c.hooks.NotifyStartup(hooks.EventStartup)

	return conf, nil
}

// setupStorage opens the storage backends named by the configuration and
// exposes their handles back through it.
func (c *Configurator) setupStorage(ctx context.Context, conf *config.Store) error {
	if _, ok := conf.Lookup("sqlalchemy.url"); ok {
		opts, err := store.SQLOptionsFromConfig(conf)
		if err != nil {
			return err
		}
		sqlStore, err := store.OpenSQL(opts, c.logger)
		if err != nil {
			return err
		}
		if err := c.stores.Register("sqlalchemy", sqlStore); err != nil {
			return err
		}
		conf.Set("sqlalchemy.engine", sqlStore)
		c.logger.Info("relational storage ready", log.Str("driver", opts.Driver))
	}

	if _, ok := conf.Lookup("ming.url"); ok {
		opts, err := store.MongoOptionsFromConfig(conf)
		if err != nil {
			return err
		}
		mongoStore, err := store.OpenMongo(ctx, opts, c.logger)
		if err != nil {
			return err
		}
		if err := c.stores.Register("ming", mongoStore); err != nil {
			return err
		}
		conf.Set("ming.datastore", mongoStore)
		c.logger.Info("document storage ready", log.Str("database", opts.Database))
	}

	return nil
}

func (c *Configurator) setupMetrics(ctx context.Context, conf *config.Store) error {
	if !conf.BoolOr("metrics.enabled", false) {
		return nil
	}

	provider, err := obs.NewProvider(ctx, obs.Options{
		AppName:    conf.StringOr("package", "gearbox-app"),
		AppVersion: conf.StringOr("app.version", ""),
	})
	if err != nil {
		return err
	}
	c.metrics = provider
	return nil
}

// MakeApp builds the application handler: routes controllers, fires
// before_wsgi_middlewares, assembles the middleware stack and fires
// after_wsgi_middlewares. Listener failures at either event are fatal.
func (c *Configurator) MakeApp(conf *config.Store, wrap Middleware) (http.Handler, error) {
	router := chi.NewRouter()
	for _, rt := range c.routes {
		handler := rt.handler
		for i := len(c.controllerWrappers) - 1; i >= 0; i-- {
			handler = c.controllerWrappers[i](handler)
		}
		router.Handle(rt.pattern, handler)
	}
	if c.metrics != nil {
		router.Handle("/metrics", c.metrics.PrometheusHandler())
	}

	var app http.Handler = router
	if wrap != nil {
		app = wrap(app)
	}

	app, err := c.hooks.NotifyApp(hooks.EventBeforeWSGIMiddlewares, app)
	if err != nil {
		return nil, errors.Wrap(errors.CodeFailedSetup, "configurator.before_wsgi_middlewares", err)
	}

	app, err = c.assembleMiddlewares(conf, app)
	if err != nil {
		return nil, err
	}

	app, err = c.hooks.NotifyApp(hooks.EventAfterWSGIMiddlewares, app)
	if err != nil {
		return nil, errors.Wrap(errors.CodeFailedSetup, "configurator.after_wsgi_middlewares", err)
	}
	return app, nil
}

// assembleMiddlewares layers registered wrappers and the framework stack
// around the application, innermost first.
func (c *Configurator) assembleMiddlewares(conf *config.Store, app http.Handler) (http.Handler, error) {
	for i := len(c.appWrappers) - 1; i >= 0; i-- {
		app = c.appWrappers[i].mw(app)
	}

	if view, err := conf.View("sa_auth"); err == nil {
		authn, err := auth.FromView(view)
		if err != nil {
			return nil, err
		}
		app = authn.Middleware(app)
	}

	if c.i18n != nil {
		app = c.i18n.Middleware(app)
	}
	if c.metrics != nil {
		app = obs.Middleware(c.metrics)(app)
	}
	app = slowRequestLogger(c.logger, conf.DurationOr("slow_request_threshold", 0))(app)

	app = chimw.Recoverer(app)
	app = chimw.RealIP(app)
	app = chimw.RequestID(app)
	return app, nil
}

// Close releases the resources opened during LoadEnvironment.
func (c *Configurator) Close(ctx context.Context) error {
	var first error
	if c.metrics != nil {
		if err := c.metrics.Shutdown(ctx); err != nil {
			first = err
		}
	}
	if err := c.stores.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
