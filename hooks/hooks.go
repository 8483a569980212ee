// Package hooks provides the lifecycle event dispatcher used during
// application assembly.
//
// Overview:
//   - Responsibility: Ordered, named lifecycle events with typed listeners
//   - Key Types: Dispatcher, ConfigListener, StartupListener, AppListener
//   - Concurrency Model: Registration and notification are safe for concurrent
//     use; listeners run synchronously in registration order
//   - Error Semantics: Notify methods propagate the first listener error,
//     except NotifyStartup which traps and logs every failure
//   - Performance Notes: Listener lists are copied before invocation so
//     listeners may register further listeners
//
// Usage:
//
//	d := hooks.NewDispatcher(logger)
//	d.RegisterConfig(hooks.EventInitializedConfig, func(conf *config.Store) error {
//	    conf.Set("tg.strict_tmpl_context", false)
//	    return nil
//	})
package hooks

import (
	"net/http"
	"sync"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/log"
)

// Lifecycle event names. These are a fixed contract: external code registers
// against the literal strings.
const (
	EventInitializedConfig     = "initialized_config"
	EventStartup               = "startup"
	EventBeforeWSGIMiddlewares = "before_wsgi_middlewares"
	EventAfterWSGIMiddlewares  = "after_wsgi_middlewares"

	// User-level events layered on the middleware events by the builder.
	EventBeforeConfig = "before_config"
	EventAfterConfig  = "after_config"
)

// ConfigListener observes a resolved configuration store.
type ConfigListener func(conf *config.Store) error

// StartupListener runs once the application configuration is complete.
type StartupListener func() error

// AppListener may transform the application handler being assembled.
// Returning a nil handler keeps the handler unchanged.
type AppListener func(app http.Handler) (http.Handler, error)

// Dispatcher holds ordered listener lists per event name.
type Dispatcher struct {
	mu       sync.RWMutex
	logger   log.Logger
	config   map[string][]ConfigListener
	startup  map[string][]StartupListener
	handlers map[string][]AppListener
}

// NewDispatcher creates a dispatcher. A nil logger discards trapped errors.
func NewDispatcher(logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Dispatcher{
		logger:   logger,
		config:   make(map[string][]ConfigListener),
		startup:  make(map[string][]StartupListener),
		handlers: make(map[string][]AppListener),
	}
}

// RegisterConfig appends a configuration listener for the event.
func (d *Dispatcher) RegisterConfig(event string, l ConfigListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config[event] = append(d.config[event], l)
}

// RegisterStartup appends a startup listener for the event.
func (d *Dispatcher) RegisterStartup(event string, l StartupListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startup[event] = append(d.startup[event], l)
}

// RegisterApp appends an application listener for the event.
func (d *Dispatcher) RegisterApp(event string, l AppListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], l)
}

// NotifyConfig invokes the event's configuration listeners in registration
// order. The first error aborts notification and is returned: a listener
// failure at configuration time is fatal.
func (d *Dispatcher) NotifyConfig(event string, conf *config.Store) error {
	for _, l := range d.configListeners(event) {
		if err := l(conf); err != nil {
			return err
		}
	}
	return nil
}

// NotifyStartup invokes the event's startup listeners, trapping and logging
// failures. One broken startup listener must not abort boot, so errors are
// never returned to the caller.
func (d *Dispatcher) NotifyStartup(event string) {
	for _, l := range d.startupListeners(event) {
		if err := l(); err != nil {
			d.logger.Error(err, "startup listener failed", log.Str("event", event))
		}
	}
}

// NotifyApp folds the handler through the event's application listeners in
// registration order. A listener returning a non-nil handler replaces the
// value passed to the next listener; errors propagate immediately.
func (d *Dispatcher) NotifyApp(event string, app http.Handler) (http.Handler, error) {
	for _, l := range d.appListeners(event) {
		next, err := l(app)
		if err != nil {
			return nil, err
		}
		if next != nil {
			app = next
		}
	}
	return app, nil
}

func (d *Dispatcher) configListeners(event string) []ConfigListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]ConfigListener(nil), d.config[event]...)
}

func (d *Dispatcher) startupListeners(event string) []StartupListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]StartupListener(nil), d.startup[event]...)
}

func (d *Dispatcher) appListeners(event string) []AppListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]AppListener(nil), d.handlers[event]...)
}
