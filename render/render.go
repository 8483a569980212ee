// Package render provides the template engine registry.
//
// Overview:
//   - Responsibility: Register template engine factories and materialize the
//     engines named by the configuration
//   - Key Types: Engine, EngineFactory, Registry
//   - Concurrency Model: Registry is safe for concurrent use after Setup;
//     engines must be safe for concurrent rendering
//   - Error Semantics: Unknown engines and duplicate factories are coded errors
//   - Performance Notes: Engines are constructed once at setup, not per render
//
// Usage:
//
//	registry := render.NewRegistry()
//	registry.Register(render.HTMLFactory())
//	err := registry.Setup(conf)
//	engine, _ := registry.Engine("html")
package render

import (
	"io"
	"sync"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
)

// Engine renders named templates.
type Engine interface {
	// Name returns the engine's registration name (e.g. "html").
	Name() string

	// Render executes the named template with data into w.
	Render(w io.Writer, template string, data any) error
}

// EngineFactory constructs an engine from the resolved configuration.
type EngineFactory interface {
	// Name is the engine name used in the renderers configuration list.
	Name() string

	// New builds the engine for the given configuration.
	New(conf *config.Store) (Engine, error)
}

// Registry holds engine factories and the engines materialized from them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]EngineFactory
	engines   map[string]Engine
	fallback  string
}

// NewRegistry creates a registry with the built-in html factory registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]EngineFactory),
		engines:   make(map[string]Engine),
	}
	r.Register(HTMLFactory())
	return r
}

// Register adds an engine factory. Registering the same name twice is a coded
// AlreadyExists error.
func (r *Registry) Register(factory EngineFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[factory.Name()]; ok {
		return errors.Newf(errors.CodeAlreadyExists, "template engine %q already registered", factory.Name())
	}
	r.factories[factory.Name()] = factory
	return nil
}

// Setup materializes the engines named by the renderers configuration key
// (default: the html engine only) and records default_renderer as fallback.
func (r *Registry) Setup(conf *config.Store) error {
	names := rendererNames(conf)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			return errors.Newf(errors.CodeNotFound, "no factory for template engine %q", name)
		}
		engine, err := factory.New(conf)
		if err != nil {
			return errors.Wrapf(errors.CodeFailedSetup, "render.setup", err, "engine %q", name)
		}
		r.engines[name] = engine
	}

	r.fallback = conf.StringOr("default_renderer", names[0])
	return nil
}

// Engine returns a materialized engine by name.
func (r *Registry) Engine(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[name]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "template engine %q not configured", name)
	}
	return engine, nil
}

// Default returns the engine named by default_renderer.
func (r *Registry) Default() (Engine, error) {
	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()

	if fallback == "" {
		return nil, errors.New(errors.CodeFailedSetup, "render registry not set up")
	}
	return r.Engine(fallback)
}

// Names returns the names of all registered factories.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

func rendererNames(conf *config.Store) []string {
	value, ok := conf.Lookup("renderers")
	if !ok {
		return []string{"html"}
	}

	switch list := value.(type) {
	case []string:
		if len(list) > 0 {
			return list
		}
	case []any:
		names := make([]string, 0, len(list))
		for _, item := range list {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	return []string{"html"}
}
