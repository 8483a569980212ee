// Package store provides storage backends and the connection health registry.
//
// Overview:
//   - Responsibility: Open SQL (GORM) and document (MongoDB) connections from
//     configuration and track their health
//   - Key Types: Store interface, SQLStore, MongoStore, Registry
//   - Concurrency Model: Stores and the registry are safe for concurrent use
//   - Error Semantics: Construction and ping failures return coded errors
//   - Performance Notes: Connections are pooled by the underlying drivers
//
// Usage:
//
//	registry := store.NewRegistry()
//	sqlStore, err := store.OpenSQL(opts, logger)
//	registry.Register("sqlalchemy", sqlStore)
//	err = registry.Ping(ctx)
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shaverlee/gearbox/core/errors"
)

// Store is the minimal contract for a storage backend.
type Store interface {
	// Ping checks backend health. Returns an error when unavailable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// Registry tracks named storage backends and their health.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register adds a backend under a name. Duplicate names and nil stores are
// coded errors.
func (r *Registry) Register(name string, s Store) error {
	if name == "" {
		return errors.New(errors.CodeInvalidArgument, "store name is required")
	}
	if s == nil {
		return errors.New(errors.CodeInvalidArgument, "store cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[name]; ok {
		return errors.Newf(errors.CodeAlreadyExists, "store %q already registered", name)
	}
	r.stores[name] = s
	return nil
}

// Unregister removes a backend.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[name]; !ok {
		return errors.Newf(errors.CodeNotFound, "store %q not registered", name)
	}
	delete(r.stores, name)
	return nil
}

// Get returns a registered backend by name.
func (r *Registry) Get(name string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// List returns the registered backend names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names
}

// Ping health-checks every registered backend with a shared timeout.
func (r *Registry) Ping(ctx context.Context) error {
	r.mu.RLock()
	stores := make(map[string]Store, len(r.stores))
	for name, s := range r.stores {
		stores[name] = s
	}
	r.mu.RUnlock()

	if len(stores) == 0 {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var failures []error
	for name, s := range stores {
		if err := s.Ping(pingCtx); err != nil {
			failures = append(failures, fmt.Errorf("store %s: %w", name, err))
		}
	}
	if len(failures) > 0 {
		return errors.Wrapf(errors.CodeUnavailable, "store.ping", failures[0], "%d of %d stores unhealthy", len(failures), len(stores))
	}
	return nil
}

// Close closes every registered backend, reporting the first failure.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for name, s := range r.stores {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("store %s: %w", name, err)
		}
		delete(r.stores, name)
	}
	if first != nil {
		return errors.Wrap(errors.CodeInternal, "store.close", first)
	}
	return nil
}
