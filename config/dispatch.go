package config

import (
	"context"
	"sync"

	"github.com/shaverlee/gearbox/core/errors"
)

// Dispatcher resolves "the store for the current execution context". It keeps
// a process-level stack of stores pushed during application setup; a store
// bound to a context.Context shadows the whole stack, so multiple
// independently configured applications can share one process without
// observing each other's values.
type Dispatcher struct {
	mu    sync.RWMutex
	stack []*Store
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// PushProcess pushes a store onto the process-level stack. The most recently
// pushed store is the process-wide current configuration.
func (d *Dispatcher) PushProcess(s *Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stack = append(d.stack, s)
}

// PopProcess removes and returns the top of the process-level stack.
func (d *Dispatcher) PopProcess() (*Store, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.stack) == 0 {
		return nil, false
	}
	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return top, true
}

// Current returns the store active for ctx: a context-bound store when
// present, otherwise the top of the process stack. With neither, the
// configuration layer has not been initialized and an error is returned.
func (d *Dispatcher) Current(ctx context.Context) (*Store, error) {
	if ctx != nil {
		if store, ok := FromContext(ctx); ok {
			return store, nil
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.stack) == 0 {
		return nil, errors.New(errors.CodeFailedSetup, "no configuration pushed for this process")
	}
	return d.stack[len(d.stack)-1], nil
}

type ctxKey struct{}

// Bind returns a context carrying the given store as its current
// configuration. Handlers derived from the returned context resolve to this
// store regardless of the process stack.
func Bind(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store bound to ctx, if any.
func FromContext(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(ctxKey{}).(*Store)
	return store, ok
}

// Default is the process-wide dispatcher, seeded with Defaults() at load time.
var Default = NewDispatcher()

func init() {
	// Give import-time configuration access something to look at and modify.
	// The application's resolved store is pushed on top during environment
	// setup.
	Default.PushProcess(NewStore(Defaults()))
}

// Current resolves the current store through the Default dispatcher.
func Current(ctx context.Context) (*Store, error) {
	return Default.Current(ctx)
}
