// Package registry maps device class names to factories.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/device"
)

// ErrUnknownClass is returned by Build for unregistered classes.
var ErrUnknownClass = errors.New("unknown device class")

// Env is what a factory gets besides the device params.
type Env struct {
	// Name is the configured device name.
	Name string

	// DataDir is the runtime data directory; may be empty.
	DataDir string

	// Bus is the board bus, or nil if none is configured.
	Bus bus.Bus

	// Logger is scoped to the device.
	Logger *slog.Logger
}

// Factory builds a device from its params.
type Factory func(env Env, params map[string]any) (device.Device, error)

// Registry manages device factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	help      map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		help:      make(map[string]string),
	}
}

// Register adds a factory for class, replacing any previous one.
func (r *Registry) Register(class, help string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[class] = f
	r.help[class] = help
}

// Has reports whether class is registered.
func (r *Registry) Has(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[class]
	return ok
}

// Help returns the one-line description of class.
func (r *Registry) Help(class string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.help[class]
}

// Classes returns all registered class names, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.factories))
	for c := range r.factories {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// Build creates a device of class.
func (r *Registry) Build(class string, env Env, params map[string]any) (device.Device, error) {
	r.mu.RLock()
	f, ok := r.factories[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownClass, class)
	}
	if env.Logger == nil {
		env.Logger = slog.New(slog.DiscardHandler)
	}

	dev, err := f(env, params)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", env.Name, class, err)
	}
	return dev, nil
}
