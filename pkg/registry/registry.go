package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/portcfg/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[K ~string, T any] interface {
	// Register adds an item to the registry
	Register(name K, item T) error

	// Get retrieves an item from the registry
	Get(name K) (T, error)

	// List returns all registered names
	List() []K

	// Has checks if an item is registered
	Has(name K) bool

	// Count returns the number of registered items
	Count() int
}

type registry[K ~string, T any] struct {
	mu    sync.RWMutex
	items map[K]T
}

// New creates a new Registry instance
func New[K ~string, T any]() Registry[K, T] {
	return &registry[K, T]{
		items: make(map[K]T),
	}
}

func (r *registry[K, T]) Register(name K, item T) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	r.items[name] = item
	return nil
}

func (r *registry[K, T]) Get(name K) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}

	return item, nil
}

// List returns all registered names in sorted order
func (r *registry[K, T]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]K, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (r *registry[K, T]) Has(name K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[K, T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registration happens in init(), where a failure is a programming error.
func MustRegister[K ~string, T any](reg Registry[K, T], name K, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
