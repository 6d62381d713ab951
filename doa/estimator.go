package doa

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Estimator locates a source from a spectrogram. Instances are not safe for
// concurrent use; create one per goroutine.
type Estimator interface {
	// Name returns the registered algorithm name.
	Name() string
	// Locate computes the raw response for X.
	Locate(ctx context.Context, X Spectrogram) (Response, error)
}

// Constructor creates an estimator for an array geometry.
type Constructor func(geom ArrayGeometry, p Params) (Estimator, error)

// Registry maps algorithm names to constructors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds ctor under name, replacing any previous entry.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New constructs the estimator registered as name.
func (r *Registry) New(name string, geom ArrayGeometry, p Params) (Estimator, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknown, name, r.Names())
	}
	return ctor(geom, p)
}

// Built-in algorithm names.
const (
	AlgoSRP        = "SRP"
	AlgoMUSIC      = "MUSIC"
	AlgoNormMUSIC  = "NormMUSIC"
	AlgoDirtyImage = "DirtyImage"
)

// DefaultRegistry holds the built-in estimators.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(AlgoSRP, NewSRP)
	r.Register(AlgoMUSIC, NewMUSIC)
	r.Register(AlgoNormMUSIC, NewNormMUSIC)
	r.Register(AlgoDirtyImage, NewDirtyImage)
	return r
}()

// New constructs a built-in estimator by name.
func New(name string, geom ArrayGeometry, p Params) (Estimator, error) {
	return DefaultRegistry.New(name, geom, p)
}

// Names lists the built-in estimator names.
func Names() []string { return DefaultRegistry.Names() }
