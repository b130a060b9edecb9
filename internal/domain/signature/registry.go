package signature

import (
	"fmt"
	"sync"

	goversion "github.com/hashicorp/go-version"
)

// Registry holds all known signatures. Registration happens at load time;
// reads afterwards are concurrent-safe. A reload builds a fresh Registry and
// swaps it in whole rather than mutating a live one.
type Registry struct {
	mu    sync.RWMutex
	sigs  map[string]*Signature
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sigs: make(map[string]*Signature)}
}

// Register adds a signature. A duplicate name is rejected with a ConfigError
// and does not replace the existing registration.
func (r *Registry) Register(sig *Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := sig.Meta.Name
	if _, exists := r.sigs[name]; exists {
		return &ConfigError{Name: name, Reason: "already registered"}
	}
	r.sigs[name] = sig
	r.order = append(r.order, name)
	return nil
}

// All returns every registered signature in registration order.
func (r *Registry) All() []*Signature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Signature, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.sigs[name])
	}
	return all
}

// Len returns the number of registered signatures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sigs)
}

// Applicable returns the signatures that are enabled and whose version
// window contains currentVersion, in registration order.
func (r *Registry) Applicable(currentVersion string) ([]*Signature, error) {
	current, err := goversion.NewVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid engine version %q: %w", currentVersion, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var applicable []*Signature
	for _, name := range r.order {
		sig := r.sigs[name]
		if !sig.Meta.Enabled {
			continue
		}
		if !sig.AppliesTo(current) {
			continue
		}
		applicable = append(applicable, sig)
	}
	return applicable, nil
}
