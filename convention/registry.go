package convention

import (
	"fmt"
	"sort"
	"sync"
)

// Resource describes an admin resource whose routes are gated by
// permission codes.
type Resource struct {
	Name string
	// Overrides replaces individual derived codes. Explicit codes always win.
	Overrides Mapping
	// OptOut disables derivation entirely. Only Custom codes apply.
	OptOut bool
	Custom Mapping
}

// Permissions returns the effective mapping of the resource.
func (r Resource) Permissions() Mapping {
	out := Mapping{}
	if r.OptOut {
		for a, code := range r.Custom {
			out[a] = code
		}
		return out
	}
	for a, code := range Derive(r.Name) {
		out[a] = code
	}
	for a, code := range r.Overrides {
		if code != "" {
			out[a] = code
		}
	}
	return out
}

// CodeFor returns the code protecting action, if any.
func (r Resource) CodeFor(action Action) (string, bool) {
	code, ok := r.Permissions()[action]
	return code, ok && code != ""
}

// Registry holds the resources known to the HTTP layer.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

// Register adds a resource. Registering the same name twice is an error.
func (r *Registry) Register(res Resource) error {
	if res.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[res.Name]; exists {
		return fmt.Errorf("resource %q already registered", res.Name)
	}
	r.resources[res.Name] = res
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(res Resource) {
	if err := r.Register(res); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	return res, ok
}

// CodeFor resolves the code protecting action on the named resource.
func (r *Registry) CodeFor(resource string, action Action) (string, bool) {
	res, ok := r.Lookup(resource)
	if !ok {
		return "", false
	}
	return res.CodeFor(action)
}

// DerivedCodes returns every distinct code checked by registered resources,
// sorted.
func (r *Registry) DerivedCodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, res := range r.resources {
		for _, code := range res.Permissions() {
			if code != "" {
				seen[code] = struct{}{}
			}
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
