package pdfmark

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wudi/pdfmark/watermark"
)

// UnknownMethodError reports a lookup for a name that was never
// registered. Known carries the sorted registry contents at the time
// of the failed lookup, for diagnostics.
type UnknownMethodError struct {
	Name  string
	Known []string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("pdfmark: unknown watermarking method %q (known: %s)",
		e.Name, strings.Join(e.Known, ", "))
}

// MethodRef names a watermarking method either by registered name or
// by handing over an instance directly. The zero value is invalid.
type MethodRef struct {
	name string
	inst watermark.Method
}

// ByName refers to a method registered under name.
func ByName(name string) MethodRef { return MethodRef{name: name} }

// Instance refers to an ad hoc method instance; it resolves to itself
// whether or not it was ever registered.
func Instance(m watermark.Method) MethodRef { return MethodRef{inst: m} }

// MethodInfo is one row of the registry listing.
type MethodInfo struct {
	Name  string `json:"name"`
	Usage string `json:"description"`
}

// Registry maps method names to shared method instances. Instances
// live for the process lifetime; entries are inserted or replaced,
// never removed. Reads may run concurrently; writes are serialized
// internally.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]watermark.Method
}

// NewRegistry builds a registry pre-seeded with the given methods,
// each keyed by its own Name.
func NewRegistry(builtins ...watermark.Method) *Registry {
	r := &Registry{methods: make(map[string]watermark.Method, len(builtins))}
	for _, m := range builtins {
		r.Register(m)
	}
	return r
}

// Register inserts m under m.Name(), replacing any previous entry.
func (r *Registry) Register(m watermark.Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[m.Name()] = m
}

// Resolve returns the method a ref designates. Instance refs pass
// through unchanged; name refs fail with *UnknownMethodError when the
// name is absent.
func (r *Registry) Resolve(ref MethodRef) (watermark.Method, error) {
	if ref.inst != nil {
		return ref.inst, nil
	}
	r.mu.RLock()
	m, ok := r.methods[ref.name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownMethodError{Name: ref.name, Known: r.Names()}
	}
	return m, nil
}

// Names returns the sorted registered method names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infos lists the registered methods with their usage strings, sorted
// by name.
func (r *Registry) Infos() []MethodInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]MethodInfo, 0, len(r.methods))
	for _, m := range r.methods {
		infos = append(infos, MethodInfo{Name: m.Name(), Usage: m.Usage()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
