package registry

import (
	"sort"
	"strings"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/internal/layout"
)

// Registry is an in-memory type registry. It is safe for concurrent use.
type Registry struct {
	byID   map[variant.TypeID]*variant.TypeInfo
	byName map[string]variant.TypeID
	mu     sync.RWMutex
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byID:   make(map[variant.TypeID]*variant.TypeInfo),
		byName: make(map[string]variant.TypeID),
	}
}

// Register adds a copy of info. The name, the identifier and a valid storage
// class are required, as are both conversion routines. A zero alignment
// means 1. By-value types may not align beyond 8 bytes.
func (r *Registry) Register(info *variant.TypeInfo) error {
	if info == nil {
		return errors.Registration("", "nil type info")
	}
	t := *info
	t.Name = normalize(t.Name)
	if t.Name == "" {
		return errors.Registration("", "type name is empty")
	}
	if t.Class() == variant.ClassInvalid {
		return errors.Registration(t.Name, "invalid storage length/by-value combination")
	}
	if t.Align == 0 {
		t.Align = 1
	}
	if !layout.IsPowerOfTwo(t.Align) {
		return errors.Registration(t.Name, "alignment must be a power of two")
	}
	if t.ByValue && t.Align > variant.MaxByValueLength {
		return errors.Registration(t.Name, "by-value alignment must not exceed 8")
	}
	if t.Input == nil || t.Output == nil {
		return errors.Registration(t.Name, "input and output routines are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; exists {
		return errors.Registration(t.Name, "type identifier already registered")
	}
	if _, exists := r.byName[t.Name]; exists {
		return errors.Registration(t.Name, "type name already registered")
	}

	r.byID[t.ID] = &t
	r.byName[t.Name] = t.ID
	return nil
}

// RegisterWIT registers a type whose storage shape comes from a WIT type.
func (r *Registry) RegisterWIT(id variant.TypeID, name string, t wit.Type, in variant.InputFunc, out variant.OutputFunc) error {
	shape, ok := Layout(t)
	if !ok {
		return errors.Registration(name, "WIT type has no fixed host storage")
	}
	return r.Register(&variant.TypeInfo{
		ID:      id,
		Name:    name,
		Length:  shape.Length,
		Align:   shape.Align,
		ByValue: shape.ByValue,
		Input:   in,
		Output:  out,
	})
}

// Alias makes name resolve to an already registered identifier.
func (r *Registry) Alias(name string, id variant.TypeID) error {
	name = normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return errors.Registration(name, "alias target is not registered")
	}
	if _, exists := r.byName[name]; exists {
		return errors.Registration(name, "type name already registered")
	}
	r.byName[name] = id
	return nil
}

// LookupType implements variant.Registry.
func (r *Registry) LookupType(id variant.TypeID) (*variant.TypeInfo, error) {
	r.mu.RLock()
	info, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.UnknownType(errors.PhaseLookup, uint32(id))
	}
	return info, nil
}

// LookupName implements variant.NameResolver. Names are matched the way
// unquoted identifiers are: case-insensitively, surrounding space ignored.
func (r *Registry) LookupName(name string) (variant.TypeID, error) {
	r.mu.RLock()
	id, ok := r.byName[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return 0, errors.UnknownTypeName(errors.PhaseParse, name)
	}
	return id, nil
}

// Types returns every registered type ordered by identifier.
func (r *Registry) Types() []*variant.TypeInfo {
	r.mu.RLock()
	out := make([]*variant.TypeInfo, 0, len(r.byID))
	for _, info := range r.byID {
		out = append(out, info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
