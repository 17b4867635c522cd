package typecache

import (
	"go.uber.org/zap"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
)

// Descriptor is the resolved storage metadata and conversion routine for one
// (type, direction) pair. Descriptors are immutable once built.
type Descriptor struct {
	Input      variant.InputFunc  // set for DirInput only
	Output     variant.OutputFunc // set for DirOutput only
	TypeName   string
	TextPrefix string // "(" + TypeName + ","; DirOutput only
	Length     int
	Align      uint32
	Type       variant.TypeID
	Class      variant.StorageClass
	Direction  variant.Direction
	ByValue    bool
}

// Observer receives cache events. Implementations must be cheap.
type Observer interface {
	CacheHit(id variant.TypeID, dir variant.Direction)
	CacheMiss(id variant.TypeID, dir variant.Direction)
	CacheConflict(id variant.TypeID, dir variant.Direction)
}

// Option configures a Cache.
type Option func(*Cache)

// WithStrict makes a direction conflict an error instead of a forced reset.
func WithStrict(strict bool) Option {
	return func(c *Cache) {
		c.strict = strict
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// Cache memoizes a single Descriptor. A lookup for a different type replaces
// the slot. Cache is NOT safe for concurrent use.
type Cache struct {
	reg      variant.Registry
	observer Observer
	slot     *Descriptor
	strict   bool
}

// New creates an empty cache over reg.
func New(reg variant.Registry, opts ...Option) *Cache {
	c := &Cache{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the descriptor for (id, dir), consulting the registry on a
// miss. A slot holding id under the other direction is never reused.
func (c *Cache) Resolve(id variant.TypeID, dir variant.Direction) (*Descriptor, error) {
	if s := c.slot; s != nil && s.Type == id {
		if s.Direction == dir {
			if c.observer != nil {
				c.observer.CacheHit(id, dir)
			}
			return s, nil
		}

		if c.observer != nil {
			c.observer.CacheConflict(id, dir)
		}
		if c.strict {
			return nil, errors.DirectionConflict(uint32(id), s.Direction.String(), dir.String())
		}
		Logger().Warn("type cache direction conflict, resetting slot",
			zap.Uint32("type", uint32(id)),
			zap.Stringer("cached", s.Direction),
			zap.Stringer("requested", dir))
		c.slot = nil
	}

	if c.observer != nil {
		c.observer.CacheMiss(id, dir)
	}

	info, err := c.reg.LookupType(id)
	if err != nil {
		return nil, errors.New(errors.PhaseLookup, errors.KindUnknownType).
			Value(uint32(id)).
			Detail("no type with identifier %d", id).
			Cause(err).
			Build()
	}
	if info == nil {
		return nil, errors.UnknownType(errors.PhaseLookup, uint32(id))
	}

	d := &Descriptor{
		Type:      id,
		Direction: dir,
		TypeName:  info.Name,
		Class:     info.Class(),
		Length:    info.Length,
		ByValue:   info.ByValue,
		Align:     info.Align,
	}
	if d.Align == 0 {
		d.Align = 1
	}

	switch dir {
	case variant.DirInput:
		d.Input = info.Input
	case variant.DirOutput:
		d.Output = info.Output
		d.TextPrefix = "(" + info.Name + ","
	}

	Logger().Debug("type cache fill",
		zap.Uint32("type", uint32(id)),
		zap.String("name", info.Name),
		zap.Stringer("direction", dir),
		zap.Stringer("class", d.Class))

	c.slot = d
	return d, nil
}

// Cached returns the current slot, or nil.
func (c *Cache) Cached() *Descriptor {
	return c.slot
}

// Reset empties the slot.
func (c *Cache) Reset() {
	c.slot = nil
}
