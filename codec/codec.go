package codec

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/container"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/text"
	"github.com/wippyai/variant/typecache"
)

// Operation names reported to an Observer.
const (
	OpIn     = "in"
	OpOut    = "out"
	OpEncode = "encode"
	OpDecode = "decode"
)

// Observer receives cache events and the outcome of every codec operation.
type Observer interface {
	typecache.Observer
	Operation(op string, err error)
}

// Codec converts between text, values and containers. It keeps one
// descriptor cache for the input direction and one for the output
// direction, so alternating In and Out on the same type never conflicts.
//
// A Codec is NOT safe for concurrent use.
type Codec struct {
	reg      variant.Registry
	names    variant.NameResolver
	in       *typecache.Cache
	out      *typecache.Cache
	observer Observer
	log      *zap.Logger
	strict   bool
}

// New creates a codec over reg. If reg also implements
// variant.NameResolver, In can resolve type names.
func New(reg variant.Registry, opts ...Option) *Codec {
	c := &Codec{reg: reg}
	if nr, ok := reg.(variant.NameResolver); ok {
		c.names = nr
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = Logger()
	}

	cacheOpts := []typecache.Option{typecache.WithStrict(c.strict)}
	if c.observer != nil {
		cacheOpts = append(cacheOpts, typecache.WithObserver(c.observer))
	}
	c.in = typecache.New(reg, cacheOpts...)
	c.out = typecache.New(reg, cacheOpts...)
	return c
}

// In parses "(type-name,value)", converts the value with the type's input
// routine and packs the result.
func (c *Codec) In(s string) (container.Container, error) {
	ct, err := c.encodeText(s)
	c.report(OpIn, err)
	return ct, err
}

func (c *Codec) encodeText(s string) (container.Container, error) {
	v, d, err := c.parse(s)
	if err != nil {
		return nil, err
	}
	return container.Encode(v, d)
}

// Parse is In without the final packing step.
func (c *Codec) Parse(s string) (variant.Value, error) {
	v, _, err := c.parse(s)
	return v, err
}

func (c *Codec) parse(s string) (variant.Value, *typecache.Descriptor, error) {
	lit, err := text.ParseLiteral(s)
	if err != nil {
		return variant.Value{}, nil, err
	}
	if c.names == nil {
		return variant.Value{}, nil, errors.InvalidInput(errors.PhaseParse, "registry cannot resolve type names")
	}

	id, err := c.names.LookupName(lit.TypeName)
	if err != nil {
		return variant.Value{}, nil, err
	}

	d, err := c.in.Resolve(id, variant.DirInput)
	if err != nil {
		return variant.Value{}, nil, err
	}
	if lit.IsNull {
		return variant.Null(id), d, nil
	}
	if d.Input == nil {
		return variant.Value{}, nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Type(d.TypeName).
			Detail("type has no input routine").
			Build()
	}

	datum, err := d.Input(lit.Text)
	if err != nil {
		var ve *errors.Error
		if stderrors.As(err, &ve) {
			return variant.Value{}, nil, err
		}
		return variant.Value{}, nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Type(d.TypeName).
			Value(lit.Text).
			Detail("input routine failed").
			Cause(err).
			Build()
	}

	c.log.Debug("parsed variant literal",
		zap.Uint32("type", uint32(id)),
		zap.String("name", d.TypeName))

	return variant.Value{Type: id, Datum: datum}, d, nil
}

// Out unpacks ct and renders it as "(type-name,value)".
func (c *Codec) Out(ct container.Container) (string, error) {
	s, err := c.decodeText(ct)
	c.report(OpOut, err)
	return s, err
}

func (c *Codec) decodeText(ct container.Container) (string, error) {
	v, d, err := container.Decode(ct, c.out)
	if err != nil {
		return "", err
	}
	return text.Format(d, v)
}

// Format renders an unpacked value.
func (c *Codec) Format(v variant.Value) (string, error) {
	d, err := c.out.Resolve(v.Type, variant.DirOutput)
	if err != nil {
		return "", err
	}
	return text.Format(d, v)
}

// Encode packs v using its type's storage rules.
func (c *Codec) Encode(v variant.Value) (container.Container, error) {
	ct, err := c.encode(v)
	c.report(OpEncode, err)
	return ct, err
}

func (c *Codec) encode(v variant.Value) (container.Container, error) {
	d, err := c.in.Resolve(v.Type, variant.DirInput)
	if err != nil {
		return nil, err
	}
	return container.Encode(v, d)
}

// Decode unpacks ct. The returned Datum does not alias ct.
func (c *Codec) Decode(ct container.Container) (variant.Value, error) {
	v, _, err := container.Decode(ct, c.out)
	c.report(OpDecode, err)
	return v, err
}

// TypeName returns the registered name of the type held by ct.
func (c *Codec) TypeName(ct container.Container) (string, error) {
	l, err := container.Inspect(ct)
	if err != nil {
		return "", err
	}
	d, err := c.out.Resolve(l.Type, variant.DirOutput)
	if err != nil {
		return "", err
	}
	return d.TypeName, nil
}

// Reset empties both descriptor caches.
func (c *Codec) Reset() {
	c.in.Reset()
	c.out.Reset()
}

func (c *Codec) report(op string, err error) {
	if c.observer != nil {
		c.observer.Operation(op, err)
	}
	if err != nil {
		c.log.Debug("codec operation failed", zap.String("op", op), zap.Error(err))
	}
}
