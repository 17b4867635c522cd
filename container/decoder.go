package container

import (
	"bytes"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/internal/layout"
	"github.com/wippyai/variant/typecache"
)

// Decode unpacks c and resolves its output descriptor through r. The
// returned Datum is a copy; it does not alias c. For a null value the Datum
// is nil.
func Decode(c Container, r Resolver) (variant.Value, *typecache.Descriptor, error) {
	l, err := Inspect(c)
	if err != nil {
		return variant.Value{}, nil, err
	}

	d, err := r.Resolve(l.Type, variant.DirOutput)
	if err != nil {
		return variant.Value{}, nil, err
	}

	if l.IsNull() {
		return variant.Null(l.Type), d, nil
	}

	datum, err := datumOf(l.Payload, d)
	if err != nil {
		return variant.Value{}, nil, err
	}
	return variant.Value{Type: l.Type, Datum: datum}, d, nil
}

// datumOf reverses payloadOf.
func datumOf(payload []byte, d *typecache.Descriptor) (variant.Datum, error) {
	switch {
	case d.Length == variant.LengthCString:
		if i := bytes.IndexByte(payload, 0); i >= 0 {
			return nil, malformedPayload(d, "cstring payload has NUL at %d", i)
		}
		return variant.NewCString(string(payload)), nil

	case d.Length == variant.LengthVarlena:
		if len(payload) > MaxSize-variant.VarlenaHeaderSize {
			return nil, malformedPayload(d, "varlena payload of %d bytes too large", len(payload))
		}
		return variant.NewVarlena(payload), nil

	case d.Length >= 1 && d.ByValue:
		if d.Length > variant.MaxByValueLength {
			return nil, errors.UnsupportedStorage(errors.PhaseDecode, d.TypeName, d.Length)
		}
		if !layout.IsPowerOfTwo(d.Align) {
			return nil, errors.InvalidData(errors.PhaseDecode, d.TypeName, "alignment %d is not a power of two", d.Align)
		}
		pad := int(layout.Padding(d.Align))
		if len(payload) != pad+d.Length {
			return nil, malformedPayload(d, "by-value payload is %d bytes, want %d", len(payload), pad+d.Length)
		}
		return cloneBytes(payload[pad:]), nil

	case d.Length >= 1:
		if len(payload) != d.Length {
			return nil, malformedPayload(d, "payload is %d bytes, want %d", len(payload), d.Length)
		}
		return cloneBytes(payload), nil

	default:
		return nil, errors.UnsupportedStorage(errors.PhaseDecode, d.TypeName, d.Length)
	}
}

func malformedPayload(d *typecache.Descriptor, format string, args ...any) error {
	return errors.New(errors.PhaseDecode, errors.KindMalformed).
		Type(d.TypeName).
		Detail(format, args...).
		Build()
}

func cloneBytes(b []byte) variant.Datum {
	out := make(variant.Datum, len(b))
	copy(out, b)
	return out
}
