package container

import (
	"encoding/binary"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/header"
	"github.com/wippyai/variant/internal/layout"
	"github.com/wippyai/variant/typecache"
)

// Encode packs v using the storage rules of d. The result is a fresh buffer
// owned by the caller.
func Encode(v variant.Value, d *typecache.Descriptor) (Container, error) {
	if d == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil descriptor")
	}
	if v.Type != d.Type {
		return nil, errors.TypeMismatch(errors.PhaseEncode, uint32(v.Type), uint32(d.Type))
	}

	var (
		flags   header.Flags
		payload []byte
		pad     uint32
	)

	if v.IsNull {
		flags |= header.FlagNull
	} else {
		var err error
		payload, pad, err = payloadOf(v.Datum, d)
		if err != nil {
			return nil, err
		}
	}

	word, ov, hasOverflow := header.Pack(v.Type, flags)

	total, ok := layout.SafeAddU32(HeaderSize+pad, uint32(len(payload)))
	if ok && hasOverflow {
		total, ok = layout.SafeAddU32(total, 1)
	}
	if !ok || total > MaxSize || len(payload) > MaxSize {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Type(d.TypeName).
			Detail("value of %d bytes exceeds container limit %d", len(payload), MaxSize).
			Build()
	}

	buf := make(Container, total)
	binary.LittleEndian.PutUint32(buf, total)
	binary.LittleEndian.PutUint32(buf[4:], word)
	copy(buf[HeaderSize+pad:], payload)
	if hasOverflow {
		buf[total-1] = ov
	}
	return buf, nil
}

// payloadOf returns the bytes to store for datum and the padding that
// precedes them.
func payloadOf(datum variant.Datum, d *typecache.Descriptor) ([]byte, uint32, error) {
	switch {
	case d.Length == variant.LengthCString:
		data, err := variant.CStringData(datum)
		if err != nil {
			return nil, 0, invalidDatum(d, err)
		}
		return data, 0, nil

	case d.Length == variant.LengthVarlena:
		data, err := variant.VarlenaData(datum)
		if err != nil {
			return nil, 0, invalidDatum(d, err)
		}
		return data, 0, nil

	case d.Length >= 1 && d.ByValue:
		if d.Length > variant.MaxByValueLength {
			return nil, 0, errors.UnsupportedStorage(errors.PhaseEncode, d.TypeName, d.Length)
		}
		if !layout.IsPowerOfTwo(d.Align) {
			return nil, 0, errors.InvalidData(errors.PhaseEncode, d.TypeName, "alignment %d is not a power of two", d.Align)
		}
		if len(datum) != d.Length {
			return nil, 0, errors.InvalidData(errors.PhaseEncode, d.TypeName,
				"by-value datum is %d bytes, type length is %d", len(datum), d.Length)
		}
		return datum, layout.Padding(d.Align), nil

	case d.Length >= 1:
		if len(datum) != d.Length {
			return nil, 0, errors.InvalidData(errors.PhaseEncode, d.TypeName,
				"datum is %d bytes, type length is %d", len(datum), d.Length)
		}
		return datum, 0, nil

	default:
		return nil, 0, errors.UnsupportedStorage(errors.PhaseEncode, d.TypeName, d.Length)
	}
}

func invalidDatum(d *typecache.Descriptor, cause error) error {
	return errors.New(errors.PhaseEncode, errors.KindInvalidData).
		Type(d.TypeName).
		Detail("%s datum", d.Class).
		Cause(cause).
		Build()
}
