package container

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/header"
	"github.com/wippyai/variant/internal/layout"
	"github.com/wippyai/variant/typecache"
)

// HeaderSize is the size of total_length plus packed_header.
const HeaderSize = layout.HeaderSize

// MaxSize is the largest container Encode will build.
const MaxSize = layout.MaxContainerSize

// Container is the packed binary form of a variant. Treat it as immutable.
type Container []byte

// TotalLength returns the declared total_length, or 0 if the buffer is too short.
func (c Container) TotalLength() uint32 {
	if len(c) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(c)
}

// String returns the container as lowercase hex.
func (c Container) String() string {
	return hex.EncodeToString(c)
}

// Clone returns a copy the caller may keep after the source is reused.
func (c Container) Clone() Container {
	if c == nil {
		return nil
	}
	out := make(Container, len(c))
	copy(out, c)
	return out
}

// Resolver supplies descriptors; *typecache.Cache implements it.
type Resolver interface {
	Resolve(id variant.TypeID, dir variant.Direction) (*typecache.Descriptor, error)
}

// Layout is the raw breakdown of a container, independent of any registry.
type Layout struct {
	Payload     []byte
	TotalLength uint32
	Word        uint32
	Type        variant.TypeID
	Flags       header.Flags
	Overflow    byte
}

// IsNull reports whether the container holds a null value.
func (l Layout) IsNull() bool {
	return l.Flags.Has(header.FlagNull)
}

// HasOverflow reports whether the container carries an overflow byte.
func (l Layout) HasOverflow() bool {
	return l.Flags.Has(header.FlagOverflow)
}

// Inspect validates the framing of c and splits it into its parts. The
// payload aliases c.
func Inspect(c Container) (Layout, error) {
	if len(c) < HeaderSize {
		return Layout{}, errors.Malformed("container is %d bytes, header needs %d", len(c), HeaderSize)
	}

	total := binary.LittleEndian.Uint32(c)
	if uint64(total) != uint64(len(c)) {
		return Layout{}, errors.Malformed("declared length %d, buffer has %d bytes", total, len(c))
	}

	word := binary.LittleEndian.Uint32(c[4:])
	end := total
	var ov byte
	if header.Flags(word).Has(header.FlagOverflow) {
		if total < HeaderSize+1 {
			return Layout{}, errors.Malformed("overflow flag set but no room for overflow byte")
		}
		end--
		ov = c[end]
		// bits 24..28 are stored twice and must agree
		if ov&0x1F != byte(word>>24)&0x1F || ov < 0x20 {
			return Layout{}, errors.Malformed("overflow byte %#02x disagrees with header %#08x", ov, word)
		}
	}

	id, flags := header.Unpack(word, ov)
	if flags.Has(header.FlagVersion) {
		return Layout{}, errors.Malformed("unsupported format version in header %#08x", word)
	}

	payload := c[HeaderSize:end]
	if flags.Has(header.FlagNull) && len(payload) != 0 {
		return Layout{}, errors.Malformed("null value carries %d payload bytes", len(payload))
	}

	return Layout{
		Payload:     payload,
		TotalLength: total,
		Word:        word,
		Type:        id,
		Flags:       flags,
		Overflow:    ov,
	}, nil
}
