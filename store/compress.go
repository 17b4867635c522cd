package store

import (
	"github.com/golang/snappy"

	"github.com/wippyai/variant/container"
	"github.com/wippyai/variant/errors"
)

// Stored values carry a one-byte frame tag ahead of the container.
const (
	frameRaw    byte = 0x00
	frameSnappy byte = 0x01
)

func frame(c container.Container, compress bool) []byte {
	if !compress {
		out := make([]byte, 1+len(c))
		out[0] = frameRaw
		copy(out[1:], c)
		return out
	}
	enc := snappy.Encode(nil, c)
	out := make([]byte, 1+len(enc))
	out[0] = frameSnappy
	copy(out[1:], enc)
	return out
}

func unframe(b []byte) (container.Container, error) {
	if len(b) == 0 {
		return nil, errors.Malformed("stored value is empty")
	}

	var c container.Container
	switch b[0] {
	case frameRaw:
		c = make(container.Container, len(b)-1)
		copy(c, b[1:])
	case frameSnappy:
		if n, err := snappy.DecodedLen(b[1:]); err == nil && n > container.MaxSize {
			return nil, errors.Malformed("compressed container too large: %d > %d", n, container.MaxSize)
		}
		dec, err := snappy.Decode(nil, b[1:])
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStore, errors.KindMalformed, err, "snappy decode failed")
		}
		c = dec
	default:
		return nil, errors.Malformed("unknown frame tag 0x%02x", b[0])
	}

	if _, err := container.Inspect(c); err != nil {
		return nil, err
	}
	return c, nil
}
