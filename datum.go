package variant

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Datum is the host representation of a typed value:
//
//	by-value      Length bytes, little-endian
//	by-reference  Length bytes
//	varlena       4-byte little-endian length (self-inclusive) + data
//	cstring       bytes + NUL
type Datum []byte

// VarlenaHeaderSize is the size of a varlena datum's own length prefix.
const VarlenaHeaderSize = 4

// NewVarlena wraps data with its length prefix.
func NewVarlena(data []byte) Datum {
	d := make(Datum, VarlenaHeaderSize+len(data))
	binary.LittleEndian.PutUint32(d, uint32(len(d)))
	copy(d[VarlenaHeaderSize:], data)
	return d
}

// VarlenaData returns the data region of a varlena datum, validating its prefix.
func VarlenaData(d Datum) ([]byte, error) {
	if len(d) < VarlenaHeaderSize {
		return nil, fmt.Errorf("varlena datum is %d bytes, shorter than its header", len(d))
	}
	n := binary.LittleEndian.Uint32(d)
	if int(n) != len(d) {
		return nil, fmt.Errorf("varlena header says %d bytes, datum has %d", n, len(d))
	}
	return d[VarlenaHeaderSize:], nil
}

// NewCString returns s as a NUL-terminated datum.
func NewCString(s string) Datum {
	d := make(Datum, len(s)+1)
	copy(d, s)
	return d
}

// CStringData returns the bytes of a C string datum up to its terminator.
func CStringData(d Datum) ([]byte, error) {
	i := bytes.IndexByte(d, 0)
	if i < 0 {
		return nil, fmt.Errorf("cstring datum of %d bytes has no terminator", len(d))
	}
	if i != len(d)-1 {
		return nil, fmt.Errorf("cstring datum has terminator at %d of %d bytes", i, len(d))
	}
	return d[:i], nil
}
