package layout

import "math"

// HeaderSize is total_length plus packed_header.
const HeaderSize = 8

// MaxContainerSize caps a single container.
const MaxContainerSize = 1 << 30

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Padding is the number of bytes between the header and a by-value payload
// of the given alignment. Offsets are measured from the start of the buffer,
// so alignments up to 8 never pad and an alignment of 16 pads 8 bytes. A
// reader that measures from the payload start would disagree on such types;
// registry.Register refuses them.
func Padding(align uint32) uint32 {
	return AlignTo(HeaderSize, align) - HeaderSize
}

// IsPowerOfTwo reports whether align is a usable alignment.
func IsPowerOfTwo(align uint32) bool {
	return align != 0 && align&(align-1) == 0
}
