package header

import "github.com/wippyai/variant"

// Flags occupy the top three bits of the packed header word.
type Flags uint32

const (
	FlagOverflow Flags = 0x80000000
	FlagNull     Flags = 0x40000000
	FlagVersion  Flags = 0x20000000

	FlagMask Flags  = 0xE0000000
	IDMask   uint32 = 0x1FFFFFFF
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Overflows reports whether id needs the trailing overflow byte.
func Overflows(id variant.TypeID) bool {
	return uint32(id) > IDMask
}

// Pack builds the header word for id. FlagOverflow is derived from id and
// ignored in flags. When hasOverflow is true, overflow holds the top 8 bits
// of id and must be appended after the payload.
func Pack(id variant.TypeID, flags Flags) (word uint32, overflow byte, hasOverflow bool) {
	flags &= FlagMask &^ FlagOverflow
	word = uint32(id)&IDMask | uint32(flags)
	if Overflows(id) {
		word |= uint32(FlagOverflow)
		return word, byte(uint32(id) >> 24), true
	}
	return word, 0, false
}

// Unpack is the inverse of Pack. overflow is only read when the word has
// FlagOverflow set.
func Unpack(word uint32, overflow byte) (variant.TypeID, Flags) {
	flags := Flags(word) & FlagMask
	id := word & IDMask
	if flags.Has(FlagOverflow) {
		id |= uint32(overflow) << 24
	}
	return variant.TypeID(id), flags
}
