// Package header packs a type identifier and the container flags into one
// 32-bit word.
//
//	bit 31      OVERFLOW  identifier did not fit in 29 bits
//	bit 30      IS_NULL   the wrapped value is null
//	bit 29      VERSION   format version, always 0
//	bits 28..0  identifier, low bits
//
// When OVERFLOW is set the identifier's top 8 bits travel in a separate
// byte, so id = (word & IDMask) | overflow<<24. Bits 24..28 are present in
// both halves and agree.
package header
