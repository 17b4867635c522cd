// Package container encodes variant values into packed containers and
// decodes them back.
//
// # Layout
//
//	offset 0   total_length   u32 LE, whole buffer incl. overflow byte
//	offset 4   packed_header  u32 LE, see package header
//	offset 8   payload        absent for null values
//	last byte  overflow       only when OVERFLOW is set
//
// # Payload Rules
//
//	Storage         Payload
//	──────────────────────────────────────────────────────────────
//	by-value        padding to the type alignment, then Length bytes
//	by-reference    exactly Length bytes
//	varlena         data without its 4-byte length prefix
//	cstring         bytes without the NUL terminator
//
// Variable-length payload sizes are implied by total_length. Decode restores
// the varlena prefix and the terminator, so a decoded Datum is byte-equal to
// the one that was encoded.
//
// Padding is measured from the start of the buffer; the payload starts at
// offset 8, so only alignments above 8 produce padding bytes.
package container
