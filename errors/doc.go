// Package errors provides structured error types for the variant module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the type name involved, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformed).
//		Type("int4").
//		Detail("payload is %d bytes, want %d", 3, 4).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType(errors.PhaseLookup, 99999)
//	err := errors.Malformed("container is %d bytes", 3)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match on kind regardless of phase:
//
//	if errors.Is(err, varerrors.ErrUnknownType) { ... }
package errors
