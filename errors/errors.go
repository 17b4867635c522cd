package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLookup   Phase = "lookup"   // type registry / descriptor cache
	PhaseEncode   Phase = "encode"   // value to container
	PhaseDecode   Phase = "decode"   // container to value
	PhaseFormat   Phase = "format"   // value to text
	PhaseParse    Phase = "parse"    // text to value
	PhaseRegister Phase = "register" // type registration
	PhaseStore    Phase = "store"    // value-store backends
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownType        Kind = "unknown_type"
	KindMalformed          Kind = "malformed_container"
	KindUnsupportedStorage Kind = "unsupported_storage_class"
	KindDirectionConflict  Kind = "cache_direction_conflict"
	KindNullRequiredField  Kind = "null_required_field"
	KindTypeMismatch       Kind = "type_mismatch"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindRegistration       Kind = "registration"
	KindBackend            Kind = "backend"
)

// Sentinels for errors.Is. They carry no phase, so they match any phase.
var (
	ErrUnknownType        = &Error{Kind: KindUnknownType}
	ErrMalformed          = &Error{Kind: KindMalformed}
	ErrUnsupportedStorage = &Error{Kind: KindUnsupportedStorage}
	ErrDirectionConflict  = &Error{Kind: KindDirectionConflict}
	ErrNullRequiredField  = &Error{Kind: KindNullRequiredField}
	ErrTypeMismatch       = &Error{Kind: KindTypeMismatch}
	ErrInvalidData        = &Error{Kind: KindInvalidData}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrBackend            = &Error{Kind: KindBackend}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" (type ")
		b.WriteString(e.Type)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the type name or identifier the error concerns
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownType creates an error for a type identifier the registry does not know
func UnknownType(phase Phase, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Detail: fmt.Sprintf("no type with identifier %d", id),
		Value:  id,
	}
}

// UnknownTypeName creates an error for a type name the registry does not know
func UnknownTypeName(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Type:   name,
		Detail: fmt.Sprintf("type %q does not exist", name),
		Value:  name,
	}
}

// Malformed creates a malformed container error
func Malformed(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformed,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnsupportedStorage creates an error for a storage length outside {-2, -1, >=1}
func UnsupportedStorage(phase Phase, typeName string, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedStorage,
		Type:   typeName,
		Detail: fmt.Sprintf("unsupported storage length %d", length),
		Value:  length,
	}
}

// DirectionConflict creates an error for a cache slot requested under both directions
func DirectionConflict(id uint32, cached, requested string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindDirectionConflict,
		Detail: fmt.Sprintf("type %d cached for %s, requested for %s", id, cached, requested),
		Value:  id,
	}
}

// NullRequiredField creates an error for a required field that is NULL
func NullRequiredField(phase Phase, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullRequiredField,
		Detail: fmt.Sprintf("%s must not be NULL", field),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, got, want uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("value has type %d, descriptor has type %d", got, want),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, typeName string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Type:   typeName,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates a registration error
func Registration(name string, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Type:   name,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
