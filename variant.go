package variant

// TypeID identifies a type known to a Registry.
type TypeID uint32

// Direction selects which text conversion routine a descriptor carries.
type Direction uint8

const (
	// DirInput converts text to a Datum; used on the way into a container.
	DirInput Direction = iota
	// DirOutput converts a Datum to text; used on the way out of a container.
	DirOutput
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	default:
		return "unknown"
	}
}

// StorageClass is how values of a type are physically represented.
type StorageClass uint8

const (
	ClassInvalid StorageClass = iota
	ClassByValue
	ClassByReference
	ClassVarlena
	ClassCString
)

var classNames = [...]string{
	ClassInvalid:     "invalid",
	ClassByValue:     "by-value",
	ClassByReference: "by-reference",
	ClassVarlena:     "varlena",
	ClassCString:     "cstring",
}

func (c StorageClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Special TypeInfo.Length values.
const (
	LengthVarlena = -1
	LengthCString = -2
)

// MaxByValueLength is the widest type that may be passed by value.
const MaxByValueLength = 8

// ClassOf maps a storage length and by-value flag to a StorageClass.
func ClassOf(length int, byValue bool) StorageClass {
	switch {
	case length == LengthVarlena:
		return ClassVarlena
	case length == LengthCString:
		return ClassCString
	case length >= 1 && byValue:
		if length > MaxByValueLength {
			return ClassInvalid
		}
		return ClassByValue
	case length >= 1:
		return ClassByReference
	default:
		return ClassInvalid
	}
}

// InputFunc parses an isolated literal into a Datum of its type.
type InputFunc func(text string) (Datum, error)

// OutputFunc renders a Datum of its type as text.
type OutputFunc func(d Datum) (string, error)

// TypeInfo is what a Registry knows about one type.
type TypeInfo struct {
	Input   InputFunc
	Output  OutputFunc
	Name    string
	ID      TypeID
	Length  int
	Align   uint32
	ByValue bool
}

// Class returns the storage class implied by Length and ByValue.
func (t *TypeInfo) Class() StorageClass {
	return ClassOf(t.Length, t.ByValue)
}

// Registry resolves type identifiers to storage metadata and conversion routines.
type Registry interface {
	LookupType(id TypeID) (*TypeInfo, error)
}

// NameResolver resolves a type name, as written in text input, to its identifier.
type NameResolver interface {
	LookupName(name string) (TypeID, error)
}

// Value is the in-memory, type-tagged form of a variant.
// IsNull means the wrapped value of type Type is null; Datum must not be
// read in that case.
type Value struct {
	Datum  Datum
	Type   TypeID
	IsNull bool
}

// Null returns a null value of the given type.
func Null(id TypeID) Value {
	return Value{Type: id, IsNull: true}
}
