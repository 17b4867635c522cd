package registry

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/variant/internal/layout"
)

// Info is the host storage shape derived from a WIT type.
type Info struct {
	Length  int
	Align   uint32
	ByValue bool
}

// Layout maps a WIT type onto host storage. Primitives are passed by value,
// strings and lists are variable-length, fixed tuples and records are
// by-reference. ok is false for shapes with no fixed host form.
func Layout(t wit.Type) (info Info, ok bool) {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Length: 1, Align: 1, ByValue: true}, true
	case wit.U16, wit.S16:
		return Info{Length: 2, Align: 2, ByValue: true}, true
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Length: 4, Align: 4, ByValue: true}, true
	case wit.U64, wit.S64, wit.F64:
		return Info{Length: 8, Align: 8, ByValue: true}, true
	case wit.String:
		return Info{Length: -1, Align: 4}, true
	case *wit.TypeDef:
		return layoutTypeDef(typ)
	default:
		return Info{}, false
	}
}

func layoutTypeDef(t *wit.TypeDef) (Info, bool) {
	switch kind := t.Kind.(type) {
	case *wit.List:
		return Info{Length: -1, Align: 4}, true
	case *wit.Tuple:
		return layoutFields(kind.Types)
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		return layoutFields(types)
	case wit.Type:
		return Layout(kind)
	default:
		return Info{}, false
	}
}

// layoutFields lays out a fixed aggregate the canonical way: each member at
// its own alignment, total rounded up to the widest alignment.
func layoutFields(types []wit.Type) (Info, bool) {
	if len(types) == 0 {
		return Info{}, false
	}

	maxAlign := uint32(1)
	offset := uint32(0)
	for _, typ := range types {
		member, ok := Layout(typ)
		if !ok || member.Length < 1 {
			return Info{}, false
		}
		offset = layout.AlignTo(offset, member.Align)
		if member.Align > maxAlign {
			maxAlign = member.Align
		}
		offset += uint32(member.Length)
	}

	return Info{
		Length: int(layout.AlignTo(offset, maxAlign)),
		Align:  maxAlign,
	}, true
}
