package text

import (
	"strings"
	"unicode"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/typecache"
)

// NeedsQuote reports whether s must be quoted inside a record literal.
func NeedsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch r {
		case '"', '\\', '(', ')', ',':
			return true
		}
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// Quote returns s ready to be placed in a record literal: unchanged when
// safe, otherwise wrapped in double quotes with every " and \ doubled.
func Quote(s string) string {
	if !NeedsQuote(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte(c)
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// Format renders v as "(type-name,text)". A null value renders as
// "(type-name,)". d must be an output descriptor for v's type.
func Format(d *typecache.Descriptor, v variant.Value) (string, error) {
	if d == nil || d.Direction != variant.DirOutput || d.Output == nil {
		return "", errors.InvalidInput(errors.PhaseFormat, "format needs an output descriptor")
	}
	if v.Type != d.Type {
		return "", errors.TypeMismatch(errors.PhaseFormat, uint32(v.Type), uint32(d.Type))
	}

	var b strings.Builder
	b.WriteString(d.TextPrefix)

	if !v.IsNull {
		s, err := d.Output(v.Datum)
		if err != nil {
			return "", errors.New(errors.PhaseFormat, errors.KindInvalidData).
				Type(d.TypeName).
				Detail("output routine failed").
				Cause(err).
				Build()
		}
		b.WriteString(Quote(s))
	}

	b.WriteByte(')')
	return b.String(), nil
}
