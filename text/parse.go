package text

import (
	"strings"

	"github.com/wippyai/variant/errors"
)

// Field is one column of a record literal.
type Field struct {
	Text string
	Null bool
}

// Literal is a parsed "(type,value)" pair.
type Literal struct {
	TypeName string
	Text     string
	IsNull   bool
}

// ParseRecord splits a record literal "(a,b,...)" into its fields.
//
// Outside quotes a backslash takes the next character literally. Inside
// quotes a backslash does the same and "" is one quote. A field with no
// characters at all is NULL; "" is the empty string.
func ParseRecord(input string) ([]Field, error) {
	s := strings.TrimLeft(input, " \t\n\r\v\f")
	if s == "" || s[0] != '(' {
		return nil, errors.InvalidInput(errors.PhaseParse, "malformed record literal: missing left parenthesis")
	}

	var (
		fields []Field
		i      = 1
	)
	for {
		if i < len(s) && (s[i] == ',' || s[i] == ')') {
			fields = append(fields, Field{Null: true})
		} else {
			var (
				b       strings.Builder
				inQuote bool
			)
			for {
				if i >= len(s) {
					return nil, errors.InvalidInput(errors.PhaseParse, "malformed record literal: unexpected end of input")
				}
				c := s[i]
				if c == '\\' {
					if i+1 >= len(s) {
						return nil, errors.InvalidInput(errors.PhaseParse, "malformed record literal: unexpected end of input")
					}
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				if c == '"' {
					if !inQuote {
						inQuote = true
					} else if i+1 < len(s) && s[i+1] == '"' {
						b.WriteByte('"')
						i++
					} else {
						inQuote = false
					}
					i++
					continue
				}
				if !inQuote && (c == ',' || c == ')') {
					break
				}
				b.WriteByte(c)
				i++
			}
			fields = append(fields, Field{Text: b.String()})
		}

		// s[i] is ',' or ')'
		if s[i] == ')' {
			i++
			break
		}
		i++
	}

	if strings.TrimLeft(s[i:], " \t\n\r\v\f") != "" {
		return nil, errors.InvalidInput(errors.PhaseParse, "malformed record literal: junk after right parenthesis")
	}
	return fields, nil
}

// ParseLiteral parses "(type,value)". The type field is required; an absent
// value field means a null of that type.
func ParseLiteral(input string) (Literal, error) {
	fields, err := ParseRecord(input)
	if err != nil {
		return Literal{}, err
	}
	if len(fields) < 2 {
		return Literal{}, errors.InvalidInput(errors.PhaseParse, "malformed record literal: too few columns")
	}
	if len(fields) > 2 {
		return Literal{}, errors.InvalidInput(errors.PhaseParse, "malformed record literal: too many columns")
	}
	if fields[0].Null {
		return Literal{}, errors.NullRequiredField(errors.PhaseParse, "original type of variant")
	}

	return Literal{
		TypeName: fields[0].Text,
		Text:     fields[1].Text,
		IsNull:   fields[1].Null,
	}, nil
}
