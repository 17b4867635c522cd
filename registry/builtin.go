package registry

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/variant"
	"github.com/wippyai/variant/errors"
)

// Builtin type identifiers. They match the host catalog's numbering.
const (
	BoolOID    variant.TypeID = 16
	ByteaOID   variant.TypeID = 17
	CharOID    variant.TypeID = 18
	NameOID    variant.TypeID = 19
	Int8OID    variant.TypeID = 20
	Int2OID    variant.TypeID = 21
	Int4OID    variant.TypeID = 23
	TextOID    variant.TypeID = 25
	OIDOID     variant.TypeID = 26
	PointOID   variant.TypeID = 600
	Float4OID  variant.TypeID = 700
	Float8OID  variant.TypeID = 701
	VarcharOID variant.TypeID = 1043
	CStringOID variant.TypeID = 2275
	UUIDOID    variant.TypeID = 2950
)

// NameDataLen is the fixed storage size of the name type, terminator included.
const NameDataLen = 64

// NewBuiltin returns a registry preloaded with the builtin scalar types.
func NewBuiltin() *Registry {
	r := New()

	point := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.F64{}, wit.F64{}}}}

	must(r.RegisterWIT(BoolOID, "bool", wit.Bool{}, boolIn, boolOut))
	must(r.RegisterWIT(CharOID, "char", wit.U8{}, charIn, charOut))
	must(r.RegisterWIT(Int8OID, "int8", wit.S64{}, intIn("int8", 64), intOut(64)))
	must(r.RegisterWIT(Int2OID, "int2", wit.S16{}, intIn("int2", 16), intOut(16)))
	must(r.RegisterWIT(Int4OID, "int4", wit.S32{}, intIn("int4", 32), intOut(32)))
	must(r.RegisterWIT(OIDOID, "oid", wit.U32{}, oidIn, oidOut))
	must(r.RegisterWIT(Float4OID, "float4", wit.F32{}, float4In, float4Out))
	must(r.RegisterWIT(Float8OID, "float8", wit.F64{}, float8In, float8Out))
	must(r.RegisterWIT(TextOID, "text", wit.String{}, textIn, textOut))
	must(r.RegisterWIT(VarcharOID, "varchar", wit.String{}, textIn, textOut))
	must(r.RegisterWIT(ByteaOID, "bytea", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, byteaIn, byteaOut))
	must(r.RegisterWIT(PointOID, "point", point, pointIn, pointOut))

	must(r.Register(&variant.TypeInfo{
		ID: NameOID, Name: "name", Length: NameDataLen, Align: 1,
		Input: nameIn, Output: nameOut,
	}))
	must(r.Register(&variant.TypeInfo{
		ID: CStringOID, Name: "cstring", Length: variant.LengthCString, Align: 1,
		Input: cstringIn, Output: cstringOut,
	}))
	must(r.Register(&variant.TypeInfo{
		ID: UUIDOID, Name: "uuid", Length: 16, Align: 1,
		Input: uuidIn, Output: uuidOut,
	}))

	for alias, id := range map[string]variant.TypeID{
		"boolean":           BoolOID,
		"smallint":          Int2OID,
		"int":               Int4OID,
		"integer":           Int4OID,
		"bigint":            Int8OID,
		"real":              Float4OID,
		"double precision":  Float8OID,
		"character varying": VarcharOID,
		`"char"`:            CharOID,
	} {
		must(r.Alias(alias, id))
	}

	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func badLiteral(typeName, text string, cause error) error {
	b := errors.New(errors.PhaseParse, errors.KindInvalidData).
		Type(typeName).
		Value(text).
		Detail("invalid input syntax for type %s: %q", typeName, text)
	if cause != nil {
		b = b.Cause(cause)
	}
	return b.Build()
}

func badDatum(typeName string, d variant.Datum) error {
	return errors.InvalidData(errors.PhaseFormat, typeName, "datum of %d bytes is not a valid %s", len(d), typeName)
}

func boolIn(s string) (variant.Datum, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "on", "1":
		return variant.Datum{1}, nil
	case "f", "false", "n", "no", "off", "0":
		return variant.Datum{0}, nil
	}
	return nil, badLiteral("bool", s, nil)
}

func boolOut(d variant.Datum) (string, error) {
	if len(d) != 1 {
		return "", badDatum("bool", d)
	}
	if d[0] != 0 {
		return "t", nil
	}
	return "f", nil
}

func charIn(s string) (variant.Datum, error) {
	if s == "" {
		return variant.Datum{0}, nil
	}
	return variant.Datum{s[0]}, nil
}

func charOut(d variant.Datum) (string, error) {
	if len(d) != 1 {
		return "", badDatum("char", d)
	}
	if d[0] == 0 {
		return "", nil
	}
	return string(d[:1]), nil
}

func intIn(typeName string, bits int) variant.InputFunc {
	return func(s string) (variant.Datum, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
		if err != nil {
			return nil, badLiteral(typeName, s, err)
		}
		return putLE(uint64(v), bits/8), nil
	}
}

func intOut(bits int) variant.OutputFunc {
	return func(d variant.Datum) (string, error) {
		if len(d) != bits/8 {
			return "", badDatum("int"+strconv.Itoa(bits/8), d)
		}
		switch bits {
		case 16:
			return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(d))), 10), nil
		case 32:
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(d))), 10), nil
		default:
			return strconv.FormatInt(int64(binary.LittleEndian.Uint64(d)), 10), nil
		}
	}
}

func oidIn(s string) (variant.Datum, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil, badLiteral("oid", s, err)
	}
	return putLE(v, 4), nil
}

func oidOut(d variant.Datum) (string, error) {
	if len(d) != 4 {
		return "", badDatum("oid", d)
	}
	return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(d)), 10), nil
}

func float4In(s string) (variant.Datum, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return nil, badLiteral("float4", s, err)
	}
	return putLE(uint64(math.Float32bits(float32(f))), 4), nil
}

func float4Out(d variant.Datum) (string, error) {
	if len(d) != 4 {
		return "", badDatum("float4", d)
	}
	return formatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(d))), 32), nil
}

func float8In(s string) (variant.Datum, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, badLiteral("float8", s, err)
	}
	return putLE(math.Float64bits(f), 8), nil
}

func float8Out(d variant.Datum) (string, error) {
	if len(d) != 8 {
		return "", badDatum("float8", d)
	}
	return formatFloat(math.Float64frombits(binary.LittleEndian.Uint64(d)), 64), nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func textIn(s string) (variant.Datum, error) {
	return variant.NewVarlena([]byte(s)), nil
}

func textOut(d variant.Datum) (string, error) {
	data, err := variant.VarlenaData(d)
	if err != nil {
		return "", errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "text datum")
	}
	return string(data), nil
}

// byteaIn accepts the hex form (\x...) and the escape form, where \\ is a
// backslash and \nnn an octal byte.
func byteaIn(s string) (variant.Datum, error) {
	if strings.HasPrefix(s, `\x`) {
		data, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, badLiteral("bytea", s, err)
		}
		return variant.NewVarlena(data), nil
	}

	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			buf.WriteByte(c)
			continue
		}
		if i+1 < len(s) && s[i+1] == '\\' {
			buf.WriteByte('\\')
			i++
			continue
		}
		if i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) && s[i+1] <= '3' {
			buf.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		return nil, badLiteral("bytea", s, nil)
	}
	return variant.NewVarlena(buf.Bytes()), nil
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func byteaOut(d variant.Datum) (string, error) {
	data, err := variant.VarlenaData(d)
	if err != nil {
		return "", errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "bytea datum")
	}
	return `\x` + hex.EncodeToString(data), nil
}

// nameIn truncates to at most NameDataLen-1 bytes on a rune boundary and
// zero-pads.
func nameIn(s string) (variant.Datum, error) {
	d := make(variant.Datum, NameDataLen)
	if len(s) > NameDataLen-1 {
		cut := NameDataLen - 1
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	copy(d, s)
	return d, nil
}

func nameOut(d variant.Datum) (string, error) {
	if len(d) != NameDataLen {
		return "", badDatum("name", d)
	}
	if i := bytes.IndexByte(d, 0); i >= 0 {
		return string(d[:i]), nil
	}
	return string(d), nil
}

func cstringIn(s string) (variant.Datum, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, badLiteral("cstring", s, nil)
	}
	return variant.NewCString(s), nil
}

func cstringOut(d variant.Datum) (string, error) {
	data, err := variant.CStringData(d)
	if err != nil {
		return "", errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "cstring datum")
	}
	return string(data), nil
}

func uuidIn(s string) (variant.Datum, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, badLiteral("uuid", s, err)
	}
	return variant.Datum(u[:]), nil
}

func uuidOut(d variant.Datum) (string, error) {
	u, err := uuid.FromBytes(d)
	if err != nil {
		return "", badDatum("uuid", d)
	}
	return u.String(), nil
}

// pointIn parses "(x,y)" or "x,y".
func pointIn(s string) (variant.Datum, error) {
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = body[1 : len(body)-1]
	}
	xs, ys, ok := strings.Cut(body, ",")
	if !ok {
		return nil, badLiteral("point", s, nil)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return nil, badLiteral("point", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return nil, badLiteral("point", s, err)
	}
	d := make(variant.Datum, 16)
	binary.LittleEndian.PutUint64(d, math.Float64bits(x))
	binary.LittleEndian.PutUint64(d[8:], math.Float64bits(y))
	return d, nil
}

func pointOut(d variant.Datum) (string, error) {
	if len(d) != 16 {
		return "", badDatum("point", d)
	}
	x := math.Float64frombits(binary.LittleEndian.Uint64(d))
	y := math.Float64frombits(binary.LittleEndian.Uint64(d[8:]))
	return "(" + formatFloat(x, 64) + "," + formatFloat(y, 64) + ")", nil
}

func putLE(v uint64, size int) variant.Datum {
	d := make(variant.Datum, 8)
	binary.LittleEndian.PutUint64(d, v)
	return d[:size:size]
}
