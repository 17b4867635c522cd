package registry

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/variant"
	varerrors "github.com/wippyai/variant/errors"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		name   string
		typ    wit.Type
		want   Info
		wantOK bool
	}{
		{"bool", wit.Bool{}, Info{Length: 1, Align: 1, ByValue: true}, true},
		{"s16", wit.S16{}, Info{Length: 2, Align: 2, ByValue: true}, true},
		{"s32", wit.S32{}, Info{Length: 4, Align: 4, ByValue: true}, true},
		{"f64", wit.F64{}, Info{Length: 8, Align: 8, ByValue: true}, true},
		{"string", wit.String{}, Info{Length: -1, Align: 4}, true},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, Info{Length: -1, Align: 4}, true},
		{"tuple f64 f64", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.F64{}, wit.F64{}}}}, Info{Length: 16, Align: 8}, true},
		{"tuple u8 u32", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U32{}}}}, Info{Length: 8, Align: 4}, true},
		{"record", &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "a", Type: wit.U16{}},
			{Name: "b", Type: wit.U64{}},
		}}}, Info{Length: 16, Align: 8}, true},
		{"tuple with string", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.String{}}}}, Info{}, false},
		{"empty tuple", &wit.TypeDef{Kind: &wit.Tuple{}}, Info{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Layout(tt.typ)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Layout = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuiltin_Storage(t *testing.T) {
	r := NewBuiltin()

	tests := []struct {
		id     variant.TypeID
		name   string
		class  variant.StorageClass
		length int
		align  uint32
	}{
		{BoolOID, "bool", variant.ClassByValue, 1, 1},
		{Int2OID, "int2", variant.ClassByValue, 2, 2},
		{Int4OID, "int4", variant.ClassByValue, 4, 4},
		{Int8OID, "int8", variant.ClassByValue, 8, 8},
		{Float8OID, "float8", variant.ClassByValue, 8, 8},
		{NameOID, "name", variant.ClassByReference, 64, 1},
		{UUIDOID, "uuid", variant.ClassByReference, 16, 1},
		{PointOID, "point", variant.ClassByReference, 16, 8},
		{TextOID, "text", variant.ClassVarlena, -1, 4},
		{ByteaOID, "bytea", variant.ClassVarlena, -1, 4},
		{CStringOID, "cstring", variant.ClassCString, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := r.LookupType(tt.id)
			if err != nil {
				t.Fatalf("LookupType(%d): %v", tt.id, err)
			}
			if info.Name != tt.name {
				t.Errorf("Name = %q, want %q", info.Name, tt.name)
			}
			if info.Class() != tt.class {
				t.Errorf("Class = %v, want %v", info.Class(), tt.class)
			}
			if info.Length != tt.length || info.Align != tt.align {
				t.Errorf("length=%d align=%d, want %d/%d", info.Length, info.Align, tt.length, tt.align)
			}
		})
	}
}

func TestBuiltin_TextRoundTrip(t *testing.T) {
	r := NewBuiltin()

	tests := []struct {
		id   variant.TypeID
		in   string
		want string
	}{
		{BoolOID, "true", "t"},
		{BoolOID, " OFF ", "f"},
		{CharOID, "xyz", "x"},
		{CharOID, "", ""},
		{Int2OID, "-32768", "-32768"},
		{Int4OID, "42", "42"},
		{Int4OID, " -7 ", "-7"},
		{Int8OID, "9223372036854775807", "9223372036854775807"},
		{OIDOID, "4294967295", "4294967295"},
		{Float4OID, "1.5", "1.5"},
		{Float8OID, "0.1", "0.1"},
		{Float8OID, "Infinity", "Infinity"},
		{Float8OID, "-inf", "-Infinity"},
		{Float8OID, "nan", "NaN"},
		{TextOID, "hello, world", "hello, world"},
		{TextOID, "", ""},
		{VarcharOID, "abc", "abc"},
		{ByteaOID, `\x00ff10`, `\x00ff10`},
		{ByteaOID, `ab\\c\001`, `\x61625c6301`},
		{NameOID, "pg_class", "pg_class"},
		{CStringOID, "plain", "plain"},
		{UUIDOID, "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11", "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"},
		{PointOID, "(1,2.5)", "(1,2.5)"},
		{PointOID, " 3 , -4 ", "(3,-4)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			info, err := r.LookupType(tt.id)
			if err != nil {
				t.Fatal(err)
			}
			d, err := info.Input(tt.in)
			if err != nil {
				t.Fatalf("Input(%q): %v", tt.in, err)
			}
			if info.Length > 0 && len(d) != info.Length {
				t.Errorf("datum is %d bytes, want %d", len(d), info.Length)
			}
			got, err := info.Output(d)
			if err != nil {
				t.Fatalf("Output: %v", err)
			}
			if got != tt.want {
				t.Errorf("Output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltin_NameTruncates(t *testing.T) {
	r := NewBuiltin()
	info, _ := r.LookupType(NameOID)

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	d, err := info.Input(string(long))
	if err != nil {
		t.Fatal(err)
	}
	out, _ := info.Output(d)
	if len(out) != NameDataLen-1 {
		t.Errorf("name length = %d, want %d", len(out), NameDataLen-1)
	}
}

func TestBuiltin_BadLiterals(t *testing.T) {
	r := NewBuiltin()

	tests := []struct {
		id variant.TypeID
		in string
	}{
		{BoolOID, "maybe"},
		{Int2OID, "40000"},
		{Int4OID, "4x"},
		{Int4OID, ""},
		{OIDOID, "-1"},
		{Float8OID, "one"},
		{ByteaOID, `\xzz`},
		{ByteaOID, `a\q`},
		{UUIDOID, "not-a-uuid"},
		{PointOID, "(1;2)"},
		{CStringOID, "a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			info, _ := r.LookupType(tt.id)
			_, err := info.Input(tt.in)
			var ve *varerrors.Error
			if !errors.As(err, &ve) || ve.Kind != varerrors.KindInvalidData {
				t.Errorf("Input(%q) err = %v, want invalid_data", tt.in, err)
			}
		})
	}
}

func TestLookupName(t *testing.T) {
	r := NewBuiltin()

	tests := []struct {
		name string
		want variant.TypeID
	}{
		{"int4", Int4OID},
		{"INT4", Int4OID},
		{" integer ", Int4OID},
		{"double precision", Float8OID},
		{"uuid", UUIDOID},
	}
	for _, tt := range tests {
		got, err := r.LookupName(tt.name)
		if err != nil {
			t.Errorf("LookupName(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LookupName(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := r.LookupName("nosuchtype"); !errors.Is(err, varerrors.ErrUnknownType) {
		t.Errorf("err = %v, want unknown_type", err)
	}
}

func TestLookupType_Unknown(t *testing.T) {
	_, err := NewBuiltin().LookupType(99999)
	if !errors.Is(err, varerrors.ErrUnknownType) {
		t.Errorf("err = %v, want unknown_type", err)
	}
}

func TestBuiltin_NameTruncatesOnRuneBoundary(t *testing.T) {
	r := NewBuiltin()
	info, _ := r.LookupType(NameOID)

	// 62 ASCII bytes then a two-byte rune straddling the 63-byte limit.
	in := strings.Repeat("a", NameDataLen-2) + "é"
	d, err := info.Input(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := info.Output(d)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(out) {
		t.Errorf("name %q is not valid UTF-8", out)
	}
	if out != strings.Repeat("a", NameDataLen-2) {
		t.Errorf("name = %q", out)
	}
}

func TestRegister_Validation(t *testing.T) {
	in := func(string) (variant.Datum, error) { return nil, nil }
	out := func(variant.Datum) (string, error) { return "", nil }

	tests := []struct {
		name string
		info *variant.TypeInfo
	}{
		{"nil", nil},
		{"empty name", &variant.TypeInfo{ID: 1, Length: 4, ByValue: true, Input: in, Output: out}},
		{"bad length", &variant.TypeInfo{ID: 1, Name: "x", Length: -3, Input: in, Output: out}},
		{"wide by-value", &variant.TypeInfo{ID: 1, Name: "x", Length: 12, ByValue: true, Input: in, Output: out}},
		{"bad align", &variant.TypeInfo{ID: 1, Name: "x", Length: 4, Align: 3, Input: in, Output: out}},
		{"by-value align 16", &variant.TypeInfo{ID: 1, Name: "x", Length: 8, Align: 16, ByValue: true, Input: in, Output: out}},
		{"no routines", &variant.TypeInfo{ID: 1, Name: "x", Length: 4}},
		{"duplicate id", &variant.TypeInfo{ID: Int4OID, Name: "other", Length: 4, Input: in, Output: out}},
		{"duplicate name", &variant.TypeInfo{ID: 1, Name: "INT4", Length: 4, Input: in, Output: out}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuiltin().Register(tt.info)
			var ve *varerrors.Error
			if !errors.As(err, &ve) || ve.Kind != varerrors.KindRegistration {
				t.Errorf("err = %v, want registration", err)
			}
		})
	}
}

func TestRegister_CopiesInfo(t *testing.T) {
	r := New()
	info := &variant.TypeInfo{
		ID: 500, Name: " Money ", Length: 8, ByValue: true,
		Input:  func(string) (variant.Datum, error) { return make(variant.Datum, 8), nil },
		Output: func(variant.Datum) (string, error) { return "0", nil },
	}
	if err := r.Register(info); err != nil {
		t.Fatal(err)
	}
	if info.Align != 0 || info.Name != " Money " {
		t.Errorf("caller's info modified: %+v", info)
	}

	info.Length = 4
	info.Name = "changed"
	got, err := r.LookupType(500)
	if err != nil {
		t.Fatal(err)
	}
	if got.Length != 8 || got.Name != "money" || got.Align != 1 {
		t.Errorf("registered = %+v", got)
	}
}

func TestRegister_LargeIdentifier(t *testing.T) {
	r := NewBuiltin()
	err := r.Register(&variant.TypeInfo{
		ID: 0xFFFFFFFF, Name: "Huge", Length: 4, Align: 4, ByValue: true,
		Input:  func(string) (variant.Datum, error) { return make(variant.Datum, 4), nil },
		Output: func(variant.Datum) (string, error) { return "0", nil },
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	id, err := r.LookupName("huge")
	if err != nil || id != 0xFFFFFFFF {
		t.Errorf("LookupName = %d, %v", id, err)
	}
}

func TestAlias(t *testing.T) {
	r := NewBuiltin()
	if err := r.Alias("myint", Int4OID); err != nil {
		t.Fatal(err)
	}
	if err := r.Alias("ghost", 424242); err == nil {
		t.Error("alias to unknown type should fail")
	}
	if err := r.Alias("int4", Int8OID); err == nil {
		t.Error("alias shadowing a name should fail")
	}
}

func TestTypes_Sorted(t *testing.T) {
	types := NewBuiltin().Types()
	if len(types) != 15 {
		t.Fatalf("len = %d, want 15", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1].ID >= types[i].ID {
			t.Fatalf("not sorted at %d: %d >= %d", i, types[i-1].ID, types[i].ID)
		}
	}
}
