package header

import (
	"math"
	"math/rand"
	"testing"

	"github.com/wippyai/variant"
)

func TestPack_Boundaries(t *testing.T) {
	tests := []struct {
		name         string
		id           variant.TypeID
		flags        Flags
		wantWord     uint32
		wantOverflow byte
		wantHas      bool
	}{
		{"zero", 0, 0, 0x00000000, 0, false},
		{"int4", 23, 0, 0x00000017, 0, false},
		{"int4 null", 23, FlagNull, 0x40000017, 0, false},
		{"largest inline", 0x1FFFFFFF, 0, 0x1FFFFFFF, 0, false},
		{"smallest overflow", 0x20000000, 0, 0x80000000, 0x20, true},
		{"smallest overflow null", 0x20000000, FlagNull, 0xC0000000, 0x20, true},
		{"max", math.MaxUint32, 0, 0x9FFFFFFF, 0xFF, true},
		{"overflow flag ignored", 23, FlagOverflow, 0x00000017, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, ov, has := Pack(tt.id, tt.flags)
			if word != tt.wantWord {
				t.Errorf("word = %#08x, want %#08x", word, tt.wantWord)
			}
			if has != tt.wantHas {
				t.Errorf("hasOverflow = %v, want %v", has, tt.wantHas)
			}
			if ov != tt.wantOverflow {
				t.Errorf("overflow = %#02x, want %#02x", ov, tt.wantOverflow)
			}
		})
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	ids := []uint32{
		0, 1, 23, 0xFFFF, 0x00FFFFFF, 0x01000000,
		0x1FFFFFFE, 0x1FFFFFFF, 0x20000000, 0x20000001,
		0x3FFFFFFF, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFE, 0xFFFFFFFF,
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		ids = append(ids, rng.Uint32())
	}
	// every bit position on its own
	for b := 0; b < 32; b++ {
		ids = append(ids, uint32(1)<<b)
	}

	for _, raw := range ids {
		for _, flags := range []Flags{0, FlagNull} {
			id := variant.TypeID(raw)
			word, ov, has := Pack(id, flags)
			gotID, gotFlags := Unpack(word, ov)

			if gotID != id {
				t.Fatalf("id %#x flags %#x: unpacked id %#x", raw, flags, gotID)
			}
			wantFlags := flags
			if Overflows(id) {
				wantFlags |= FlagOverflow
			}
			if gotFlags != wantFlags {
				t.Fatalf("id %#x: flags = %#x, want %#x", raw, gotFlags, wantFlags)
			}
			if has != Overflows(id) {
				t.Fatalf("id %#x: hasOverflow = %v", raw, has)
			}
		}
	}
}

func TestUnpack_IgnoresTrailingByteWithoutOverflow(t *testing.T) {
	id, flags := Unpack(0x00000017, 0xAB)
	if id != 23 {
		t.Errorf("id = %d, want 23", id)
	}
	if flags != 0 {
		t.Errorf("flags = %#x, want 0", flags)
	}
}

func TestUnpack_Version(t *testing.T) {
	_, flags := Unpack(uint32(FlagVersion)|23, 0)
	if !flags.Has(FlagVersion) {
		t.Error("version bit lost")
	}
}
