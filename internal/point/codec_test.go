// internal/point/codec_test.go
package point

import (
	"errors"
	"testing"
)

func TestDecode_Bool(t *testing.T) {
	p := Point{Name: "pump_on", Type: Coil, Address: 1, Length: 1, Format: FormatBool}

	v, err := Decode(p, []uint16{1})
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if v != true {
		t.Fatalf("got=%v want=true", v)
	}

	v, _ = Decode(p, []uint16{0})
	if v != false {
		t.Fatalf("got=%v want=false", v)
	}
}

func TestDecode_BoolMaskSelectsBit(t *testing.T) {
	p := Point{Name: "alarm", Type: HoldingRegister, Address: 3, Length: 1, Format: FormatBool, Mask: 0x04}

	if v, _ := Decode(p, []uint16{0x03}); v != false {
		t.Fatalf("bit 2 clear: got=%v want=false", v)
	}
	if v, _ := Decode(p, []uint16{0x07}); v != true {
		t.Fatalf("bit 2 set: got=%v want=true", v)
	}
}

func TestDecode_ScaleDivides(t *testing.T) {
	p := Point{Name: "pump_speed", Type: HoldingRegister, Address: 10, Length: 1, Scale: 10}

	v, err := Decode(p, []uint16{500})
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if v != 50.0 {
		t.Fatalf("got=%v want=50", v)
	}
}

func TestDecode_Float32LowWordFirst(t *testing.T) {
	p := Point{Name: "temp", Type: HoldingRegister, Address: 20, Length: 2, Format: FormatFloat32}

	v, err := Decode(p, []uint16{0x0000, 0x4048})
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if v != 3.125 {
		t.Fatalf("got=%v want=3.125", v)
	}
}

func TestDecode_Uint32(t *testing.T) {
	p := Point{Name: "energy", Type: InputRegister, Address: 30, Length: 2, Format: FormatUint32}

	v, err := Decode(p, []uint16{0x0001, 0x0002})
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if v != float64(0x00020001) {
		t.Fatalf("got=%v want=%d", v, 0x00020001)
	}
}

func TestDecode_NotReady(t *testing.T) {
	p := Point{Name: "temp", Type: HoldingRegister, Address: 20, Length: 2, Format: FormatFloat32}

	if _, err := Decode(p, []uint16{0x4048}); !errors.Is(err, ErrDataNotReady) {
		t.Fatalf("expected ErrDataNotReady, got %v", err)
	}
	if _, err := Decode(Point{Name: "x"}, nil); !errors.Is(err, ErrDataNotReady) {
		t.Fatalf("expected ErrDataNotReady for empty words, got %v", err)
	}
}

func TestDecode_MaskThenMap(t *testing.T) {
	p := Point{
		Name:   "mode",
		Type:   HoldingRegister,
		Length: 1,
		Mask:   0x0F,
		Labels: map[int64]string{1: "heat", 2: "cool"},
	}

	v, _ := Decode(p, []uint16{0xF2})
	if v != "cool" {
		t.Fatalf("got=%v want=cool", v)
	}

	// unmapped raw passes through as a number
	v, _ = Decode(p, []uint16{0x05})
	if v != 5.0 {
		t.Fatalf("got=%v want=5", v)
	}
}

func TestEncode_Coil(t *testing.T) {
	p := Point{Name: "pump_on", Type: Coil, Length: 1, Format: FormatBool}

	w, err := Encode(p, false)
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}
	if len(w) != 1 || w[0] != 0 {
		t.Fatalf("got=%v want=[0]", w)
	}
}

func TestEncode_ReverseMapDefaultsToValue(t *testing.T) {
	p := Point{Name: "mode", Length: 1, Labels: map[int64]string{1: "heat"}}

	w, err := Encode(p, 7.0)
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}
	if w[0] != 7 {
		t.Fatalf("got=%d want=7", w[0])
	}

	if _, err := Encode(p, "defrost"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}

func TestEncode_SharedLabelPicksSmallestRaw(t *testing.T) {
	p := Point{Name: "mode", Length: 1, Labels: map[int64]string{5: "off", 0: "off", 9: "off", 1: "on"}}

	for i := 0; i < 20; i++ {
		w, err := Encode(p, "off")
		if err != nil {
			t.Fatalf("Encode err=%v", err)
		}
		if w[0] != 0 {
			t.Fatalf("run %d: got=%d want=0", i, w[0])
		}
	}
}

func TestEncode_RegisterRange(t *testing.T) {
	p := Point{Name: "offset", Length: 1}

	for _, v := range []Value{-5, -0.6, 65536, 70000} {
		if _, err := Encode(p, v); err == nil {
			t.Fatalf("Encode(%v): expected range error", v)
		}
	}

	w, err := Encode(p, 65535)
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}
	if got, _ := Decode(p, w); got != 65535.0 {
		t.Fatalf("max register: got=%v want=65535", got)
	}
}

// Writing V through the transforms and decoding the raw words yields V.
func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		v    Value
	}{
		{"coil", Point{Format: FormatBool, Length: 1}, true},
		{"masked bool", Point{Format: FormatBool, Length: 1, Mask: 0x10}, true},
		{"plain", Point{Length: 1}, 1234.0},
		{"scale", Point{Length: 1, Scale: 10}, 50.0},
		{"scale fraction", Point{Length: 1, Scale: 0.5}, 8.0},
		{"mask", Point{Length: 1, Mask: 0xFF}, 200.0},
		{"map", Point{Length: 1, Labels: map[int64]string{0: "off", 1: "on"}}, "on"},
		{"map mask scale", Point{Length: 1, Mask: 0x0F, Scale: 2, Labels: map[int64]string{3: "auto"}}, "auto"},
		{"float", Point{Format: FormatFloat32, Length: 2}, 3.125},
		{"float scale", Point{Format: FormatFloat32, Length: 2, Scale: 4}, 1.5},
		{"uint32", Point{Format: FormatUint32, Length: 2}, 131073.0},
		{"uint32 scale", Point{Format: FormatUint32, Length: 2, Scale: 100}, 700.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.p.Name = tc.name
			w, err := Encode(tc.p, tc.v)
			if err != nil {
				t.Fatalf("Encode err=%v", err)
			}
			got, err := Decode(tc.p, w)
			if err != nil {
				t.Fatalf("Decode err=%v", err)
			}
			if got != tc.v {
				t.Fatalf("round trip: got=%v (%T) want=%v (%T)", got, got, tc.v, tc.v)
			}
		})
	}
}
