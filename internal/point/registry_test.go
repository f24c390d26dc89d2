// internal/point/registry_test.go
package point

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/modbus-pointbridge/internal/config"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		typ  RegisterType
		addr uint16
	}{
		{"c1", Coil, 1},
		{"r40001", HoldingRegister, 40001},
		{"i7", InputRegister, 7},
		{"R10", HoldingRegister, 10},
		{"12", HoldingRegister, 12},
	}

	for _, tc := range cases {
		typ, addr, err := ParseAddress(tc.in)
		if err != nil {
			t.Fatalf("ParseAddress(%q) err=%v", tc.in, err)
		}
		if typ != tc.typ || addr != tc.addr {
			t.Fatalf("ParseAddress(%q): got=%s%d want=%s%d", tc.in, typ.Letter(), addr, tc.typ.Letter(), tc.addr)
		}
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, in := range []string{"", "c0", "x5", "r", "r70000", "c-1"} {
		if _, _, err := ParseAddress(in); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("ParseAddress(%q): expected ErrConfiguration, got %v", in, err)
		}
	}
}

func TestBuild_SkipsInvalidPoints(t *testing.T) {
	defs := []cfg.PointConfig{
		{Name: "pump_on", Address: "c1"},
		{Name: "bad_addr", Address: "q4"},
		{Name: "pump_on", Address: "c2"}, // duplicate
		{Name: "bad_format", Address: "r3", Format: "double"},
		{Name: "coil_float", Address: "c4", Format: "float"},
		{Name: "short_float", Address: "r5", Format: "float", Length: 1},
		{Name: "temp", Address: "i20", Format: "float"},
	}

	reg, errs := Build(defs, quietLogger())

	if reg.Len() != 2 {
		t.Fatalf("expected 2 usable points, got %d", reg.Len())
	}
	if len(errs) != 5 {
		t.Fatalf("expected 5 configuration errors, got %d: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
	}

	p, ok := reg.Lookup("pump_on")
	if !ok || p.Address != 1 || p.Format != FormatBool {
		t.Fatalf("pump_on not registered as coil bool: %+v", p)
	}

	temp, ok := reg.Lookup("temp")
	if !ok {
		t.Fatalf("temp missing")
	}
	if temp.Length != 2 {
		t.Fatalf("float default length: got=%d want=2", temp.Length)
	}
	if !temp.ReadOnly {
		t.Fatalf("input register must be read-only")
	}
}

func TestBuild_RejectsDuplicateLabels(t *testing.T) {
	defs := []cfg.PointConfig{
		{Name: "mode", Address: "r1", Map: map[int64]string{0: "off", 2: "off"}},
		{Name: "state", Address: "r2", Map: map[int64]string{0: "off", 1: "on"}},
	}

	reg, errs := Build(defs, quietLogger())

	if len(errs) != 1 || !errors.Is(errs[0], ErrConfiguration) {
		t.Fatalf("expected one configuration error, got %v", errs)
	}
	if _, ok := reg.Lookup("mode"); ok {
		t.Fatalf("point with ambiguous labels should be skipped")
	}
	if _, ok := reg.Lookup("state"); !ok {
		t.Fatalf("state missing")
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	defs := []cfg.PointConfig{
		{Name: "b", Address: "r2"},
		{Name: "a", Address: "r1"},
	}
	reg, _ := Build(defs, quietLogger())

	pts := reg.Points()
	if pts[0].Name != "b" || pts[1].Name != "a" {
		t.Fatalf("order not preserved: %v", pts)
	}
}
