// internal/point/point.go
package point

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrConfiguration marks a point definition that cannot be used.
	ErrConfiguration = errors.New("point: configuration error")

	// ErrDataNotReady means the cache does not yet hold enough words
	// to decode a point. Not user-visible; the point is skipped.
	ErrDataNotReady = errors.New("point: data not ready")
)

// RegisterType is the Modbus data table a point lives in.
type RegisterType uint8

const (
	Coil RegisterType = iota + 1
	HoldingRegister
	InputRegister
)

// Types lists every register type in resolve order.
var Types = []RegisterType{Coil, HoldingRegister, InputRegister}

func (t RegisterType) String() string {
	switch t {
	case Coil:
		return "coil"
	case HoldingRegister:
		return "holding"
	case InputRegister:
		return "input"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Letter returns the config prefix for t.
func (t RegisterType) Letter() string {
	switch t {
	case Coil:
		return "c"
	case HoldingRegister:
		return "r"
	case InputRegister:
		return "i"
	default:
		return "?"
	}
}

// Format is the value shape a point decodes to.
type Format uint8

const (
	FormatInt Format = iota
	FormatBool
	FormatFloat32
	FormatUint32
)

// Words is the minimum register count the format needs.
func (f Format) Words() uint16 {
	switch f {
	case FormatFloat32, FormatUint32:
		return 2
	default:
		return 1
	}
}

func (f Format) String() string {
	switch f {
	case FormatInt:
		return "int"
	case FormatBool:
		return "bool"
	case FormatFloat32:
		return "float"
	case FormatUint32:
		return "uint32"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat maps a config format name. Empty means int,
// except for coils which are always bool.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "int":
		return FormatInt, nil
	case "bool":
		return FormatBool, nil
	case "float", "float32":
		return FormatFloat32, nil
	case "uint32":
		return FormatUint32, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrConfiguration, s)
	}
}

// ParseAddress parses "<letter><1-based address>", e.g. "c1", "r40001", "i7".
// A bare number is a holding register.
func ParseAddress(s string) (RegisterType, uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty address", ErrConfiguration)
	}

	t := HoldingRegister
	digits := s
	switch s[0] {
	case 'c', 'C':
		t, digits = Coil, s[1:]
	case 'r', 'R':
		t, digits = HoldingRegister, s[1:]
	case 'i', 'I':
		t, digits = InputRegister, s[1:]
	}

	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid address %q", ErrConfiguration, s)
	}
	if n < 1 {
		return 0, 0, fmt.Errorf("%w: address %q must be >= 1", ErrConfiguration, s)
	}
	return t, uint16(n), nil
}

// Point is one named value exposed by the device.
// Immutable after Build.
type Point struct {
	Name    string
	Type    RegisterType
	Address uint16 // 1-based
	Length  uint16
	Format  Format

	Scale    float64          // 0 = none
	Mask     uint32           // 0 = none
	Labels   map[int64]string // raw -> label
	ReadOnly bool
	Log      bool
}

// Last is the last address the point occupies (inclusive).
func (p Point) Last() uint16 {
	return p.Address + p.Length - 1
}

func (p Point) String() string {
	return fmt.Sprintf("%s(%s%d)", p.Name, p.Type.Letter(), p.Address)
}
