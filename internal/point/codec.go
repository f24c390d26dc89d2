// internal/point/codec.go
package point

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a decoded point value: bool, float64 or string (mapped label).
type Value any

// Decode turns raw words into the point's logical value.
//
// Order: shape decode, mask, scale (divide), label map.
// For bool the mask selects bits before the nonzero test.
func Decode(p Point, words []uint16) (Value, error) {
	if len(words) < int(p.Format.Words()) {
		return nil, ErrDataNotReady
	}

	var n float64

	switch p.Format {
	case FormatBool:
		raw := uint32(words[0])
		if p.Mask != 0 {
			raw &= p.Mask
		}
		return raw != 0, nil

	case FormatFloat32:
		n = float64(math.Float32frombits(joinWords(words[0], words[1])))

	case FormatUint32:
		u := joinWords(words[0], words[1])
		if p.Mask != 0 {
			u &= p.Mask
		}
		n = float64(u)

	default:
		u := uint32(words[0])
		if p.Mask != 0 {
			u &= p.Mask
		}
		n = float64(u)
	}

	if p.Scale != 0 {
		n /= p.Scale
	}

	if len(p.Labels) > 0 && n == math.Trunc(n) {
		if label, ok := p.Labels[int64(n)]; ok {
			return label, nil
		}
	}

	return n, nil
}

// Encode turns a logical value into the raw words to write.
//
// Order: bool -> 0/1, reverse label lookup, mask, scale (multiply), round.
// A bool point with a mask writes the mask itself for true.
// 32-bit formats return two words, low word first.
func Encode(p Point, v Value) ([]uint16, error) {
	n, err := toNumber(p, v)
	if err != nil {
		return nil, err
	}

	if p.Mask != 0 && p.Format != FormatFloat32 && p.Format != FormatBool {
		n = float64(uint32(int64(math.Round(n))) & p.Mask)
	}
	if p.Scale != 0 {
		n *= p.Scale
	}

	switch p.Format {
	case FormatBool:
		// a masked bool sets exactly the masked bits
		if n != 0 && p.Mask != 0 {
			return []uint16{uint16(p.Mask)}, nil
		}
		if n != 0 {
			return []uint16{1}, nil
		}
		return []uint16{0}, nil

	case FormatFloat32:
		lo, hi := splitWords(math.Float32bits(float32(n)))
		return []uint16{lo, hi}, nil

	case FormatUint32:
		r := math.Round(n)
		if r < 0 || r > math.MaxUint32 {
			return nil, fmt.Errorf("point %s: value %v out of uint32 range", p.Name, n)
		}
		lo, hi := splitWords(uint32(r))
		return []uint16{lo, hi}, nil

	default:
		// registers decode unsigned, so negatives would not read back
		r := math.Round(n)
		if r < 0 || r > math.MaxUint16 {
			return nil, fmt.Errorf("point %s: value %v out of register range", p.Name, n)
		}
		return []uint16{uint16(r)}, nil
	}
}

func toNumber(p Point, v Value) (float64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		if raw, ok := rawForLabel(p, x); ok {
			return float64(raw), nil
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("point %s: no label or number %q", p.Name, x)
		}
		return f, nil
	case float64:
		return labelKey(p, x), nil
	case float32:
		return labelKey(p, float64(x)), nil
	case int:
		return labelKey(p, float64(x)), nil
	case int64:
		return labelKey(p, float64(x)), nil
	case uint16:
		return labelKey(p, float64(x)), nil
	case uint32:
		return labelKey(p, float64(x)), nil
	default:
		return 0, fmt.Errorf("point %s: unsupported value type %T", p.Name, v)
	}
}

// labelKey resolves a numeric value through the label map when the label
// itself is numeric, defaulting to the value unchanged.
func labelKey(p Point, f float64) float64 {
	if len(p.Labels) == 0 {
		return f
	}
	if raw, ok := rawForLabel(p, strconv.FormatFloat(f, 'f', -1, 64)); ok {
		return float64(raw)
	}
	return f
}

// rawForLabel returns the smallest raw key mapped to label.
func rawForLabel(p Point, label string) (int64, bool) {
	var best int64
	found := false
	for raw, l := range p.Labels {
		if l == label && (!found || raw < best) {
			best, found = raw, true
		}
	}
	return best, found
}

// joinWords reassembles two registers into a little-endian 32-bit word:
// bytes [lo.lo, lo.hi, hi.lo, hi.hi].
func joinWords(lo, hi uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}

func splitWords(u uint32) (lo, hi uint16) {
	return uint16(u), uint16(u >> 16)
}
