// internal/poller/resolver.go
package poller

import (
	"fmt"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
)

// Mode selects how ranges are derived from points.
type Mode uint8

const (
	// ModeAggregate reads one range per register type.
	ModeAggregate Mode = iota
	// ModePerPoint reads one range per point.
	ModePerPoint
)

// ParseMode maps the config poll mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "aggregate":
		return ModeAggregate, nil
	case "per_point":
		return ModePerPoint, nil
	default:
		return 0, fmt.Errorf("poller: unknown mode %q", s)
	}
}

// Protocol limits per request.
const (
	MaxCoilsPerRead     = 2000
	MaxRegistersPerRead = 125
)

// Plan is the resolved read geometry for one configuration.
type Plan struct {
	Ranges []Range
	owner  map[string]Range
}

// RangeFor returns the range holding p's words.
func (pl Plan) RangeFor(name string) (Range, bool) {
	r, ok := pl.owner[name]
	return r, ok
}

// Resolve computes the ranges to read each cycle.
// Pure function of the point set; no I/O.
func Resolve(points []point.Point, mode Mode) (Plan, error) {
	plan := Plan{owner: make(map[string]Range, len(points))}

	switch mode {
	case ModePerPoint:
		for _, p := range points {
			r := Range{Type: p.Type, Start: p.Address, Count: p.Length}
			if err := checkQuantity(r); err != nil {
				return Plan{}, err
			}
			plan.Ranges = append(plan.Ranges, r)
			plan.owner[p.Name] = r
		}

	case ModeAggregate:
		type bounds struct {
			min, max uint16
			seen     bool
		}
		spans := make(map[point.RegisterType]*bounds)

		for _, p := range points {
			b := spans[p.Type]
			if b == nil {
				b = &bounds{}
				spans[p.Type] = b
			}
			if !b.seen || p.Address < b.min {
				b.min = p.Address
			}
			if !b.seen || p.Last() > b.max {
				b.max = p.Last()
			}
			b.seen = true
		}

		// Fixed type order keeps the queue deterministic.
		byType := make(map[point.RegisterType]Range)
		for _, t := range point.Types {
			b := spans[t]
			if b == nil {
				continue
			}
			r := Range{Type: t, Start: b.min, Count: b.max - b.min + 1}
			if err := checkQuantity(r); err != nil {
				return Plan{}, fmt.Errorf("%w (try per_point mode)", err)
			}
			plan.Ranges = append(plan.Ranges, r)
			byType[t] = r
		}
		for _, p := range points {
			plan.owner[p.Name] = byType[p.Type]
		}

	default:
		return Plan{}, fmt.Errorf("poller: unsupported mode %d", mode)
	}

	return plan, nil
}

func checkQuantity(r Range) error {
	limit := uint16(MaxRegistersPerRead)
	if r.Type == point.Coil {
		limit = MaxCoilsPerRead
	}
	if r.Count < 1 || r.Count > limit {
		return fmt.Errorf("poller: range %s count %d outside 1..%d", r, r.Count, limit)
	}
	return nil
}
