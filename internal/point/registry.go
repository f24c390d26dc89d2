// internal/point/registry.go
package point

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/modbus-pointbridge/internal/config"
)

// Registry is the ordered, immutable set of configured points.
type Registry struct {
	points []Point
	byName map[string]int
}

// Build converts point configs into a Registry.
// Invalid definitions are logged and skipped; the returned slice holds
// every ConfigurationError encountered.
func Build(defs []cfg.PointConfig, log logrus.FieldLogger) (*Registry, []error) {
	r := &Registry{byName: make(map[string]int, len(defs))}
	var errs []error

	for i, d := range defs {
		p, err := fromConfig(d)
		if err == nil {
			if _, dup := r.byName[p.Name]; dup {
				err = fmt.Errorf("%w: duplicate point name %q", ErrConfiguration, p.Name)
			}
		}
		if err != nil {
			log.WithFields(logrus.Fields{
				"index":   i,
				"name":    d.Name,
				"address": d.Address,
			}).WithError(err).Warn("skipping point")
			errs = append(errs, err)
			continue
		}

		r.byName[p.Name] = len(r.points)
		r.points = append(r.points, p)
	}

	return r, errs
}

// NewRegistry builds a registry from already-constructed points.
func NewRegistry(points ...Point) *Registry {
	r := &Registry{byName: make(map[string]int, len(points))}
	for _, p := range points {
		r.byName[p.Name] = len(r.points)
		r.points = append(r.points, p)
	}
	return r
}

// Points returns the points in configuration order.
func (r *Registry) Points() []Point {
	return r.points
}

// Lookup finds a point by name.
func (r *Registry) Lookup(name string) (Point, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Point{}, false
	}
	return r.points[i], true
}

// Len is the number of usable points.
func (r *Registry) Len() int { return len(r.points) }

func fromConfig(d cfg.PointConfig) (Point, error) {
	if d.Name == "" {
		return Point{}, fmt.Errorf("%w: point name required", ErrConfiguration)
	}

	typ, addr, err := ParseAddress(d.Address)
	if err != nil {
		return Point{}, err
	}

	format, err := ParseFormat(d.Format)
	if err != nil {
		return Point{}, err
	}
	if typ == Coil {
		if d.Format != "" && format != FormatBool {
			return Point{}, fmt.Errorf("%w: coil %q cannot be %s", ErrConfiguration, d.Name, format)
		}
		format = FormatBool
	}

	length := d.Length
	if length == 0 {
		length = format.Words()
	}
	if length < format.Words() {
		return Point{}, fmt.Errorf("%w: %s needs %d registers, length is %d", ErrConfiguration, format, format.Words(), length)
	}
	if uint32(addr)+uint32(length)-1 > math.MaxUint16 {
		return Point{}, fmt.Errorf("%w: %s%d+%d exceeds address space", ErrConfiguration, typ.Letter(), addr, length)
	}

	if d.Scale < 0 || math.IsNaN(d.Scale) || math.IsInf(d.Scale, 0) {
		return Point{}, fmt.Errorf("%w: invalid scale %v", ErrConfiguration, d.Scale)
	}

	seen := make(map[string]int64, len(d.Map))
	for raw, label := range d.Map {
		if other, dup := seen[label]; dup {
			return Point{}, fmt.Errorf("%w: label %q mapped from both %d and %d", ErrConfiguration, label, min(raw, other), max(raw, other))
		}
		seen[label] = raw
	}

	return Point{
		Name:     d.Name,
		Type:     typ,
		Address:  addr,
		Length:   length,
		Format:   format,
		Scale:    d.Scale,
		Mask:     d.Mask,
		Labels:   d.Map,
		ReadOnly: d.ReadOnly || typ == InputRegister,
		Log:      d.Log,
	}, nil
}
