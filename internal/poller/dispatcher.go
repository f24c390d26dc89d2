// internal/poller/dispatcher.go
package poller

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
)

// DebounceWindow suppresses read-derived updates after a local write.
const DebounceWindow = 1000 * time.Millisecond

// Subscriber receives decoded point changes.
// Called from the session loop; implementations must not block.
type Subscriber interface {
	PointChanged(name string, v point.Value)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(name string, v point.Value)

func (f SubscriberFunc) PointChanged(name string, v point.Value) { f(name, v) }

// ChangeSink records changes of points flagged for logging.
type ChangeSink interface {
	Record(at time.Time, name string, v point.Value) error
}

type pointState struct {
	last      point.Value
	hasLast   bool
	lastWrite time.Time
}

// Dispatcher fans decoded values out to subscribers at each barrier.
type Dispatcher struct {
	reg   *point.Registry
	plan  Plan
	subs  []Subscriber
	sink  ChangeSink
	log   logrus.FieldLogger
	state map[string]*pointState
	first bool
}

// NewDispatcher creates a dispatcher. sink may be nil.
func NewDispatcher(reg *point.Registry, plan Plan, sink ChangeSink, log logrus.FieldLogger) *Dispatcher {
	d := &Dispatcher{
		reg:   reg,
		plan:  plan,
		sink:  sink,
		log:   log,
		state: make(map[string]*pointState, reg.Len()),
		first: true,
	}
	for _, p := range reg.Points() {
		d.state[p.Name] = &pointState{}
	}
	return d
}

// Subscribe registers s. Must be called before the session runs.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.subs = append(d.subs, s)
}

// MarkWritten starts the debounce window for name.
func (d *Dispatcher) MarkWritten(name string, at time.Time) {
	if st, ok := d.state[name]; ok {
		st.lastWrite = at
	}
}

// Dispatch decodes every point from the cache and notifies subscribers
// of changed values. Returns the number of points dispatched.
func (d *Dispatcher) Dispatch(c *Cache, now time.Time) int {
	sent := 0

	for _, p := range d.reg.Points() {
		st := d.state[p.Name]

		r, ok := d.plan.RangeFor(p.Name)
		if !ok {
			continue
		}
		words, ok := c.Words(r, p.Address, p.Length)
		if !ok {
			continue
		}

		v, err := point.Decode(p, words)
		if err != nil {
			// data not ready: skip silently this cycle
			continue
		}

		if !d.first {
			if now.Sub(st.lastWrite) < DebounceWindow {
				continue
			}
			if st.hasLast && st.last == v {
				continue
			}
		}

		d.log.WithFields(logrus.Fields{
			"point": p.Name,
			"from":  st.last,
			"to":    v,
		}).Debug("point changed")

		st.last = v
		st.hasLast = true
		sent++

		for _, s := range d.subs {
			s.PointChanged(p.Name, v)
		}

		if p.Log && d.sink != nil {
			if err := d.sink.Record(now, p.Name, v); err != nil {
				d.log.WithField("point", p.Name).WithError(err).Error("change log write failed")
			}
		}
	}

	d.first = false
	return sent
}

// Last returns the last dispatched value of name.
func (d *Dispatcher) Last(name string) (point.Value, bool) {
	st, ok := d.state[name]
	if !ok || !st.hasLast {
		return nil, false
	}
	return st.last, true
}
