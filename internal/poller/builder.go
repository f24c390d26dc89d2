// internal/poller/builder.go
package poller

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/modbus-pointbridge/internal/config"
	"github.com/tamzrod/modbus-pointbridge/internal/point"
	pmodbus "github.com/tamzrod/modbus-pointbridge/internal/poller/modbus"
)

// Build constructs a Session and its Dispatcher and wires the Modbus
// client lifecycle. No connection is made here: the session dials on Run
// and uses the factory again after every reset.
func Build(c *cfg.Config, reg *point.Registry, changes ChangeSink, statusSink StatusSink, log logrus.FieldLogger) (*Session, *Dispatcher, error) {
	if reg.Len() == 0 {
		return nil, nil, errors.New("poller: no usable points")
	}

	mode, err := ParseMode(c.Poll.Mode)
	if err != nil {
		return nil, nil, err
	}

	plan, err := Resolve(reg.Points(), mode)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range plan.Ranges {
		log.WithField("range", r.String()).Info("poll range")
	}

	// client factory: ONE attempt per call
	endpoint := c.Source.Endpoint()
	dial := func() (Client, error) {
		mc, err := pmodbus.New(pmodbus.Config{
			Endpoint: endpoint,
			UnitID:   c.Source.UnitID,
			Timeout:  time.Duration(c.Source.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	}

	sessLog := log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"unit":     c.Source.UnitID,
	})

	d := NewDispatcher(reg, plan, changes, sessLog)
	sched := NewScheduler(plan, d, sessLog)

	s, err := NewSession(
		Config{Interval: time.Duration(c.Poll.IntervalMs) * time.Millisecond},
		dial,
		sched,
		statusSink,
		sessLog,
	)
	if err != nil {
		return nil, nil, err
	}
	return s, d, nil
}
