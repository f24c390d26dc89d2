// internal/poller/poller_test.go
package poller

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/status"
)

// ---- shared fakes ----

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type readCall struct {
	fc   uint8
	addr uint16
	qty  uint16
}

type writeCall struct {
	fc    uint8
	addr  uint16
	value uint16
}

// fakeClient serves reads from per-table memory keyed by wire address.
type fakeClient struct {
	mu       sync.Mutex
	coils    map[uint16]bool
	holding  map[uint16]uint16
	input    map[uint16]uint16
	failRead bool
	reads    []readCall
	writes   []writeCall
	closed   bool
	wrote    chan writeCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		coils:   map[uint16]bool{},
		holding: map[uint16]uint16{},
		input:   map[uint16]uint16{},
		wrote:   make(chan writeCall, 16),
	}
}

func (f *fakeClient) ReadCoils(addr, qty uint16) ([]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, readCall{1, addr, qty})
	if f.failRead {
		return nil, errors.New("fail fc1")
	}
	out := make([]bool, qty)
	for i := range out {
		out[i] = f.coils[addr+uint16(i)]
	}
	return out, nil
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, readCall{3, addr, qty})
	if f.failRead {
		return nil, errors.New("fail fc3")
	}
	return regs(f.holding, addr, qty), nil
}

func (f *fakeClient) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, readCall{4, addr, qty})
	if f.failRead {
		return nil, errors.New("fail fc4")
	}
	return regs(f.input, addr, qty), nil
}

func (f *fakeClient) WriteSingleCoil(addr uint16, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coils[addr] = on
	var v uint16
	if on {
		v = 1
	}
	w := writeCall{5, addr, v}
	f.writes = append(f.writes, w)
	f.notify(w)
	return nil
}

func (f *fakeClient) WriteSingleRegister(addr, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holding[addr] = value
	w := writeCall{6, addr, value}
	f.writes = append(f.writes, w)
	f.notify(w)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) notify(w writeCall) {
	select {
	case f.wrote <- w:
	default:
	}
}

func (f *fakeClient) readCalls() []readCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]readCall(nil), f.reads...)
}

func (f *fakeClient) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func regs(mem map[uint16]uint16, addr, qty uint16) []uint16 {
	out := make([]uint16, qty)
	for i := range out {
		out[i] = mem[addr+uint16(i)]
	}
	return out
}

// update is one subscriber notification.
type update struct {
	name string
	v    point.Value
}

// recorder collects notifications on a channel.
type recorder struct {
	ch chan update
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan update, 64)}
}

func (r *recorder) PointChanged(name string, v point.Value) {
	select {
	case r.ch <- update{name, v}:
	default:
	}
}

// drain returns everything received so far.
func (r *recorder) drain() []update {
	var out []update
	for {
		select {
		case u := <-r.ch:
			out = append(out, u)
		default:
			return out
		}
	}
}

// waitFor collects updates until every name in want has been seen.
func (r *recorder) waitFor(timeout time.Duration, want ...string) (map[string]point.Value, bool) {
	got := map[string]point.Value{}
	deadline := time.After(timeout)
	for {
		missing := false
		for _, n := range want {
			if _, ok := got[n]; !ok {
				missing = true
			}
		}
		if !missing {
			return got, true
		}
		select {
		case u := <-r.ch:
			got[u.name] = u.v
		case <-deadline:
			return got, false
		}
	}
}

type fakeSink struct {
	records []update
}

func (f *fakeSink) Record(_ time.Time, name string, v point.Value) error {
	f.records = append(f.records, update{name, v})
	return nil
}

type statusRecorder struct {
	mu    sync.Mutex
	snaps []status.Snapshot
}

func (s *statusRecorder) StatusChanged(snap status.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *statusRecorder) last() (status.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snaps) == 0 {
		return status.Snapshot{}, false
	}
	return s.snaps[len(s.snaps)-1], true
}

func (s *statusRecorder) sawHealth(h uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.snaps {
		if snap.Health == h {
			return true
		}
	}
	return false
}

// pumpPoints is the two-point scenario used across tests:
// pump_on = c1, pump_speed = r10 scale 10.
func pumpPoints() *point.Registry {
	return point.NewRegistry(
		point.Point{Name: "pump_on", Type: point.Coil, Address: 1, Length: 1, Format: point.FormatBool},
		point.Point{Name: "pump_speed", Type: point.HoldingRegister, Address: 10, Length: 1, Scale: 10},
	)
}
