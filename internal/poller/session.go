// internal/poller/session.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/status"
)

// ReconnectDelay is the fixed wait between connection attempts.
const ReconnectDelay = 5 * time.Second

// MaxOfflineWrites bounds the writes held while disconnected.
const MaxOfflineWrites = 32

// Client abstracts the Modbus operations the session needs.
// Addresses are 0-based wire addresses.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
	WriteSingleCoil(addr uint16, on bool) error              // FC 5
	WriteSingleRegister(addr, value uint16) error            // FC 6
	Close() error
}

// Dialer opens a new connection. ONE attempt per call.
type Dialer func() (Client, error)

// StatusSink receives session health changes.
type StatusSink interface {
	StatusChanged(s status.Snapshot)
}

// Config is the runtime config the session needs.
type Config struct {
	Interval       time.Duration
	ReconnectDelay time.Duration // zero means ReconnectDelay
}

type submitRequest struct {
	cmd   Command
	reply chan error
}

type connectResult struct {
	client Client
	err    error
}

// Session owns the connection lifecycle and drives the scheduler.
//
// All scheduler state is touched only by the Run goroutine. I/O runs
// on a helper goroutine and reports back through results; Submit is
// the only entry point for other goroutines.
type Session struct {
	cfg    Config
	dial   Dialer
	sched  *Scheduler
	log    logrus.FieldLogger
	status StatusSink
	now    func() time.Time

	submit    chan submitRequest
	connected chan connectResult
	results   chan Result
	done      chan struct{}

	// loop-owned
	client     Client
	ticker     *time.Ticker
	retry      *time.Timer
	polled     bool
	connecting bool
	snap       status.Snapshot
}

// NewSession wires a session. statusSink may be nil.
func NewSession(cfg Config, dial Dialer, sched *Scheduler, statusSink StatusSink, log logrus.FieldLogger) (*Session, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if dial == nil {
		return nil, errors.New("poller: dialer required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = ReconnectDelay
	}
	return &Session{
		cfg:       cfg,
		dial:      dial,
		sched:     sched,
		log:       log,
		status:    statusSink,
		now:       time.Now,
		submit:    make(chan submitRequest),
		connected: make(chan connectResult, 1),
		results:   make(chan Result, 1),
		done:      make(chan struct{}),
		snap:      status.Snapshot{Health: status.HealthUnknown},
	}, nil
}

// Submit hands cmd to the session loop.
// Blocks until the loop accepts or rejects it, ctx is done, or the
// session exits. Writes beyond MaxOfflineWrites while disconnected
// fail with ErrQueueFull.
func (s *Session) Submit(ctx context.Context, cmd Command) error {
	req := submitRequest{cmd: cmd, reply: make(chan error, 1)}
	select {
	case s.submit <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	return <-req.reply
}

// Run connects and polls until ctx is cancelled.
// Every failure funnels into reset and reconnect; Run never gives up.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.shutdown()

	s.startDial(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case cr := <-s.connected:
			s.connecting = false
			if cr.err != nil {
				s.log.WithError(fmt.Errorf("%w: %v", ErrConnection, cr.err)).Warn("connect failed")
				s.setStatus(status.HealthError, cr.err)
				s.scheduleReconnect()
				continue
			}
			s.onConnect(ctx, cr.client)

		case <-s.retryC():
			s.retry = nil
			s.startDial(ctx)

		case <-s.tickC():
			s.onTick(ctx)

		case res := <-s.results:
			if err := s.sched.Complete(res); err != nil {
				s.log.WithError(err).Error("modbus transaction failed")
				s.reset(err)
				continue
			}
			s.pump(ctx)

		case req := <-s.submit:
			req.reply <- s.accept(ctx, req.cmd)
		}
	}
}

func (s *Session) accept(ctx context.Context, cmd Command) error {
	if s.client == nil && cmd.Kind == CommandWrite && s.sched.Pending() >= MaxOfflineWrites {
		s.log.WithField("cmd", cmd.String()).Warn("dropping write while disconnected")
		return ErrQueueFull
	}
	s.sched.Enqueue(cmd, s.now())
	s.pump(ctx)
	return nil
}

func (s *Session) startDial(ctx context.Context) {
	if s.connecting || s.client != nil {
		return
	}
	s.connecting = true
	s.log.Info("connecting")

	go func() {
		c, err := s.dial()
		select {
		case s.connected <- connectResult{client: c, err: err}:
		case <-ctx.Done():
			if c != nil {
				_ = c.Close()
			}
		}
	}()
}

func (s *Session) onConnect(ctx context.Context, c Client) {
	s.client = c
	s.log.Info("connected")
	s.setStatus(status.HealthOK, nil)

	s.stopTicker()
	s.ticker = time.NewTicker(s.cfg.Interval)

	if !s.polled {
		s.polled = true
		s.onTick(ctx)
		return
	}
	// writes queued while disconnected
	s.pump(ctx)
}

func (s *Session) onTick(ctx context.Context) {
	switch s.sched.Tick(s.now()) {
	case TickStalled:
		s.reset(ErrStalled)
		return
	case TickBusy:
		return
	}
	s.snap.Cycles++
	s.pump(ctx)
}

// pump starts the next I/O command if idle and connected.
func (s *Session) pump(ctx context.Context) {
	if s.client == nil {
		return
	}
	cmd, ok := s.sched.Next(s.now())
	if !ok {
		return
	}

	c := s.client
	go func() {
		res := execute(c, cmd)
		select {
		case s.results <- res:
		case <-ctx.Done():
		}
	}()
}

// reset stops polling, drops all work, closes the socket and
// schedules a reconnect.
func (s *Session) reset(cause error) {
	s.sched.Reset()
	s.stopTicker()

	if s.client != nil {
		// Close may wait for an in-flight request to time out.
		c := s.client
		go func() { _ = c.Close() }()
		s.client = nil
	}

	s.snap.Resets++
	health := status.HealthError
	if errors.Is(cause, ErrStalled) {
		health = status.HealthStale
	}
	s.setStatus(health, cause)

	s.log.WithField("delay", s.cfg.ReconnectDelay.String()).Warn("connection lost, reconnecting")
	s.scheduleReconnect()
}

func (s *Session) scheduleReconnect() {
	if s.retry != nil {
		s.retry.Stop()
	}
	s.retry = time.NewTimer(s.cfg.ReconnectDelay)
}

func (s *Session) shutdown() {
	s.stopTicker()
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
	select {
	case cr := <-s.connected:
		if cr.client != nil {
			_ = cr.client.Close()
		}
	default:
	}
	s.sched.Reset()
	s.log.Info("session stopped")
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// nil channels block forever in select
func (s *Session) tickC() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

func (s *Session) retryC() <-chan time.Time {
	if s.retry == nil {
		return nil
	}
	return s.retry.C
}

func (s *Session) setStatus(h uint16, err error) {
	s.snap.Health = h
	s.snap.Connected = s.client != nil
	s.snap.At = s.now()
	if err != nil {
		s.snap.LastError = err.Error()
	} else {
		s.snap.LastError = ""
	}
	if s.status != nil {
		s.status.StatusChanged(s.snap)
	}
}

// execute runs one command against c. Converts 1-based point
// addresses to 0-based wire addresses.
func execute(c Client, cmd Command) Result {
	switch cmd.Kind {
	case CommandRead:
		words, err := readRange(c, cmd.Range)
		return resultFor(cmd, words, err)

	case CommandWrite:
		return resultFor(cmd, nil, writePoint(c, cmd))

	default:
		return resultFor(cmd, nil, fmt.Errorf("poller: cannot execute %s", cmd.Kind))
	}
}

func readRange(c Client, r Range) ([]uint16, error) {
	wire := r.Start - 1

	switch r.Type {
	case point.Coil:
		bits, err := c.ReadCoils(wire, r.Count)
		if err != nil {
			return nil, err
		}
		words := make([]uint16, len(bits))
		for i, b := range bits {
			if b {
				words[i] = 1
			}
		}
		return words, nil

	case point.HoldingRegister:
		return c.ReadHoldingRegisters(wire, r.Count)

	case point.InputRegister:
		return c.ReadInputRegisters(wire, r.Count)

	default:
		return nil, fmt.Errorf("poller: unsupported register type %s", r.Type)
	}
}

func writePoint(c Client, cmd Command) error {
	if len(cmd.Values) == 0 {
		return errors.New("poller: write without values")
	}
	wire := cmd.Address - 1

	switch cmd.Type {
	case point.Coil:
		return c.WriteSingleCoil(wire, cmd.Values[0] != 0)

	case point.HoldingRegister:
		// multi-word values go out one register at a time (FC 6)
		for i, v := range cmd.Values {
			if err := c.WriteSingleRegister(wire+uint16(i), v); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("poller: %s is read-only", cmd.Type)
	}
}
