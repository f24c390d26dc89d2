// internal/poller/scheduler.go
package poller

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// StallThreshold is how long a command may stay in flight.
const StallThreshold = 10 * time.Second

// TickOutcome reports what a poll tick did.
type TickOutcome uint8

const (
	TickQueued  TickOutcome = iota + 1 // a new cycle was enqueued
	TickBusy                           // previous cycle still draining
	TickStalled                        // in-flight command stuck; scheduler reset
)

// Scheduler is the command queue and its drain state machine.
//
// States: idle (inflight == nil) and draining (inflight != nil).
// At most one I/O command is in flight. Barriers run synchronously
// inside Next and never occupy the in-flight slot.
//
// Not safe for concurrent use: the session loop owns it.
type Scheduler struct {
	plan       Plan
	cache      *Cache
	dispatcher *Dispatcher
	log        logrus.FieldLogger

	pending    []Command
	inflight   *Command
	inflightAt time.Time

	seq uint64
	gen uint64
}

func NewScheduler(plan Plan, d *Dispatcher, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		plan:       plan,
		cache:      NewCache(),
		dispatcher: d,
		log:        log,
	}
}

// Tick starts a poll cycle unless one is still in progress.
func (s *Scheduler) Tick(now time.Time) TickOutcome {
	if s.inflight != nil {
		if now.Sub(s.inflightAt) > StallThreshold {
			s.log.WithFields(logrus.Fields{
				"cmd":     s.inflight.String(),
				"elapsed": now.Sub(s.inflightAt).String(),
			}).Error("command queue got stuck")
			s.Reset()
			return TickStalled
		}
		s.log.Warn("polling faster than the device can reply")
		return TickBusy
	}

	for _, r := range s.plan.Ranges {
		s.Enqueue(Read(r), now)
	}
	s.Enqueue(Barrier(), now)
	return TickQueued
}

// Enqueue appends cmd. Writes start the point's debounce window.
func (s *Scheduler) Enqueue(cmd Command, now time.Time) {
	s.seq++
	cmd.id = s.seq
	if cmd.Kind == CommandWrite {
		s.dispatcher.MarkWritten(cmd.Point, now)
	}
	s.pending = append(s.pending, cmd)
}

// Next moves the head of the queue into flight when idle.
// Barriers encountered on the way are dispatched synchronously.
// ok is false when nothing needs I/O right now.
func (s *Scheduler) Next(now time.Time) (Command, bool) {
	if s.inflight != nil {
		return Command{}, false
	}

	for len(s.pending) > 0 {
		cmd := s.pending[0]
		s.pending[0] = Command{}
		s.pending = s.pending[1:]

		if cmd.Kind == CommandBarrier {
			n := s.dispatcher.Dispatch(s.cache, now)
			s.log.WithField("dispatched", n).Debug("cycle complete")
			continue
		}

		cmd.gen = s.gen
		s.inflight = &cmd
		s.inflightAt = now
		return cmd, true
	}

	return Command{}, false
}

// Complete applies the result of the in-flight command.
// Results from a previous generation or another command are ignored.
// A failed command resets the scheduler and returns ErrTransaction.
func (s *Scheduler) Complete(res Result) error {
	if s.inflight == nil || res.gen != s.gen || res.id != s.inflight.id {
		s.log.WithField("id", res.id).Debug("ignoring stale result")
		return nil
	}

	cmd := *s.inflight
	s.inflight = nil

	if res.Err != nil {
		s.Reset()
		return fmt.Errorf("%w: %s: %v", ErrTransaction, cmd, res.Err)
	}

	if cmd.Kind == CommandRead {
		s.cache.Store(cmd.Range.Key(), res.Words)
	}
	return nil
}

// Reset drops all pending and in-flight work and invalidates
// any result still on its way back.
func (s *Scheduler) Reset() {
	s.gen++
	s.pending = nil
	s.inflight = nil
	s.cache.Clear()
}

// Busy reports whether a command is in flight.
func (s *Scheduler) Busy() bool { return s.inflight != nil }

// Pending is the number of queued commands, excluding the in-flight one.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Inflight returns the command currently in flight.
func (s *Scheduler) Inflight() (Command, bool) {
	if s.inflight == nil {
		return Command{}, false
	}
	return *s.inflight, true
}

// resultFor stamps a result with the identity of cmd.
func resultFor(cmd Command, words []uint16, err error) Result {
	return Result{id: cmd.id, gen: cmd.gen, Words: words, Err: err}
}
