// internal/poller/types.go
package poller

import (
	"fmt"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
)

// Range is one contiguous read geometry (1-based addresses).
type Range struct {
	Type  point.RegisterType
	Start uint16
	Count uint16
}

// Key identifies a range in the value cache.
func (r Range) Key() RangeKey {
	return RangeKey{Type: r.Type, Start: r.Start, Count: r.Count}
}

// Covers reports whether [addr, addr+n-1] lies inside r.
func (r Range) Covers(addr, n uint16) bool {
	return addr >= r.Start && uint32(addr)+uint32(n) <= uint32(r.Start)+uint32(r.Count)
}

func (r Range) String() string {
	return fmt.Sprintf("%s[%d..%d]", r.Type, r.Start, uint32(r.Start)+uint32(r.Count)-1)
}

// RangeKey is (register type, start address, count). Per-point ranges
// may share a start address with different lengths.
type RangeKey struct {
	Type  point.RegisterType
	Start uint16
	Count uint16
}

// CommandKind discriminates queue entries.
type CommandKind uint8

const (
	CommandRead CommandKind = iota + 1
	CommandWrite
	CommandBarrier
)

func (k CommandKind) String() string {
	switch k {
	case CommandRead:
		return "read"
	case CommandWrite:
		return "write"
	case CommandBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// Command is one unit of work for the queue.
// Exactly one of Range (read) or Type/Address/Values (write) is used.
type Command struct {
	Kind CommandKind

	// read
	Range Range

	// write
	Point   string
	Type    point.RegisterType
	Address uint16 // 1-based
	Values  []uint16

	// assigned by the scheduler
	id  uint64
	gen uint64
}

// Read builds a read command.
func Read(r Range) Command {
	return Command{Kind: CommandRead, Range: r}
}

// Write builds a write command for p with already-encoded words.
func Write(p point.Point, words []uint16) Command {
	return Command{
		Kind:    CommandWrite,
		Point:   p.Name,
		Type:    p.Type,
		Address: p.Address,
		Values:  words,
	}
}

// Barrier marks the end of a poll cycle.
func Barrier() Command {
	return Command{Kind: CommandBarrier}
}

func (c Command) String() string {
	switch c.Kind {
	case CommandRead:
		return fmt.Sprintf("read %s", c.Range)
	case CommandWrite:
		return fmt.Sprintf("write %s %s%d=%v", c.Point, c.Type.Letter(), c.Address, c.Values)
	default:
		return c.Kind.String()
	}
}

// Result is the outcome of executing one I/O command.
type Result struct {
	id    uint64
	gen   uint64
	Words []uint16 // reads only
	Err   error
}
