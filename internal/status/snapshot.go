// internal/status/snapshot.go
package status

import "time"

// Snapshot is the session health as last reported.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health    uint16
	Connected bool
	LastError string
	Resets    uint64
	Cycles    uint64
	At        time.Time
}
