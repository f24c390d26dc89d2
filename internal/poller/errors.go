// internal/poller/errors.go
package poller

import "errors"

var (
	// ErrConnection is a socket-level failure; handled by the reconnect loop.
	ErrConnection = errors.New("poller: connection error")

	// ErrTransaction is a read or write rejected or timed out by the device.
	// The session is reset; the queue is never retried piecemeal.
	ErrTransaction = errors.New("poller: transaction failed")

	// ErrStalled is an in-flight command outstanding past StallThreshold.
	ErrStalled = errors.New("poller: transaction stalled")

	// ErrQueueFull is returned by Submit for writes past MaxOfflineWrites.
	ErrQueueFull = errors.New("poller: write queue full while disconnected")

	// ErrClosed is returned by Submit once the session loop has exited.
	ErrClosed = errors.New("poller: session closed")
)
