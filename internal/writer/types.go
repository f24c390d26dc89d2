// internal/writer/types.go
package writer

import (
	"context"
	"errors"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/poller"
)

var (
	ErrUnknownPoint = errors.New("writer: unknown point")
	ErrReadOnly     = errors.New("writer: point is read-only")
)

// Submitter is the exact contract the writer uses to reach the device.
// *poller.Session satisfies it.
type Submitter interface {
	Submit(ctx context.Context, cmd poller.Command) error
}

// Setter writes a logical value to a named point.
type Setter interface {
	Set(ctx context.Context, name string, v point.Value) error
}
