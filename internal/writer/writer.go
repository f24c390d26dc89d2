// internal/writer/writer.go
package writer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/poller"
)

// Writer turns logical point values into write commands.
// It holds no state; ordering and debounce belong to the session.
type Writer struct {
	reg *point.Registry
	sub Submitter
	log logrus.FieldLogger
}

func New(reg *point.Registry, sub Submitter, log logrus.FieldLogger) *Writer {
	return &Writer{
		reg: reg,
		sub: sub,
		log: log,
	}
}

// Set encodes v for the named point and queues the write.
// It returns once the session has accepted the command, not when the
// device has acknowledged it.
func (w *Writer) Set(ctx context.Context, name string, v point.Value) error {
	p, ok := w.reg.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPoint, name)
	}
	if p.ReadOnly || p.Type == point.InputRegister {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}

	words, err := point.Encode(p, v)
	if err != nil {
		return err
	}

	w.log.WithFields(logrus.Fields{
		"point":   p.Name,
		"address": fmt.Sprintf("%s%d", p.Type.Letter(), p.Address),
		"value":   v,
	}).Info("setting")

	return w.sub.Submit(ctx, poller.Write(p, words))
}
