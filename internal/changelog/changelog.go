// internal/changelog/changelog.go
package changelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
)

// TimeLayout is ISO 8601 in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Log appends one CSV row per recorded change: timestamp,name,value.
// Record is called from the session loop only.
type Log struct {
	f *os.File
	w *csv.Writer
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("changelog: path required")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("changelog: %w", err)
	}
	return &Log{f: f, w: csv.NewWriter(f)}, nil
}

// newWriter is used by tests to record into memory.
func newWriter(w io.Writer) *Log {
	return &Log{w: csv.NewWriter(w)}
}

// Record writes and flushes one row.
func (l *Log) Record(at time.Time, name string, v point.Value) error {
	row := []string{at.UTC().Format(TimeLayout), name, formatValue(v)}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

// Close flushes and closes the file. Safe on a nil Log.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.w.Flush()
	if l.f == nil {
		return l.w.Error()
	}
	return errors.Join(l.w.Error(), l.f.Close())
}

func formatValue(v point.Value) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}
