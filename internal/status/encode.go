// internal/status/encode.go
package status

import (
	"encoding/json"
	"time"
)

type wireSnapshot struct {
	Health    string `json:"health"`
	Code      uint16 `json:"code"`
	Connected bool   `json:"connected"`
	LastError string `json:"last_error,omitempty"`
	Resets    uint64 `json:"resets"`
	Cycles    uint64 `json:"cycles"`
	At        string `json:"at"`
}

// Encode converts a Snapshot into its published JSON form.
// No IO. No side effects.
func Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(wireSnapshot{
		Health:    HealthName(s.Health),
		Code:      s.Health,
		Connected: s.Connected,
		LastError: s.LastError,
		Resets:    s.Resets,
		Cycles:    s.Cycles,
		At:        s.At.UTC().Format(time.RFC3339Nano),
	})
}
