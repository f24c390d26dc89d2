// internal/status/encode_test.go
package status

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncode_Fields(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := Encode(Snapshot{
		Health:    HealthStale,
		Connected: false,
		LastError: "poller: transaction stalled",
		Resets:    2,
		At:        at,
	})
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["health"] != "stale" {
		t.Fatalf("health: got=%v want=stale", got["health"])
	}
	if got["code"] != float64(HealthStale) {
		t.Fatalf("code: got=%v want=%d", got["code"], HealthStale)
	}
	if got["resets"] != 2.0 {
		t.Fatalf("resets: got=%v want=2", got["resets"])
	}
	if got["at"] != "2024-03-01T12:00:00Z" {
		t.Fatalf("at: got=%v", got["at"])
	}
}

func TestEncode_OmitsEmptyError(t *testing.T) {
	b, err := Encode(Snapshot{Health: HealthOK, Connected: true})
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}

	var got map[string]any
	_ = json.Unmarshal(b, &got)
	if _, ok := got["last_error"]; ok {
		t.Fatalf("last_error should be omitted when healthy: %s", b)
	}
}
