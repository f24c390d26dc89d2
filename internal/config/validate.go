// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
//
// Zero values are accepted wherever Normalize supplies a default.
// Individual point definitions are not checked here: a bad point is
// skipped by the registry and never blocks the rest of the system.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// SOURCE
	// ------------------------------------------------------------

	if cfg.Source.Port < 0 || cfg.Source.Port > 65535 {
		return fmt.Errorf("source: port %d out of range", cfg.Source.Port)
	}
	if cfg.Source.UnitID > 247 {
		return fmt.Errorf("source: unit_id %d out of range (0-247)", cfg.Source.UnitID)
	}
	if cfg.Source.TimeoutMs < 0 {
		return fmt.Errorf("source: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0")
	}
	switch cfg.Poll.Mode {
	case "", ModeAggregate, ModePerPoint:
	default:
		return fmt.Errorf("poll: unknown mode %q (want %s or %s)", cfg.Poll.Mode, ModeAggregate, ModePerPoint)
	}

	if len(cfg.Points) == 0 {
		return fmt.Errorf("points: at least one point required")
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if cfg.MQTT.Enabled() {
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt: qos %d out of range (0-2)", cfg.MQTT.QoS)
		}
		if strings.ContainsAny(cfg.MQTT.TopicPrefix, "+#") {
			return fmt.Errorf("mqtt: topic_prefix %q must not contain wildcards", cfg.MQTT.TopicPrefix)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	return nil
}
