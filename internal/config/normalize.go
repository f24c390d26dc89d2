// internal/config/normalize.go
package config

const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 502
	DefaultUnitID     = 1
	DefaultTimeoutMs  = 3000
	DefaultIntervalMs = 1000
	DefaultClientID   = "modbus-pointbridge"
	DefaultPrefix     = "modbus"
	DefaultLogLevel   = "info"
	DefaultChangeLog  = "logfile.csv"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Source.Host == "" {
		cfg.Source.Host = DefaultHost
	}
	if cfg.Source.Port == 0 {
		cfg.Source.Port = DefaultPort
	}
	if cfg.Source.UnitID == 0 {
		cfg.Source.UnitID = DefaultUnitID
	}
	if cfg.Source.TimeoutMs == 0 {
		cfg.Source.TimeoutMs = DefaultTimeoutMs
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.Mode == "" {
		cfg.Poll.Mode = ModeAggregate
	}

	// points flagged for change logging always get a sink
	if cfg.ChangeLog.Path == "" && anyLogged(cfg.Points) {
		cfg.ChangeLog.Path = DefaultChangeLog
	}

	if cfg.MQTT.Enabled() {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = DefaultClientID
		}
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = DefaultPrefix
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func anyLogged(points []PointConfig) bool {
	for _, p := range points {
		if p.Log {
			return true
		}
	}
	return false
}
