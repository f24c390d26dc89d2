// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Poll      PollConfig      `yaml:"poll"`
	Points    []PointConfig   `yaml:"points"`
	ChangeLog ChangeLogConfig `yaml:"change_log"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Log       LogConfig       `yaml:"log"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Endpoint returns host:port as expected by the TCP dialer.
func (s SourceConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ---- POLL ----

const (
	ModeAggregate = "aggregate"
	ModePerPoint  = "per_point"
)

type PollConfig struct {
	IntervalMs int    `yaml:"interval_ms"`
	Mode       string `yaml:"mode"`
}

// ---- POINTS ----

// PointConfig is one logical point as written in the config file.
// Address uses the <type-letter><1-based-address> form, e.g. "r40001".
type PointConfig struct {
	Name     string           `yaml:"name"`
	Address  string           `yaml:"address"`
	Length   uint16           `yaml:"length"`
	Format   string           `yaml:"format"`
	Scale    float64          `yaml:"scale"`
	Mask     uint32           `yaml:"mask"`
	Map      map[int64]string `yaml:"map"`
	ReadOnly bool             `yaml:"readonly"`
	Log      bool             `yaml:"log"`
}

// ---- SINKS ----

type ChangeLogConfig struct {
	Path string `yaml:"path"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// Enabled reports whether an MQTT broker was configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and decodes a YAML config file.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}
