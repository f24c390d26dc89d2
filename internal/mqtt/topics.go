// internal/mqtt/topics.go
package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tamzrod/modbus-pointbridge/internal/point"
)

const (
	statusSuffix = "$status"
	setSuffix    = "set"
)

// pointTopic is where value changes of name are published.
func pointTopic(prefix, name string) string {
	return prefix + "/" + name
}

func statusTopic(prefix string) string {
	return prefix + "/" + statusSuffix
}

// setFilter subscribes to write requests for every point.
func setFilter(prefix string) string {
	return prefix + "/+/" + setSuffix
}

// parseSetTopic extracts the point name from <prefix>/<name>/set.
func parseSetTopic(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/"+setSuffix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// decodeValue accepts a JSON bool, number or string. Anything that is not
// valid JSON is taken as a bare string, so "on" and on both work.
func decodeValue(payload []byte) (point.Value, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, fmt.Errorf("mqtt: empty payload")
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload), nil
	}

	switch x := v.(type) {
	case bool, float64, string:
		return x, nil
	default:
		return nil, fmt.Errorf("mqtt: unsupported payload %s", payload)
	}
}

func encodeValue(v point.Value) ([]byte, error) {
	return json.Marshal(v)
}
