// internal/status/constants.go
package status

// Session health codes.
// Values are published as-is and MUST NOT be renumbered.

// HealthUnknown represents boot state, before the first connect attempt resolves.
const HealthUnknown uint16 = 0

// HealthOK represents a connected session.
const HealthOK uint16 = 1

// HealthError represents a failed connect or transaction; a reconnect is pending.
const HealthError uint16 = 2

// HealthStale represents a reset caused by a stuck transaction.
const HealthStale uint16 = 3

// HealthName returns the wire name of a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	default:
		return "invalid"
	}
}
