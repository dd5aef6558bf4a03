package safe

import "strings"

// Mode is the operating state of the safe device.
type Mode string

const (
	// ModeAway means the owner left the device unattended: monitoring is
	// armed and movement raises an alarm.
	ModeAway Mode = "away"
	// ModeWith means the owner is with the device: monitoring is off.
	// This is the startup default.
	ModeWith Mode = "with"
)

// ParseMode converts client input to a Mode.
// The second return value reports whether the input named a known mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAway:
		return ModeAway, true
	case ModeWith:
		return ModeWith, true
	default:
		return ModeWith, false
	}
}

// String returns the wire representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Command is an instruction token delivered to the device through the
// polling endpoint. The device treats the tokens as idempotent switches.
type Command string

const (
	// CommandStartMonitoring arms the device's motion detection.
	CommandStartMonitoring Command = "startMonitoring"
	// CommandStopMonitoring disarms the device's motion detection.
	CommandStopMonitoring Command = "stopMonitoring"
)

// CommandForMode maps a requested mode to the instruction the device needs
// to follow it: Away arms monitoring, With disarms it.
func CommandForMode(m Mode) Command {
	if m == ModeAway {
		return CommandStartMonitoring
	}

	return CommandStopMonitoring
}

// String returns the wire representation of the command token.
func (c Command) String() string {
	return string(c)
}

// Reading is a single accelerometer sample reported by the device.
// Readings are forwarded to viewers as-is and never stored.
type Reading struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
}
