// Package devicesim stands in for the embedded sensor during development:
// it posts synthetic accelerometer readings, polls the command endpoint at
// a fixed interval, arms and disarms itself on the start/stop tokens and
// raises an alarm when armed movement exceeds a threshold.
package devicesim
