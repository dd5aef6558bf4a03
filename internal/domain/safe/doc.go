// Package safe holds the domain types shared between the device boundary,
// the realtime channel and the mode controller: operating modes, device
// command tokens and accelerometer readings.
package safe
