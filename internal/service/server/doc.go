// Package server implements the core of the bridge: the mode/alarm state
// machine that owns the current device mode and the pending command queue,
// plus the Run entrypoint wiring it to the HTTP boundary, the websocket
// hub and the SMS notifier.
//
// Two differently-paced actors meet here: browser viewers mutate mode
// through websocket events at interactive speed, while the device drains
// commands over slow HTTP polling. One mutex makes each mutation atomic
// with respect to both mode and queue, so no command is lost or
// duplicated across the two sides.
package server
