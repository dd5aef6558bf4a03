// Package broadcast implements the realtime channel between the bridge
// server and browser viewers: a websocket hub that fans readings and alarm
// markers out to all connected sessions and routes inbound control events
// (setMode, disableAlarm, savePhoneNumber) to the mode controller.
//
// Delivery is fire-and-forget per session: a slow or dead viewer is
// dropped without affecting the others.
package broadcast
