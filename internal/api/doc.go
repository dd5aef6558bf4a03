// Package api is the HTTP boundary of the bridge server.
//
// The device side is deliberately plain: JSON readings in, bare command
// tokens out, always 200 for business conditions because the device
// protocol has no error channel. The viewer side is a single websocket
// upgrade handed off to the broadcast hub.
package api
