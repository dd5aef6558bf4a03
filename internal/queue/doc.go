// Package queue implements the FIFO command buffer bridging browser-driven
// mode changes to the device's polling loop.
package queue
