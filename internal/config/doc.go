// Package config defines settings used by the bridge server and the device
// simulator and provides helpers to load, validate and save them in YAML
// format.
//
// Notifier credentials may come from SAFE_NOTIFIER_* environment variables
// instead of the file, so they never need to be written to disk.
package config
