// Package version carries the build metadata stamped into the safe-server
// and safe-device-sim binaries.
//
// Version, Commit and BuildTime are injected through Go ldflags at release
// time and fall back to local-build defaults otherwise. Short and Full
// render them for CLI output and logs, and AttachCobraVersionCommand adds
// the `version` subcommand to a root command.
package version
