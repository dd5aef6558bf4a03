package main

import "github.com/oshokin/study-safe-server/cmd/safe-device-sim/cmd"

func main() {
	cmd.Execute()
}
