package main

import "github.com/oshokin/study-safe-server/cmd/safe-server/cmd"

func main() {
	cmd.Execute()
}
