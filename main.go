package main

import (
	"lagoon/cmd"
)

// set by the release build
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.Execute(version + "-" + commit)
}
