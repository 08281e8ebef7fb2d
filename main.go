package main

import "github.com/nomihealth/flshots/cmd"

// Version is injected at build time
var Version = "v0.1.0"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
