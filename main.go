// oops corrects mistyped shell commands.
package main

import "oops/cmd"

var (
	// Version is set during build via ldflags
	Version = "dev"
	// Commit is set during build via ldflags
	Commit = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.Commit = Commit
	cmd.Execute()
}
