// The main package for the mission-site executable.
package main

import (
	"github.com/JakeFAU/mission-site/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
