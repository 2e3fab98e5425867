// The main package for the referent executable.
package main

import (
	"github.com/JakeFAU/referent/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
