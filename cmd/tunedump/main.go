package main

import "os"

// main hands control to the root Cobra command. Cobra prints the error;
// main only translates it into the exit code.
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
