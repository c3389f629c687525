// Command turnstream is a terminal client for streamed, tool-augmented
// conversations with persisted sessions.
package main

import (
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
