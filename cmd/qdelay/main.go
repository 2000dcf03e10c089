// Command qdelay validates, binds and stores quantum circuits whose
// delay instructions carry dt or SI durations.
//
// Usage:
//
//	qdelay validate <file.cue|dir> [--strict]
//	qdelay assign <file.cue|dir> --set name=value...
//	qdelay test <scenario.yaml|dir>... [--update]
//	qdelay save <file.cue|dir> [--circuit name]
//	qdelay show <id>
//	qdelay list
//	qdelay derive <id> --set name=value...
//
// Global flags can also be set through QDELAY_* environment variables
// or a config file given with --config.
package main

import (
	"fmt"
	"os"

	"github.com/abbycross/qiskit/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.Reported(err) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
