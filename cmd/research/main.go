package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/metaarchitect/research-engine/pkg/research"
	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var phaseErr *research.PhaseError
		if errors.As(err, &phaseErr) && phaseErr.WorkflowID != "" && !phaseErr.Recovered && !research.IsAlreadyLocked(err) {
			fmt.Fprintln(os.Stderr, "The lock could not be released; run `research unlock` once the store is reachable.")
		}

		os.Exit(exitCode(err))
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "research",
		Usage:                 "Run the phase-sequenced research workflow",
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*cli.Command{
			PhaseCommand(research.Phase1, "Lock the next selected idea and print its research context"),
			PhaseCommand(research.Phase2, "Ask the authored queries and record the results"),
			PhaseCommand(research.Phase3, "Validate and commit the compiled UIF, then print the angle digest"),
			PhaseCommand(research.Phase4, "Write the extracted hooks and close the run"),
			PhaseCommand(research.Unlock, "Reset the open run out of band"),
			ValidateCommand(),
			ServeCommand(),
			ReapCommand(),
		},
	}
}

// exitCode distinguishes the error kinds for scripts driving the phases.
func exitCode(err error) int {
	switch research.Kind(err) {
	case "missing_input", "precondition":
		return 2
	case "already_locked":
		return 3
	case "validation":
		return 4
	case "remote":
		return 5
	case "partial_write":
		return 6
	default:
		return 1
	}
}
