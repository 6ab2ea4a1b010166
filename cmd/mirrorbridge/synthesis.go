package main

import (
	"fmt"
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runSynthesis(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge synthesis [--config <path>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	report := o.Synthesis()
	if jsonMode {
		if err := emitJSON(stdout, report); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
	} else {
		for _, step := range report.Steps {
			fmt.Fprintf(stdout, "%-14s %s\n", step.Name, step.Status)
			if step.Result != nil && step.Result.Failed() {
				fmt.Fprintf(stdout, "  %s\n", step.Result.Err)
			}
		}
	}

	// Best-effort run: a failing step degrades the exit code but the
	// remaining steps already ran.
	if report.Failed() {
		return 1
	}
	return 0
}
