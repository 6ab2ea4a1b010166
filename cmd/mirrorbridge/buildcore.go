package main

import (
	"fmt"
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runBuildCore(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
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
				"usage: mirrorbridge build-core [--config <path>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	result, err := o.BuildNative()
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	if jsonMode {
		if err := emitJSON(stdout, result); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
	} else {
		if result.Stdout != "" {
			fmt.Fprint(stdout, result.Stdout)
		}
		if result.Stderr != "" {
			fmt.Fprint(stdout, result.Stderr)
		}
		fmt.Fprintf(stdout, "build success=%t available=%t\n", result.Success, result.AvailableNow)
	}

	if !result.Success || !result.AvailableNow {
		return 1
	}
	return 0
}
