package main

import (
	"fmt"
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runReport(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
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
				"usage: mirrorbridge report [--config <path>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	res := o.ExportReport()
	if res.Failed() {
		return printError(bridgeerrors.New(
			bridgeerrors.ELaunch, res.Err, nil,
		), jsonMode, stderr, now)
	}

	unified := o.UnifiedReport()
	if jsonMode {
		if err := emitJSON(stdout, unified); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		return 0
	}

	fmt.Fprintf(stdout, "report written to %s (mirror blocks: %d, retro entries: %d)\n",
		unified.ReportPath, unified.MirrorBlocks, unified.RetroEntries)
	for _, line := range unified.ReportPreview {
		fmt.Fprintln(stdout, line)
	}
	return 0
}
