package main

import (
	"fmt"
	"io"
	"time"

	"github.com/quantalab/mirrorbridge/core/doctor"
	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runStatus(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
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
				"usage: mirrorbridge status [--config <path>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	_, cfg, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	report := doctor.Inspect(cfg)
	if jsonMode {
		if err := emitJSON(stdout, report); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		if !report.Healthy() {
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "root: %s\n\ndata files:\n", report.Root)
	for _, f := range report.DataFiles {
		mark := "missing"
		if f.Exists {
			mark = fmt.Sprintf("%d bytes", f.Size)
		}
		fmt.Fprintf(stdout, "  %-18s %-28s %s\n", f.Name, f.Path, mark)
	}

	fmt.Fprintf(stdout, "\nnative core: %s", report.NativeBinary)
	if report.NativeAvailable {
		fmt.Fprintln(stdout, " (available)")
	} else {
		fmt.Fprintln(stdout, " (not built)")
	}

	fmt.Fprintln(stdout, "\nscripts:")
	for _, s := range report.Scripts {
		mark := "missing"
		if s.Exists {
			mark = "ok"
		}
		fmt.Fprintf(stdout, "  %-18s %s\n", s.Name, mark)
	}

	if !report.Healthy() {
		return 1
	}
	return 0
}
