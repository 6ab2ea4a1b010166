package main

import (
	"fmt"
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/ledger"
)

func runExportLedger(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	outPath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--out":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--out requires value", nil), jsonMode, stderr, now)
			}
			outPath = args[i]
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge export-ledger [--out <path>] [--config <path>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	_, cfg, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	result, err := ledger.Export(cfg, outPath, now)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	if jsonMode {
		if err := emitJSON(stdout, result); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		return 0
	}
	fmt.Fprintf(stdout, "ledger snapshot: %s (%d agents, digest %s)\n",
		result.Path, result.AgentCount, result.Digest)
	return 0
}
