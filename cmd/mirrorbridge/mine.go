package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runMine(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	preferNative := false
	blocks := 0
	blocksSet := false
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--native":
			preferNative = true
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		default:
			parsed, err := strconv.Atoi(args[i])
			if err != nil || parsed <= 0 || blocksSet {
				return printError(bridgeerrors.New(
					bridgeerrors.EInvalidInput,
					"usage: mirrorbridge mine <blocks> [--native] [--config <path>]",
					map[string]any{"value": args[i]},
				), jsonMode, stderr, now)
			}
			blocks = parsed
			blocksSet = true
		}
	}
	if !blocksSet {
		return printError(bridgeerrors.New(
			bridgeerrors.EInvalidInput,
			"usage: mirrorbridge mine <blocks> [--native] [--config <path>]",
			nil,
		), jsonMode, stderr, now)
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	res := o.MineBlocks(blocks, preferNative)
	if jsonMode {
		if err := emitJSON(stdout, res); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
	} else {
		printResult(stdout, res)
	}
	if res.Failed() {
		return bridgeerrors.ExitCodeFor(bridgeerrors.ELaunch)
	}
	if !res.Success {
		return 1
	}
	if !jsonMode {
		fmt.Fprintf(stdout, "mined %d block(s)\n", blocks)
	}
	return 0
}
