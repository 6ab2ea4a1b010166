package main

import (
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runRetro(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	wormhole := false
	positional := []string{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--wormhole":
			wormhole = true
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) != 2 {
		return printError(bridgeerrors.New(
			bridgeerrors.EInvalidInput,
			"usage: mirrorbridge retro <date> <url> [--wormhole] [--config <path>]",
			nil,
		), jsonMode, stderr, now)
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	res := o.RetroBootstrap(positional[0], positional[1], wormhole)
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
	return 0
}
