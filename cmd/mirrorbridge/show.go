package main

import (
	"fmt"
	"io"
	"time"

	"github.com/quantalab/mirrorbridge/core/backend"
	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runShow(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	which := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		case "mirror", "retro", "both":
			if which != "" {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "usage: mirrorbridge show mirror|retro|both", nil), jsonMode, stderr, now)
			}
			which = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge show mirror|retro|both [--config <path>]",
				map[string]any{"value": args[i]},
			), jsonMode, stderr, now)
		}
	}
	if which == "" {
		return printError(bridgeerrors.New(
			bridgeerrors.EInvalidInput,
			"usage: mirrorbridge show mirror|retro|both [--config <path>]",
			nil,
		), jsonMode, stderr, now)
	}

	o, _, err := openOrchestrator(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	results := map[string]backend.Result{}
	if which == "mirror" || which == "both" {
		results["mirror"] = o.ShowMirrorChain()
	}
	if which == "retro" || which == "both" {
		results["retro"] = o.ShowRetroChain()
	}

	if jsonMode {
		if err := emitJSON(stdout, results); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
	} else {
		if res, ok := results["mirror"]; ok {
			fmt.Fprintln(stdout, "mirror chain:")
			printResult(stdout, res)
		}
		if res, ok := results["retro"]; ok {
			fmt.Fprintln(stdout, "retro chain:")
			printResult(stdout, res)
		}
	}

	for _, res := range results {
		if res.Failed() {
			return bridgeerrors.ExitCodeFor(bridgeerrors.ELaunch)
		}
	}
	return 0
}
