package main

import (
	"fmt"
	"io"
	"time"

	"github.com/quantalab/mirrorbridge/core/config"
	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func runConfig(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	configPath := ""
	sub := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "show", "save":
			if sub != "" {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "usage: mirrorbridge config show|save", nil), jsonMode, stderr, now)
			}
			sub = args[i]
		case "--config":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--config requires value", nil), jsonMode, stderr, now)
			}
			configPath = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge config show|save [--config <path>]",
				map[string]any{"value": args[i]},
			), jsonMode, stderr, now)
		}
	}
	if sub == "" {
		sub = "show"
	}
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	switch sub {
	case "show":
		if err := emitJSON(stdout, cfg.Raw()); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		return 0
	case "save":
		if err := cfg.Save(); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		if jsonMode {
			if err := emitJSON(stdout, map[string]string{"path": cfg.Path}); err != nil {
				return printError(err, jsonMode, stderr, now)
			}
			return 0
		}
		fmt.Fprintf(stdout, "configuration written to %s\n", cfg.Path)
		return 0
	}
	return 0
}
