package main

import (
	"fmt"
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/timeline"
)

func runTimeline(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	path := timeline.DefaultPath
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--path":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--path requires value", nil), jsonMode, stderr, now)
			}
			path = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge timeline [--path <file>]",
				nil,
			), jsonMode, stderr, now)
		}
	}

	cfg, err := timeline.Load(path)
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	if jsonMode {
		if err := emitJSON(stdout, cfg); err != nil {
			return printError(err, jsonMode, stderr, now)
		}
		return 0
	}
	fmt.Fprintf(stdout, "timeline %s snapshot=%s mode=%s seed=%s bindings=%d\n",
		cfg.TimelineID, cfg.SnapshotVersion, cfg.Mode, cfg.WormholeSeed, len(cfg.AppBindings))
	return 0
}
