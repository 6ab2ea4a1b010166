package main

import (
	"io"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/proxy"
	"github.com/quantalab/mirrorbridge/core/rpc"
)

func runServe(args []string, jsonMode bool, stdout, stderr io.Writer, now func() time.Time) int {
	addr := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--listen":
			i++
			if i >= len(args) {
				return printError(bridgeerrors.New(bridgeerrors.EInvalidInput, "--listen requires value", nil), jsonMode, stderr, now)
			}
			addr = args[i]
		default:
			return printError(bridgeerrors.New(
				bridgeerrors.EInvalidInput,
				"usage: mirrorbridge serve [--listen <host:port>]",
				nil,
			), jsonMode, stderr, now)
		}
	}
	if addr == "" {
		addr = proxy.BindAddrFromEnv()
	}

	client, err := rpc.NewClient(rpc.SettingsFromEnv())
	if err != nil {
		return printError(err, jsonMode, stderr, now)
	}

	if err := proxy.NewServer(client).Run(addr); err != nil {
		return printError(bridgeerrors.New(
			bridgeerrors.EGenericFailure,
			err.Error(),
			map[string]any{"addr": addr},
		), jsonMode, stderr, now)
	}
	return 0
}
