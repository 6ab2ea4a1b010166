package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quantalab/mirrorbridge/core/backend"
	"github.com/quantalab/mirrorbridge/core/config"
	"github.com/quantalab/mirrorbridge/core/orchestrate"
)

// openOrchestrator resolves the configuration at path (or the default
// location when empty) and wires the orchestrator on top of it.
func openOrchestrator(path string) (*orchestrate.Orchestrator, *config.Resolved, error) {
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	return orchestrate.New(cfg), cfg, nil
}

// emitJSON pretty-prints v to stdout in --json mode.
func emitJSON(stdout io.Writer, v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders one invocation result for human consumption: stdout
// verbatim, stderr and exit code only when they carry something.
func printResult(stdout io.Writer, res backend.Result) {
	if res.Failed() {
		fmt.Fprintf(stdout, "error: %s\n", res.Err)
		return
	}
	if res.Stdout != "" {
		fmt.Fprint(stdout, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(stdout, res.Stderr)
	}
	if res.ExitCode != 0 {
		fmt.Fprintf(stdout, "exit code %d\n", res.ExitCode)
	}
}
