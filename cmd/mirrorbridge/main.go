package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	jsonMode := false
	explainMode := false
	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--json" {
			jsonMode = true
			continue
		}
		if arg == "--explain" {
			explainMode = true
			continue
		}
		filtered = append(filtered, arg)
	}

	if explainMode {
		command := "version"
		if len(filtered) > 0 {
			command = filtered[0]
		}
		intent, ok := commandIntent(command)
		if !ok {
			return printError(
				bridgeerrors.New(
					bridgeerrors.EInvalidInput,
					fmt.Sprintf("unknown command %q", command),
					map[string]any{"command": command},
				),
				jsonMode,
				stderr,
				now,
			)
		}
		if jsonMode {
			payload := map[string]string{
				"command": command,
				"intent":  intent,
			}
			enc := json.NewEncoder(stdout)
			if err := enc.Encode(payload); err != nil {
				fmt.Fprintf(stderr, "encode explain: %v\n", err)
				return 1
			}
			return 0
		}
		fmt.Fprintf(stdout, "mirrorbridge %s: %s\n", command, intent)
		return 0
	}

	if len(filtered) == 0 || filtered[0] == "version" {
		if jsonMode {
			payload := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
			}
			enc := json.NewEncoder(stdout)
			if err := enc.Encode(payload); err != nil {
				fmt.Fprintf(stderr, "encode version: %v\n", err)
				return 1
			}
			return 0
		}
		fmt.Fprintf(stdout, "mirrorbridge %s (commit=%s date=%s)\n", version, commit, date)
		return 0
	}

	switch filtered[0] {
	case "mine":
		return runMine(filtered[1:], jsonMode, stdout, stderr, now)
	case "supply":
		return runSupply(filtered[1:], jsonMode, stdout, stderr, now)
	case "retro":
		return runRetro(filtered[1:], jsonMode, stdout, stderr, now)
	case "show":
		return runShow(filtered[1:], jsonMode, stdout, stderr, now)
	case "report":
		return runReport(filtered[1:], jsonMode, stdout, stderr, now)
	case "synthesis":
		return runSynthesis(filtered[1:], jsonMode, stdout, stderr, now)
	case "build-core":
		return runBuildCore(filtered[1:], jsonMode, stdout, stderr, now)
	case "export-ledger":
		return runExportLedger(filtered[1:], jsonMode, stdout, stderr, now)
	case "status":
		return runStatus(filtered[1:], jsonMode, stdout, stderr, now)
	case "serve":
		return runServe(filtered[1:], jsonMode, stdout, stderr, now)
	case "timeline":
		return runTimeline(filtered[1:], jsonMode, stdout, stderr, now)
	case "config":
		return runConfig(filtered[1:], jsonMode, stdout, stderr, now)
	case "help":
		return runHelp(stdout)
	}

	return printError(
		bridgeerrors.New(
			bridgeerrors.EInvalidInput,
			fmt.Sprintf("unknown command %q", filtered[0]),
			map[string]any{"command": filtered[0]},
		),
		jsonMode,
		stderr,
		now,
	)
}

func commandIntent(command string) (string, bool) {
	switch command {
	case "version":
		return "show mirrorbridge version, commit, and build date metadata", true
	case "mine":
		return "mine mirror blocks on the script backend or the native core", true
	case "supply":
		return "recompute and print the mirror supply tables", true
	case "retro":
		return "query an archived site at a past date and extend the retro chain", true
	case "show":
		return "print the mirror chain, the retro chain, or both", true
	case "report":
		return "regenerate the timeline report and preview its opening lines", true
	case "synthesis":
		return "run the full composite synthesis sequence across both backends", true
	case "build-core":
		return "build the native core binary and re-check its availability", true
	case "export-ledger":
		return "compute and write the agent ledger snapshot document", true
	case "status":
		return "inspect data files, scripts, and native core availability", true
	case "serve":
		return "start the network status proxy in front of the upstream RPC node", true
	case "timeline":
		return "load and print the time machine timeline configuration", true
	case "config":
		return "print or re-save the resolved bridge configuration", true
	case "help":
		return "show available mirrorbridge command surfaces and usage hints", true
	default:
		return "", false
	}
}

func printError(err error, jsonMode bool, stderr io.Writer, now func() time.Time) int {
	if jsonMode {
		out, marshalErr := bridgeerrors.MarshalEnvelope(err, version, now().UTC())
		if marshalErr != nil {
			fmt.Fprintf(stderr, "marshal error envelope: %v\n", marshalErr)
			return 1
		}
		fmt.Fprintln(stderr, string(out))
	} else {
		fmt.Fprintf(stderr, "%v\n", err)
	}

	var berr bridgeerrors.BridgeError
	if errors.As(err, &berr) {
		return bridgeerrors.ExitCodeFor(berr.Code)
	}
	return 1
}
