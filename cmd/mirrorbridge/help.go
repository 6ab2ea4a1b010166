package main

import (
	"fmt"
	"io"
)

func runHelp(stdout io.Writer) int {
	_, _ = fmt.Fprintln(stdout, `mirrorbridge command map:
  mine <blocks> [--native]
  supply
  retro <date> <url> [--wormhole]
  show mirror|retro|both
  report
  synthesis
  build-core
  export-ledger [--out <path>]
  status
  serve [--listen <host:port>]
  timeline [--path <file>]
  config show|save
  version

global flags: --json --explain; most commands accept --config <path>`)
	return 0
}
