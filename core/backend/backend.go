// Package backend executes bridge work on one of two interchangeable
// backends: registered external scripts or the compiled native core. Both
// share one invocation contract and report launch problems as data, never as
// raised errors.
package backend

import "fmt"

// Result is the captured outcome of a single invocation. When Err is set the
// process never launched; otherwise Success mirrors a zero exit code and the
// captured output is present regardless of the exit code's value.
type Result struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	Err      string `json:"error,omitempty"`
}

// Failed reports whether the invocation never produced a captured outcome.
func (r Result) Failed() bool {
	return r.Err != ""
}

func failure(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// Runner is the capability both backends implement. The identifier is a
// script name for the script backend and a mode keyword for the native one;
// selection policy lives with the orchestrator.
type Runner interface {
	Invoke(identifier string, args []string) Result
}
