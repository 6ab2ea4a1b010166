package backend

import (
	"bytes"
	"errors"
	"os"
	"os/exec"

	"github.com/quantalab/mirrorbridge/core/config"
	"github.com/quantalab/mirrorbridge/core/logging"
	"github.com/quantalab/mirrorbridge/core/metrics"
)

// ScriptBackend invokes external scripts registered in the configuration.
type ScriptBackend struct {
	cfg *config.Resolved
}

func NewScriptBackend(cfg *config.Resolved) *ScriptBackend {
	return &ScriptBackend{cfg: cfg}
}

// Invoke runs the named script with positional args from the config root.
// A non-zero exit is reported in the result, not treated as a launch failure.
// No timeout is enforced; the script inherits the caller's lifetime.
func (b *ScriptBackend) Invoke(name string, args []string) Result {
	log := logging.For("script-backend")

	path, ok := b.cfg.ScriptPath(name)
	if !ok {
		metrics.ObserveInvocation("script", false)
		return failure("script %q is not registered", name)
	}
	if _, err := os.Stat(path); err != nil {
		metrics.ObserveInvocation("script", false)
		return failure("script %q not found at %s", name, path)
	}

	// #nosec G204 -- the path comes from the operator's own registry.
	cmd := exec.Command(path, args...)
	cmd.Dir = b.cfg.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			metrics.ObserveInvocation("script", false)
			log.Warn().Str("script", name).Err(runErr).Msg("script failed to launch")
			return failure("launch script %q: %v", name, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	metrics.ObserveInvocation("script", true)
	log.Debug().Str("script", name).Int("exit_code", exitCode).Msg("script completed")
	return Result{
		Success:  exitCode == 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}
