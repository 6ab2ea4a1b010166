package backend

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/quantalab/mirrorbridge/core/config"
	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/fsx"
	"github.com/quantalab/mirrorbridge/core/logging"
	"github.com/quantalab/mirrorbridge/core/metrics"
)

const buildManifestName = "Makefile"

// NativeBackend invokes the compiled native core with a mode keyword. The
// availability precheck runs before any spawn attempt so a missing binary
// surfaces as its own message instead of a generic launch failure.
type NativeBackend struct {
	cfg *config.Resolved
}

func NewNativeBackend(cfg *config.Resolved) *NativeBackend {
	return &NativeBackend{cfg: cfg}
}

// Available reports whether the configured binary exists and is executable.
func (b *NativeBackend) Available() bool {
	return fsx.IsExecutable(b.cfg.BinaryPath())
}

// Invoke runs the native core as `binary mode args...`.
func (b *NativeBackend) Invoke(mode string, args []string) Result {
	log := logging.For("native-backend")

	if !b.cfg.KnownMode(mode) {
		metrics.ObserveInvocation("native", false)
		return failure("unknown native mode %q", mode)
	}
	if !b.Available() {
		metrics.ObserveInvocation("native", false)
		return failure("native core unavailable at %s; build it first", b.cfg.BinaryPath())
	}

	// #nosec G204 -- binary path comes from the operator's configuration.
	cmd := exec.Command(b.cfg.BinaryPath(), append([]string{mode}, args...)...)
	cmd.Dir = b.cfg.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			metrics.ObserveInvocation("native", false)
			log.Warn().Str("mode", mode).Err(runErr).Msg("native core failed to launch")
			return failure("launch native core mode %q: %v", mode, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	metrics.ObserveInvocation("native", true)
	log.Debug().Str("mode", mode).Int("exit_code", exitCode).Msg("native core completed")
	return Result{
		Success:  exitCode == 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// BuildResult captures a build attempt. AvailableNow reflects a fresh
// availability check after the attempt; a build tool that reports success
// while the binary is still missing is recorded, not elided.
type BuildResult struct {
	Success      bool   `json:"success"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	AvailableNow bool   `json:"availableNow"`
}

// Build invokes the external build tool with the configured target name.
func (b *NativeBackend) Build() (BuildResult, error) {
	manifest := filepath.Join(b.cfg.Root, buildManifestName)
	if _, err := os.Stat(manifest); err != nil {
		return BuildResult{}, bridgeerrors.New(
			bridgeerrors.EBuildConfig,
			"no build manifest found",
			map[string]any{"expected": manifest},
		)
	}

	cmd := exec.Command("make", b.cfg.Document.NativeLayer.BuildTarget)
	cmd.Dir = b.cfg.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return BuildResult{}, bridgeerrors.New(
				bridgeerrors.ELaunch,
				"launch build tool",
				map[string]any{"target": b.cfg.Document.NativeLayer.BuildTarget, "error": runErr.Error()},
			)
		}
	}

	return BuildResult{
		Success:      runErr == nil,
		Stdout:       stdout.String(),
		Stderr:       stderr.String(),
		AvailableNow: b.Available(),
	}, nil
}
