// Package orchestrate coordinates the script and native backends into the
// bridge's high-level operations.
package orchestrate

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantalab/mirrorbridge/core/backend"
	"github.com/quantalab/mirrorbridge/core/config"
	"github.com/quantalab/mirrorbridge/core/logging"
)

// Retro bootstrap anchors. The retro chain is always seeded from the
// genesis date against the archived origin site.
const (
	RetroGenesisDate = "2009-01-03"
	RetroSeedURL     = "https://bitcoin.org"
)

// synthesisMineCount is the block batch mined during a synthesis run.
const synthesisMineCount = 5

// Orchestrator routes operations to the script or native backend and
// composes multi-step runs.
type Orchestrator struct {
	cfg    *config.Resolved
	script *backend.ScriptBackend
	native *backend.NativeBackend
	log    zerolog.Logger

	// energyDone observes the deferred energy-sensor result. Dispatch
	// status does not depend on it.
	energyDone func(backend.Result)
}

func New(cfg *config.Resolved) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		script: backend.NewScriptBackend(cfg),
		native: backend.NewNativeBackend(cfg),
		log:    logging.For("orchestrate"),
	}
}

// NativeAvailable reports whether the native core binary can be invoked.
func (o *Orchestrator) NativeAvailable() bool {
	return o.native.Available()
}

// BuildNative runs the native core build step.
func (o *Orchestrator) BuildNative() (backend.BuildResult, error) {
	return o.native.Build()
}

// MineBlocks mines a batch of blocks. The native core is used only when
// requested and actually available; otherwise the miner script runs, with
// no error surfaced for the downgrade.
func (o *Orchestrator) MineBlocks(count int, preferNative bool) backend.Result {
	batch := strconv.Itoa(count)
	if preferNative && o.native.Available() {
		return o.native.Invoke(config.ModeMine, []string{batch})
	}
	if preferNative {
		o.log.Debug().Msg("native core unavailable, falling back to miner script")
	}
	return o.script.Invoke(config.ScriptMirrorMiner, []string{batch})
}

// AICycle runs one agent reasoning cycle on the native core.
func (o *Orchestrator) AICycle() backend.Result {
	return o.native.Invoke(config.ModeAICycle, nil)
}

// RetroBootstrap seeds the retro chain from an archived site at a past
// date. The wormhole flag asks the script to link the retro chain back
// into the mirror chain. Empty date or url fall back to the genesis
// anchors.
func (o *Orchestrator) RetroBootstrap(date, url string, wormhole bool) backend.Result {
	if date == "" {
		date = RetroGenesisDate
	}
	if url == "" {
		url = RetroSeedURL
	}
	args := []string{}
	if wormhole {
		args = append(args, "--wormhole")
	}
	args = append(args, date, url)
	return o.script.Invoke(config.ScriptRetroPastnet, args)
}

// SupplySnapshot recomputes the mirror supply tables.
func (o *Orchestrator) SupplySnapshot() backend.Result {
	return o.script.Invoke(config.ScriptMirrorSupply, nil)
}

// ExportReport regenerates the timeline report document.
func (o *Orchestrator) ExportReport() backend.Result {
	return o.script.Invoke(config.ScriptExportReport, nil)
}

// ShowMirrorChain prints the mirror chain via its formatter script.
func (o *Orchestrator) ShowMirrorChain() backend.Result {
	return o.script.Invoke(config.ScriptShowMirrorChain, nil)
}

// ShowRetroChain prints the retro chain via its formatter script.
func (o *Orchestrator) ShowRetroChain() backend.Result {
	return o.script.Invoke(config.ScriptShowChain, nil)
}

// Step names reported by Synthesis, in execution order.
const (
	StepMining       = "mining"
	StepAICycle      = "ai_cycle"
	StepRetro        = "retro"
	StepSupply       = "supply"
	StepReport       = "report"
	StepEnergySensor = "energy_sensor"
)

// Step statuses.
const (
	StatusOK         = "ok"
	StatusFailed     = "failed"
	StatusBackground = "running_in_background"
)

// StepResult records the outcome of one synthesis step.
type StepResult struct {
	Name   string          `json:"name"`
	Status string          `json:"status"`
	Result *backend.Result `json:"result,omitempty"`
}

// SynthesisReport lists every step of a synthesis run in order.
type SynthesisReport struct {
	Steps []StepResult `json:"steps"`
}

// Failed reports whether any foreground step failed.
func (r SynthesisReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Synthesis runs the full composite sequence: mine a block batch with the
// miner script, run an AI cycle, bootstrap the retro chain with a wormhole
// link, refresh the supply tables, regenerate the report, then hand off to
// the energy sensor. Every step runs regardless of earlier failures; each
// outcome is recorded in order.
func (o *Orchestrator) Synthesis() SynthesisReport {
	report := SynthesisReport{}
	record := func(name string, res backend.Result) {
		status := StatusOK
		if res.Failed() {
			status = StatusFailed
		}
		o.log.Info().Str("step", name).Str("status", status).Msg("synthesis step")
		report.Steps = append(report.Steps, StepResult{Name: name, Status: status, Result: &res})
	}

	record(StepMining, o.MineBlocks(synthesisMineCount, false))
	record(StepAICycle, o.AICycle())
	record(StepRetro, o.RetroBootstrap(RetroGenesisDate, RetroSeedURL, true))
	record(StepSupply, o.SupplySnapshot())
	record(StepReport, o.ExportReport())
	report.Steps = append(report.Steps, o.DispatchEnergySensor())
	return report
}

// DispatchEnergySensor starts the energy sensor on the native core without
// waiting for it. The step is reported as running in the background even
// when the deferred invocation later fails; the outcome only reaches the
// log (and the observer hook, when set).
func (o *Orchestrator) DispatchEnergySensor() StepResult {
	go func() {
		res := o.native.Invoke(config.ModeEnergy, nil)
		if res.Failed() {
			o.log.Warn().Str("error", res.Err).Str("stderr", res.Stderr).Msg("energy sensor failed")
		} else {
			o.log.Info().Msg("energy sensor finished")
		}
		if o.energyDone != nil {
			o.energyDone(res)
		}
	}()
	return StepResult{Name: StepEnergySensor, Status: StatusBackground}
}

// reportPreviewLines bounds the report excerpt in a unified report.
const reportPreviewLines = 10

// UnifiedReport summarizes the bridge's data files: chain lengths plus the
// opening lines of the timeline report. Missing files count as empty.
type UnifiedReport struct {
	MirrorBlocks  int      `json:"mirrorBlocks"`
	RetroEntries  int      `json:"retroEntries"`
	ReportPath    string   `json:"reportPath"`
	ReportPreview []string `json:"reportPreview"`
}

func (o *Orchestrator) UnifiedReport() UnifiedReport {
	rep := UnifiedReport{
		MirrorBlocks:  countLines(o.cfg.DataFile(config.DataMirrorChain)),
		RetroEntries:  countLines(o.cfg.DataFile(config.DataRetroChain)),
		ReportPath:    o.cfg.DataFile(config.DataTimelineReport),
		ReportPreview: []string{},
	}
	f, err := os.Open(rep.ReportPath)
	if err != nil {
		return rep
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(rep.ReportPreview) < reportPreviewLines {
		rep.ReportPreview = append(rep.ReportPreview, scanner.Text())
	}
	return rep
}

// countLines counts non-blank lines in a jsonl chain file.
func countLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n
}
