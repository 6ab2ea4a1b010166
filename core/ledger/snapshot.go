package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/quantalab/mirrorbridge/core/config"
	berrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/fsx"
	"github.com/quantalab/mirrorbridge/core/jcs"
	"github.com/quantalab/mirrorbridge/core/logging"
	"github.com/quantalab/mirrorbridge/core/schema"
)

// lockedShare is the fraction of the total balance reported as locked.
const lockedShare = 0.26

// generatedAtLayout renders UTC timestamps at second precision.
const generatedAtLayout = "2006-01-02T15:04:05Z"

// Metrics summarizes the agent population for one snapshot.
type Metrics struct {
	TotalAgents      int            `json:"totalAgents"`
	AIUnlockedAgents int            `json:"aiUnlockedAgents"`
	TotalBalance     float64        `json:"totalBalance"`
	LockedBalance    float64        `json:"lockedBalance"`
	AvailableBalance float64        `json:"availableBalance"`
	Specialties      map[string]int `json:"specialties"`
}

// Snapshot is the exported ledger document.
type Snapshot struct {
	GeneratedAt string  `json:"generatedAt"`
	Agents      []Agent `json:"agents"`
	Metrics     Metrics `json:"metrics"`
}

// ExportResult reports a completed snapshot export.
type ExportResult struct {
	Path       string `json:"path"`
	AgentCount int    `json:"agentCount"`
	Digest     string `json:"digest"`
}

// BuildSnapshot computes the snapshot for the given agents at the given
// instant. Balances are rounded to two decimals, half away from zero.
func BuildSnapshot(agents []Agent, at time.Time) Snapshot {
	m := Metrics{
		TotalAgents: len(agents),
		Specialties: map[string]int{},
	}
	var total float64
	for _, a := range agents {
		total += a.Balance
		if a.AIUnlocked {
			m.AIUnlockedAgents++
		}
		m.Specialties[a.Specialty]++
	}
	m.TotalBalance = round2(total)
	m.LockedBalance = round2(m.TotalBalance * lockedShare)
	m.AvailableBalance = round2(m.TotalBalance - m.LockedBalance)

	return Snapshot{
		GeneratedAt: at.UTC().Format(generatedAtLayout),
		Agents:      agents,
		Metrics:     m,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Export loads the ledger configured in cfg, builds a snapshot, and
// atomically writes it to outPath (or the configured ledger path when
// outPath is empty). The returned digest is the SHA-256 of the snapshot's
// canonical JSON form.
func Export(cfg *config.Resolved, outPath string, now func() time.Time) (ExportResult, error) {
	log := logging.For("ledger")

	ledgerPath := cfg.DataFile(config.DataAgentsLedger)
	agents := Load(ledgerPath, func(raw []byte) error {
		return schema.ValidateBytes(schema.LedgerSchemaRel, raw)
	})
	snap := BuildSnapshot(agents, now())

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("marshal ledger snapshot: %w", err)
	}
	if err := schema.ValidateBytes(schema.SnapshotSchemaRel, payload); err != nil {
		return ExportResult{}, fmt.Errorf("snapshot failed self-validation: %w", err)
	}

	canonical, err := jcs.Canonicalize(payload)
	if err != nil {
		return ExportResult{}, fmt.Errorf("canonicalize ledger snapshot: %w", err)
	}
	sum := sha256.Sum256(canonical)

	target := outPath
	if target == "" {
		target = ledgerPath
	}
	if err := fsx.AtomicWriteFile(target, append(payload, '\n'), 0o644); err != nil {
		return ExportResult{}, berrors.New(berrors.EIO,
			fmt.Sprintf("write ledger snapshot: %v", err),
			map[string]any{"path": target})
	}

	log.Info().
		Str("path", target).
		Int("agents", len(agents)).
		Msg("ledger snapshot exported")

	return ExportResult{
		Path:       target,
		AgentCount: len(agents),
		Digest:     hex.EncodeToString(sum[:]),
	}, nil
}
