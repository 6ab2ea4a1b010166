// Package ledger models the agent ledger and produces snapshot exports.
//
// The ledger document on disk is best-effort input: a missing, unreadable,
// or structurally invalid file degrades to the built-in seed agents rather
// than failing the export. Only the final write can produce an error.
package ledger

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
)

// Agent statuses derived from the AI unlock flag when the ledger entry
// does not carry an explicit status.
const (
	StatusActive  = "active"
	StatusPending = "pending"
)

// specialtyFallback labels agents whose ledger entry carries neither a
// specialty, a meta.specialty hint, nor a description.
const specialtyFallback = "generalist"

// Agent is one enriched ledger entry as it appears in a snapshot.
type Agent struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Balance     float64        `json:"balance"`
	AIUnlocked  bool           `json:"aiUnlocked"`
	Description string         `json:"description"`
	Specialty   string         `json:"specialty"`
	Status      string         `json:"status"`
	Owner       string         `json:"owner,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// SeedAgents returns the two bootstrap agents used whenever the ledger
// document is absent or unusable.
func SeedAgents() []Agent {
	return []Agent{
		{
			ID:          "bot_satoshi_mirror",
			Name:        "Satoshi Mirror Bot",
			Balance:     0.0,
			AIUnlocked:  false,
			Description: "Mirror mining and early-economy bookkeeping.",
			Specialty:   "consensus protocols and mirror mining",
			Status:      StatusPending,
			Meta:        map[string]any{"epochOrigin": "2009"},
		},
		{
			ID:          "bot_archivist_2009",
			Name:        "Archivist 2009",
			Balance:     275.0,
			AIUnlocked:  true,
			Description: "Reads and synthesizes archived bitcoin.org material.",
			Specialty:   "historical curation and document analysis",
			Status:      StatusActive,
			Meta:        map[string]any{"epochOrigin": "2009"},
		},
	}
}

// agentFromEntry builds an enriched Agent from one raw ledger entry,
// applying the coercion and fallback rules for balance, specialty and
// status. Entries without an id are rejected by schema validation before
// this point.
func agentFromEntry(entry map[string]any) Agent {
	a := Agent{
		ID:          stringField(entry, "id"),
		Name:        stringField(entry, "name"),
		Balance:     balanceField(entry["balance"]),
		AIUnlocked:  boolField(entry["aiUnlocked"]),
		Description: stringField(entry, "description"),
		Owner:       stringField(entry, "owner"),
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	if meta, ok := entry["meta"].(map[string]any); ok {
		a.Meta = meta
	}
	a.Specialty = resolveSpecialty(entry, a)
	a.Status = stringField(entry, "status")
	if a.Status == "" {
		if a.AIUnlocked {
			a.Status = StatusActive
		} else {
			a.Status = StatusPending
		}
	}
	return a
}

// resolveSpecialty picks the first available source: the explicit field,
// a meta.specialty hint, the description, then the generic fallback.
func resolveSpecialty(entry map[string]any, a Agent) string {
	if s := stringField(entry, "specialty"); s != "" {
		return s
	}
	if a.Meta != nil {
		if s, ok := a.Meta["specialty"].(string); ok && s != "" {
			return s
		}
	}
	if a.Description != "" {
		return a.Description
	}
	return specialtyFallback
}

// balanceField coerces any JSON value to a non-negative balance. Numbers
// pass through, numeric strings are parsed, everything else is zero.
func balanceField(v any) float64 {
	var b float64
	switch t := v.(type) {
	case float64:
		b = t
	case json.Number:
		b, _ = t.Float64()
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		b = parsed
	default:
		return 0
	}
	if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return 0
	}
	return b
}

func stringField(entry map[string]any, key string) string {
	s, _ := entry[key].(string)
	return s
}

func boolField(v any) bool {
	b, _ := v.(bool)
	return b
}

// Load reads and parses the ledger document at path. Any failure to
// obtain a schema-valid document yields the seed agents; validate reports
// structural validity of the raw bytes.
func Load(path string, validate func([]byte) error) []Agent {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedAgents()
	}
	if err := validate(raw); err != nil {
		return SeedAgents()
	}
	var doc struct {
		Agents []map[string]any `json:"agents"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return SeedAgents()
	}
	agents := make([]Agent, 0, len(doc.Agents))
	for _, entry := range doc.Agents {
		agents = append(agents, agentFromEntry(entry))
	}
	if len(agents) == 0 {
		return SeedAgents()
	}
	return agents
}
