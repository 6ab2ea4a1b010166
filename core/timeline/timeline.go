// Package timeline loads the time-machine configuration document. Unlike
// the layered bridge configuration, this document is strict: a missing
// file or a missing required field is an error.
package timeline

import (
	"encoding/json"
	"fmt"
	"os"

	berrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/schema"
)

// DefaultPath is the conventional document location under the bridge root.
const DefaultPath = "timemachine_config.json"

// Config anchors a retro-chain run to one historical timeline.
type Config struct {
	TimelineID      string                    `json:"timelineId"`
	SnapshotVersion string                    `json:"snapshotVersion"`
	Mode            string                    `json:"mode"`
	WormholeSeed    string                    `json:"wormholeSeed"`
	AppBindings     map[string]map[string]any `json:"appBindings,omitempty"`
}

// Load reads and validates the document at path. Every failure maps to
// E_INVALID_INPUT except an unreadable file, which is E_IO.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, berrors.New(berrors.EInvalidInput,
				fmt.Sprintf("timeline config not found: %s", path),
				map[string]any{"path": path})
		}
		return Config{}, berrors.New(berrors.EIO,
			fmt.Sprintf("read timeline config: %v", err),
			map[string]any{"path": path})
	}

	if err := schema.ValidateBytes(schema.TimelineSchemaRel, raw); err != nil {
		return Config{}, berrors.New(berrors.EInvalidInput,
			fmt.Sprintf("timeline config invalid: %v", err),
			map[string]any{"path": path})
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, berrors.New(berrors.EInvalidInput,
			fmt.Sprintf("decode timeline config: %v", err),
			map[string]any{"path": path})
	}
	if cfg.AppBindings == nil {
		cfg.AppBindings = map[string]map[string]any{}
	}
	return cfg, nil
}
