// Package config resolves the layered bridge configuration: a JSON document
// on disk deep-merged over compiled-in defaults. A missing file is valid
// input; the defaults then apply untouched.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/fsx"
	"github.com/quantalab/mirrorbridge/core/schema"
)

const DefaultPath = "mirror_config.json"

// Legacy documents predate the scriptRegistry/nativeLayer layout: the script
// map lived under python.scripts and the native binary under a flat
// qubistCore key. Both shapes are promoted before merging.
const (
	legacyScriptsParent = "python"
	legacyScriptsKey    = "scripts"
	legacyBinaryKey     = "qubistCore"
)

type NativeLayer struct {
	Binary      string   `json:"binary"`
	Modes       []string `json:"modes"`
	BuildTarget string   `json:"buildTarget"`
}

type Document struct {
	ScriptRegistry map[string]string `json:"scriptRegistry"`
	NativeLayer    NativeLayer       `json:"nativeLayer"`
	DataFiles      map[string]string `json:"dataFiles"`
}

// Resolved is the merged configuration. Document holds the typed view used by
// the rest of the system; raw keeps the full merged tree, including unknown
// user keys, so Save never drops them.
type Resolved struct {
	Path     string
	Root     string
	Document Document

	raw map[string]any
}

// Resolve loads the document at path and merges it over the defaults. Only an
// unparseable file or a non-object top level is an error; a missing file
// yields the defaults.
func Resolve(path string) (*Resolved, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	abs, err := fsx.NormalizePath(path)
	if err != nil {
		return nil, bridgeerrors.New(bridgeerrors.EConfig, "invalid config path", map[string]any{"path": path, "error": err.Error()})
	}

	loaded := map[string]any{}
	raw, readErr := os.ReadFile(abs)
	switch {
	case readErr == nil:
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, bridgeerrors.New(bridgeerrors.EConfig, "config is not valid JSON", map[string]any{"path": abs, "error": err.Error()})
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, bridgeerrors.New(bridgeerrors.EConfig, "config top level must be an object", map[string]any{"path": abs})
		}
		loaded = obj
	case errors.Is(readErr, os.ErrNotExist):
		// defaults apply
	default:
		return nil, bridgeerrors.New(bridgeerrors.EConfig, "read config", map[string]any{"path": abs, "error": readErr.Error()})
	}

	promoteLegacyShapes(loaded)

	if err := schema.ValidateValue(schema.ConfigSchemaRel, any(loaded)); err != nil {
		return nil, bridgeerrors.New(bridgeerrors.EConfig, "config document shape invalid", map[string]any{"path": abs, "error": err.Error()})
	}

	merged := overlay(defaultTree(), loaded)

	doc, err := decodeDocument(merged)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Path:     abs,
		Root:     filepath.Dir(abs),
		Document: doc,
		raw:      merged,
	}, nil
}

// Save re-serializes the merged tree back to the source path, pretty-printed.
func (r *Resolved) Save() error {
	raw, err := json.MarshalIndent(r.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := fsx.AtomicWriteFile(r.Path, append(raw, '\n'), 0o600); err != nil {
		return bridgeerrors.New(bridgeerrors.EIO, "write config", map[string]any{"path": r.Path, "error": err.Error()})
	}
	return nil
}

// Raw exposes the merged tree for pass-through consumers.
func (r *Resolved) Raw() map[string]any {
	return r.raw
}

// ScriptPath resolves a registered script name to an absolute path.
func (r *Resolved) ScriptPath(name string) (string, bool) {
	rel, ok := r.Document.ScriptRegistry[name]
	if !ok || strings.TrimSpace(rel) == "" {
		return "", false
	}
	return r.resolve(rel), true
}

// DataFile resolves a logical data-file name to an absolute path, or "" when
// the name is not configured.
func (r *Resolved) DataFile(name string) string {
	rel, ok := r.Document.DataFiles[name]
	if !ok || strings.TrimSpace(rel) == "" {
		return ""
	}
	return r.resolve(rel)
}

// BinaryPath resolves the native core binary location.
func (r *Resolved) BinaryPath() string {
	return r.resolve(r.Document.NativeLayer.Binary)
}

// KnownMode reports whether the native layer recognizes the mode keyword.
func (r *Resolved) KnownMode(mode string) bool {
	for _, m := range r.Document.NativeLayer.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (r *Resolved) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(r.Root, rel)
}

// overlay deep-merges the loaded document over the defaults: every default
// key survives, nested mappings merge child by child, and loaded leaf values
// win outright. Keys the user added outside the defaults are carried along.
func overlay(defaults, loaded map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(loaded))
	for k, v := range loaded {
		out[k] = cloneValue(v)
	}
	for k, dv := range defaults {
		lv, present := out[k]
		if !present {
			out[k] = cloneValue(dv)
			continue
		}
		dm, dok := dv.(map[string]any)
		lm, lok := lv.(map[string]any)
		if dok && lok {
			out[k] = overlay(dm, lm)
		}
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = cloneValue(typed[i])
		}
		return out
	default:
		return v
	}
}

func promoteLegacyShapes(loaded map[string]any) {
	if _, ok := loaded["scriptRegistry"]; !ok {
		if parent, ok := loaded[legacyScriptsParent].(map[string]any); ok {
			if scripts, ok := parent[legacyScriptsKey].(map[string]any); ok {
				loaded["scriptRegistry"] = cloneValue(scripts)
				delete(parent, legacyScriptsKey)
				if len(parent) == 0 {
					delete(loaded, legacyScriptsParent)
				}
			}
		}
	}

	if binary, ok := loaded[legacyBinaryKey].(string); ok {
		native, _ := loaded["nativeLayer"].(map[string]any)
		if native == nil {
			native = map[string]any{}
		}
		if _, ok := native["binary"]; !ok {
			native["binary"] = binary
		}
		loaded["nativeLayer"] = native
		delete(loaded, legacyBinaryKey)
	}
}

func decodeDocument(merged map[string]any) (Document, error) {
	normalized, err := json.Marshal(merged)
	if err != nil {
		return Document{}, fmt.Errorf("normalize config: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return Document{}, bridgeerrors.New(bridgeerrors.EConfig, "decode config sections", map[string]any{"error": err.Error()})
	}
	return doc, nil
}
