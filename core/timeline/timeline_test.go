package timeline

import (
	"os"
	"path/filepath"
	"testing"

	berrors "github.com/quantalab/mirrorbridge/core/errors"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write timeline config: %v", err)
	}
	return path
}

func TestLoadValidDocument(t *testing.T) {
	path := writeDoc(t, `{
		"timelineId": "tl-2009",
		"snapshotVersion": "v3",
		"mode": "wormhole",
		"wormholeSeed": "genesis",
		"appBindings": {"explorer": {"endpoint": "http://localhost:8080"}}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TimelineID != "tl-2009" || cfg.Mode != "wormhole" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AppBindings["explorer"]["endpoint"] != "http://localhost:8080" {
		t.Fatalf("bindings not decoded: %+v", cfg.AppBindings)
	}
}

func TestLoadDefaultsBindingsToEmpty(t *testing.T) {
	path := writeDoc(t, `{
		"timelineId": "tl",
		"snapshotVersion": "v1",
		"mode": "replay",
		"wormholeSeed": "seed"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppBindings == nil || len(cfg.AppBindings) != 0 {
		t.Fatalf("appBindings should default to empty map: %+v", cfg.AppBindings)
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultPath))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	berr, ok := err.(berrors.BridgeError)
	if !ok || berr.Code != berrors.EInvalidInput {
		t.Fatalf("expected %s, got %v", berrors.EInvalidInput, err)
	}
}

func TestLoadRejectsIncompleteDocuments(t *testing.T) {
	for name, body := range map[string]string{
		"missing-field": `{"timelineId": "tl", "snapshotVersion": "v1", "mode": "replay"}`,
		"empty-field":   `{"timelineId": "", "snapshotVersion": "v1", "mode": "replay", "wormholeSeed": "s"}`,
		"not-an-object": `["timelineId"]`,
		"bad-bindings":  `{"timelineId": "tl", "snapshotVersion": "v1", "mode": "replay", "wormholeSeed": "s", "appBindings": ["x"]}`,
	} {
		path := writeDoc(t, body)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
