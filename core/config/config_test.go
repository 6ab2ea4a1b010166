package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	bridgeerrors "github.com/quantalab/mirrorbridge/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirror_config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveMissingFileEqualsEmptyDocument(t *testing.T) {
	missing, err := Resolve(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("resolve missing: %v", err)
	}
	empty, err := Resolve(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("resolve empty: %v", err)
	}

	a, _ := json.Marshal(missing.Document)
	b, _ := json.Marshal(empty.Document)
	if string(a) != string(b) {
		t.Fatalf("missing file and empty document diverged:\n%s\n%s", a, b)
	}

	defaults := Defaults()
	if missing.Document.NativeLayer.BuildTarget != defaults.NativeLayer.BuildTarget {
		t.Fatalf("defaults not applied: %+v", missing.Document.NativeLayer)
	}
}

func TestResolveContainsEveryDefaultKey(t *testing.T) {
	r, err := Resolve(writeConfig(t, `{"scriptRegistry":{"mirror_miner":"custom_miner.py"}}`))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	defaults := Defaults()
	for name := range defaults.ScriptRegistry {
		if _, ok := r.Document.ScriptRegistry[name]; !ok {
			t.Fatalf("default script %q dropped by merge", name)
		}
	}
	for name := range defaults.DataFiles {
		if _, ok := r.Document.DataFiles[name]; !ok {
			t.Fatalf("default data file %q dropped by merge", name)
		}
	}
	if r.Document.ScriptRegistry[ScriptMirrorMiner] != "custom_miner.py" {
		t.Fatalf("document value did not win: %q", r.Document.ScriptRegistry[ScriptMirrorMiner])
	}
}

func TestResolveMergesNestedMappingsRecursively(t *testing.T) {
	// Overriding one nested leaf must not erase sibling defaults.
	r, err := Resolve(writeConfig(t, `{"nativeLayer":{"binary":"build/qubist_core"}}`))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Document.NativeLayer.Binary != "build/qubist_core" {
		t.Fatalf("nested override lost: %+v", r.Document.NativeLayer)
	}
	if r.Document.NativeLayer.BuildTarget != "qubist" {
		t.Fatalf("sibling default erased: %+v", r.Document.NativeLayer)
	}
	if len(r.Document.NativeLayer.Modes) == 0 {
		t.Fatal("mode defaults erased")
	}
}

func TestResolvePromotesLegacyScriptShape(t *testing.T) {
	r, err := Resolve(writeConfig(t, `{"python":{"scripts":{"mirror_miner":"old_miner.py"}}}`))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Document.ScriptRegistry[ScriptMirrorMiner] != "old_miner.py" {
		t.Fatalf("legacy scripts not promoted: %+v", r.Document.ScriptRegistry)
	}
	if r.Document.ScriptRegistry[ScriptExportReport] != "export_report.py" {
		t.Fatal("promotion replaced registry instead of merging over defaults")
	}
}

func TestResolvePromotesLegacyBinaryKey(t *testing.T) {
	r, err := Resolve(writeConfig(t, `{"qubistCore":"legacy_core"}`))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Document.NativeLayer.Binary != "legacy_core" {
		t.Fatalf("legacy binary not promoted: %+v", r.Document.NativeLayer)
	}
	if r.Document.NativeLayer.BuildTarget != "qubist" {
		t.Fatal("nested defaults lost during promotion")
	}
}

func TestResolveRejectsMalformedDocument(t *testing.T) {
	_, err := Resolve(writeConfig(t, `{not json`))
	var berr bridgeerrors.BridgeError
	if !errors.As(err, &berr) || berr.Code != bridgeerrors.EConfig {
		t.Fatalf("expected E_CONFIG, got %v", err)
	}

	_, err = Resolve(writeConfig(t, `[1,2,3]`))
	if !errors.As(err, &berr) || berr.Code != bridgeerrors.EConfig {
		t.Fatalf("expected E_CONFIG for non-object, got %v", err)
	}
}

func TestResolveRejectsWrongSectionTypes(t *testing.T) {
	_, err := Resolve(writeConfig(t, `{"scriptRegistry":{"mirror_miner":42}}`))
	var berr bridgeerrors.BridgeError
	if !errors.As(err, &berr) || berr.Code != bridgeerrors.EConfig {
		t.Fatalf("expected E_CONFIG for typed section mismatch, got %v", err)
	}
}

func TestSaveKeepsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"operatorNote":"keep me","scriptRegistry":{"mirror_miner":"m.py"}}`)
	r, err := Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := r.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if round["operatorNote"] != "keep me" {
		t.Fatalf("unknown key dropped on save: %v", round)
	}
	if _, ok := round["dataFiles"]; !ok {
		t.Fatal("merged defaults missing from saved document")
	}
}

func TestPathHelpers(t *testing.T) {
	path := writeConfig(t, `{}`)
	r, err := Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	script, ok := r.ScriptPath(ScriptMirrorSupply)
	if !ok {
		t.Fatal("expected registered script")
	}
	if script != filepath.Join(r.Root, "mirror_supply.py") {
		t.Fatalf("unexpected script path: %s", script)
	}
	if _, ok := r.ScriptPath("unknown"); ok {
		t.Fatal("unknown script resolved")
	}

	if got := r.DataFile(DataAgentsLedger); got != filepath.Join(r.Root, "agents_ledger.json") {
		t.Fatalf("unexpected ledger path: %s", got)
	}
	if got := r.DataFile("nope"); got != "" {
		t.Fatalf("unknown data file resolved: %s", got)
	}

	if !r.KnownMode(ModeMine) || r.KnownMode("teleport") {
		t.Fatal("mode membership check broken")
	}
}
