package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, fixedNow)
	return code, stdout.String(), stderr.String()
}

func TestVersionDefault(t *testing.T) {
	code, out, _ := runCLI(t)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "mirrorbridge dev") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestVersionJSON(t *testing.T) {
	code, out, _ := runCLI(t, "version", "--json")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if payload["version"] != "dev" {
		t.Fatalf("version = %q", payload["version"])
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "teleport")
	if code != 6 {
		t.Fatalf("exit = %d, want 6 for invalid input", code)
	}
	if !strings.Contains(errOut, "unknown command") {
		t.Fatalf("stderr: %q", errOut)
	}
}

func TestUnknownCommandJSONEnvelope(t *testing.T) {
	code, _, errOut := runCLI(t, "teleport", "--json")
	if code != 6 {
		t.Fatalf("exit = %d", code)
	}
	var envelope map[string]any
	if err := json.Unmarshal([]byte(errOut), &envelope); err != nil {
		t.Fatalf("decode envelope %q: %v", errOut, err)
	}
	if envelope["code"] != "E_INVALID_INPUT" || envelope["exit_code"] != float64(6) {
		t.Fatalf("unexpected envelope: %v", envelope)
	}
}

func TestExplain(t *testing.T) {
	code, out, _ := runCLI(t, "synthesis", "--explain")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "composite synthesis") {
		t.Fatalf("unexpected explain: %q", out)
	}
}

func TestHelpListsCommands(t *testing.T) {
	code, out, _ := runCLI(t, "help")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, cmd := range []string{"mine", "synthesis", "export-ledger", "serve", "timeline"} {
		if !strings.Contains(out, cmd) {
			t.Fatalf("help missing %q: %q", cmd, out)
		}
	}
}

func TestMineRequiresBlockCount(t *testing.T) {
	code, _, errOut := runCLI(t, "mine")
	if code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
	if !strings.Contains(errOut, "usage: mirrorbridge mine") {
		t.Fatalf("stderr: %q", errOut)
	}
}

func TestMineRejectsNonNumericBlocks(t *testing.T) {
	code, _, _ := runCLI(t, "mine", "many")
	if code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
}

func TestExportLedgerEndToEnd(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "mirror_config.json")
	out := filepath.Join(root, "snapshot.json")

	code, stdout, errOut := runCLI(t, "export-ledger", "--config", cfgPath, "--out", out, "--json")
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut)
	}

	var result struct {
		Path       string `json:"path"`
		AgentCount int    `json:"agentCount"`
		Digest     string `json:"digest"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode result %q: %v", stdout, err)
	}
	if result.AgentCount != 2 || result.Digest == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
}

func TestStatusOnEmptyRoot(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "mirror_config.json")

	code, out, _ := runCLI(t, "status", "--config", cfgPath)
	if code != 1 {
		t.Fatalf("exit = %d, want 1 for unhealthy system", code)
	}
	if !strings.Contains(out, "not built") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigShowIncludesDefaults(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "mirror_config.json")

	code, out, errOut := runCLI(t, "config", "show", "--config", cfgPath)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut)
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	for _, key := range []string{"scriptRegistry", "nativeLayer", "dataFiles"} {
		if _, ok := tree[key]; !ok {
			t.Fatalf("missing section %q in %v", key, tree)
		}
	}
}

func TestConfigSaveWritesFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "mirror_config.json")

	code, _, errOut := runCLI(t, "config", "save", "--config", cfgPath)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut)
	}
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(raw), "scriptRegistry") {
		t.Fatalf("saved config incomplete: %q", raw)
	}
}

func TestServeRequiresUpstreamURL(t *testing.T) {
	t.Setenv("MIRROR_RPC_URL", "")
	code, _, errOut := runCLI(t, "serve")
	if code != 2 {
		t.Fatalf("exit = %d, want 2 for config error", code)
	}
	if !strings.Contains(errOut, "upstream rpc url") {
		t.Fatalf("stderr: %q", errOut)
	}
}

func TestTimelineMissingFile(t *testing.T) {
	code, _, _ := runCLI(t, "timeline", "--path", filepath.Join(t.TempDir(), "missing.json"))
	if code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
}
