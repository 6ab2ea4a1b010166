package config

// Logical script names recognized by the bridge.
const (
	ScriptExportReport    = "export_report"
	ScriptMirrorMiner     = "mirror_miner"
	ScriptMirrorSupply    = "mirror_supply"
	ScriptRetroPastnet    = "retro_pastnet"
	ScriptShowChain       = "show_chain"
	ScriptShowMirrorChain = "show_mirror_chain"
)

// Logical data-file names.
const (
	DataMirrorChain    = "mirror_chain"
	DataRetroChain     = "retro_chain"
	DataRetroIdentity  = "retro_identity"
	DataTimelineReport = "timeline_report"
	DataAgentsLedger   = "agents_ledger"
)

// Native core mode keywords.
const (
	ModeMine             = "mine"
	ModeAICycle          = "ai_cycle"
	ModeEnergy           = "energy"
	ModeQuantumSynthesis = "quantum_synthesis"
	ModeAddAgent         = "add_agent"
)

// Defaults returns the compiled-in configuration. Every key here is
// guaranteed to be present in any resolved configuration.
func Defaults() Document {
	return Document{
		ScriptRegistry: map[string]string{
			ScriptExportReport:    "export_report.py",
			ScriptMirrorMiner:     "mirror_miner.py",
			ScriptMirrorSupply:    "mirror_supply.py",
			ScriptRetroPastnet:    "retro_pastnet.py",
			ScriptShowChain:       "show_chain.py",
			ScriptShowMirrorChain: "show_mirror_chain.py",
		},
		NativeLayer: NativeLayer{
			Binary:      "satoshi_mirror",
			Modes:       []string{ModeMine, ModeAICycle, ModeEnergy, ModeQuantumSynthesis, ModeAddAgent},
			BuildTarget: "qubist",
		},
		DataFiles: map[string]string{
			DataMirrorChain:    "mirror_chain.jsonl",
			DataRetroChain:     "retro_chain.jsonl",
			DataRetroIdentity:  "retro_identity.json",
			DataTimelineReport: "timeline_report.md",
			DataAgentsLedger:   "agents_ledger.json",
		},
	}
}

func defaultTree() map[string]any {
	doc := Defaults()
	tree := map[string]any{
		"scriptRegistry": map[string]any{},
		"nativeLayer": map[string]any{
			"binary":      doc.NativeLayer.Binary,
			"buildTarget": doc.NativeLayer.BuildTarget,
		},
		"dataFiles": map[string]any{},
	}
	for name, rel := range doc.ScriptRegistry {
		tree["scriptRegistry"].(map[string]any)[name] = rel
	}
	for name, rel := range doc.DataFiles {
		tree["dataFiles"].(map[string]any)[name] = rel
	}
	modes := make([]any, 0, len(doc.NativeLayer.Modes))
	for _, m := range doc.NativeLayer.Modes {
		modes = append(modes, m)
	}
	tree["nativeLayer"].(map[string]any)["modes"] = modes
	return tree
}
