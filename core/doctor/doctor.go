// Package doctor inspects the bridge's working state: data files, the
// native core, and the script registry.
package doctor

import (
	"os"
	"sort"

	"github.com/quantalab/mirrorbridge/core/config"
	"github.com/quantalab/mirrorbridge/core/fsx"
)

// FileStatus describes one configured data file on disk.
type FileStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Size   int64  `json:"size"`
}

// ScriptStatus describes one registered script on disk.
type ScriptStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Report is the full system inspection result.
type Report struct {
	Root            string         `json:"root"`
	DataFiles       []FileStatus   `json:"dataFiles"`
	NativeBinary    string         `json:"nativeBinary"`
	NativeAvailable bool           `json:"nativeAvailable"`
	Scripts         []ScriptStatus `json:"scripts"`
}

// Healthy reports whether every script is present and the native core is
// built. Missing data files are normal on a fresh checkout and do not
// count against health.
func (r Report) Healthy() bool {
	if !r.NativeAvailable {
		return false
	}
	for _, s := range r.Scripts {
		if !s.Exists {
			return false
		}
	}
	return true
}

// Inspect walks the resolved configuration and checks each referenced
// artifact on disk. Entries come back sorted by logical name.
func Inspect(cfg *config.Resolved) Report {
	rep := Report{
		Root:            cfg.Root,
		NativeBinary:    cfg.BinaryPath(),
		NativeAvailable: fsx.IsExecutable(cfg.BinaryPath()),
	}

	for name := range cfg.Document.DataFiles {
		path := cfg.DataFile(name)
		st := FileStatus{Name: name, Path: path}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			st.Exists = true
			st.Size = info.Size()
		}
		rep.DataFiles = append(rep.DataFiles, st)
	}
	sort.Slice(rep.DataFiles, func(i, j int) bool {
		return rep.DataFiles[i].Name < rep.DataFiles[j].Name
	})

	for name := range cfg.Document.ScriptRegistry {
		st := ScriptStatus{Name: name}
		if path, ok := cfg.ScriptPath(name); ok {
			st.Path = path
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				st.Exists = true
			}
		}
		rep.Scripts = append(rep.Scripts, st)
	}
	sort.Slice(rep.Scripts, func(i, j int) bool {
		return rep.Scripts[i].Name < rep.Scripts[j].Name
	})

	return rep
}
