// Package manifests orchestrates manifest generation: it aggregates record
// streams, joins image groups with correction groups, synthesizes per-group
// load-data manifests, and writes them out with optional blob archival.
package manifests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"platebind/pkg/domain"
)

// Writer persists manifests as CSV files under a base directory. Writes go
// through a temp file and rename so readers never observe a partial manifest;
// rewriting the same group replaces the previous file.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed and returns a Writer.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.WriteError{Path: dir, Err: err}
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the base output directory.
func (w *Writer) Dir() string { return w.dir }

// ManifestPath returns the destination path for a group's manifest.
func (w *Writer) ManifestPath(groupID string) string {
	return filepath.Join(w.dir, sanitizeName(groupID)+".csv")
}

// FileListPath returns the destination path for a group's file list.
func (w *Writer) FileListPath(groupID string) string {
	return filepath.Join(w.dir, sanitizeName(groupID)+"_files.json")
}

// WriteManifest renders the manifest to CSV and moves it into place.
func (w *Writer) WriteManifest(manifest domain.Manifest) (string, error) {
	dest := w.ManifestPath(manifest.GroupID)
	if err := w.writeAtomic(dest, []byte(manifest.CSV())); err != nil {
		return "", err
	}
	return dest, nil
}

// WriteFileList persists the staging file list as indented JSON next to the manifest.
func (w *Writer) WriteFileList(list domain.FileList) (string, error) {
	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", domain.WriteError{Path: w.FileListPath(list.GroupID), Err: err}
	}
	dest := w.FileListPath(list.GroupID)
	if err := w.writeAtomic(dest, append(payload, '\n')); err != nil {
		return "", err
	}
	return dest, nil
}

func (w *Writer) writeAtomic(dest string, payload []byte) error {
	tmp, err := os.CreateTemp(w.dir, ".tmp-*")
	if err != nil {
		return domain.WriteError{Path: dest, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return domain.WriteError{Path: dest, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.WriteError{Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return domain.WriteError{Path: dest, Err: err}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return domain.WriteError{Path: dest, Err: err}
	}
	return nil
}

// sanitizeName keeps group-derived file names within the output directory.
func sanitizeName(name string) string {
	if name == "" {
		return "group"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "._") == "" {
		return fmt.Sprintf("group_%x", name)
	}
	return out
}
