package domain

import "strings"

// Manifest is the ordered row set generated for one joined group, plus the
// header describing its column contract. Rows are never mutated after
// synthesis; a rerun regenerates the manifest from scratch.
type Manifest struct {
	GroupID string     `json:"group_id"`
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
}

// CSV serializes the manifest. The header line is emitted verbatim; every
// row cell is wrapped in double quotes (internal quotes doubled) so commas
// inside file names survive the downstream tool's parser. This layout is an
// interoperability contract and must stay byte-stable.
func (m Manifest) CSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(m.Header, ","))
	b.WriteString("\n")
	for _, row := range m.Rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`"`)
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteString(`"`)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FileList is the per-group staging side output: the deduplicated image
// files, the correction files, and any staging subdirectory assignments.
type FileList struct {
	GroupID     string            `json:"group_id"`
	Images      []string          `json:"images"`
	Corrections []string          `json:"corrections"`
	Subdirs     map[string]string `json:"subdirs,omitempty"`
}
