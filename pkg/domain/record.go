// Package domain defines the metadata records, grouping keys, manifest value
// types, and error kinds shared across platebind.
package domain

import "strings"

// Well-known metadata keys. Records may carry arbitrary additional keys;
// grouping and joining only ever read the keys they are configured with.
const (
	KeyBatch            = "batch"
	KeyPlate            = "plate"
	KeyWell             = "well"
	KeySite             = "site"
	KeyCycle            = "cycle"
	KeyArm              = "arm"
	KeyChannels         = "channels"
	KeyOriginalChannels = "original_channels"
)

// Record is an immutable string-keyed metadata mapping. Values are scalars;
// the channels value may be a comma-joined list sharing one physical file.
type Record map[string]string

// Lookup returns the value for key and whether it is present and non-empty.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Has reports whether key is present with a non-empty value.
func (r Record) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Channels splits the record's channels value on commas, trimming whitespace.
// A single-channel record yields a one-element slice.
func (r Record) Channels() []string {
	raw, ok := r.Lookup(KeyChannels)
	if !ok {
		return nil
	}
	return SplitChannels(raw)
}

// SplitChannels splits a comma-joined channel list, trimming each name.
func SplitChannels(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ImageRecord pairs image metadata with the physical file it references.
// Several ImageRecords may reference the same file: a multi-channel
// acquisition split into single-channel records keeps the original file and
// marks itself with the original_channels key.
type ImageRecord struct {
	Meta Record `json:"meta"`
	File string `json:"file"`
}

// CorrectionArtifact pairs a correction file with the metadata subset its
// producer tagged it with (canonically batch and plate, sometimes cycle).
// The file name encodes the channel: <group>_Illum<Channel>.<ext>.
type CorrectionArtifact struct {
	Meta Record `json:"meta"`
	File string `json:"file"`
}
