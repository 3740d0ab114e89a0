// Package ingest turns acquisition directories and metadata files into the
// record streams the pipeline consumes. Filenames are only a fallback source
// of well and site values; the metadata file is authoritative.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"platebind/pkg/domain"
)

// ImageEntry is one element of the metadata image_metadata array: per-image
// well and site, with optional filename, cycle, and channel refinements.
type ImageEntry struct {
	Well     string `json:"well"`
	Site     int    `json:"site"`
	Filename string `json:"filename,omitempty"`
	Type     string `json:"type,omitempty"`
	Cycle    *int   `json:"cycle,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// Metadata is the decoded acquisition metadata. Plate is the only mandatory
// field; everything else refines grouping or channel resolution.
type Metadata struct {
	Plate    string       `json:"plate"`
	Well     string       `json:"well,omitempty"`
	Site     *int         `json:"site,omitempty"`
	Cycle    *int         `json:"cycle,omitempty"`
	Cycles   []int        `json:"cycles,omitempty"`
	Channels []string     `json:"channels,omitempty"`
	Batch    string       `json:"batch,omitempty"`
	Arm      string       `json:"arm,omitempty"`
	Images   []ImageEntry `json:"image_metadata,omitempty"`
}

// rawMetadata tolerates channels given as either a JSON list or a
// comma-separated string, and cycles given as a scalar or list.
type rawMetadata struct {
	Plate    any          `json:"plate"`
	Well     any          `json:"well"`
	Site     any          `json:"site"`
	Cycle    any          `json:"cycle"`
	Cycles   any          `json:"cycles"`
	Channels any          `json:"channels"`
	Batch    any          `json:"batch"`
	Arm      any          `json:"arm"`
	Images   []ImageEntry `json:"image_metadata"`
}

// LoadMetadata reads and validates the metadata JSON file.
func LoadMetadata(path string) (Metadata, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata %s: %w", path, err)
	}
	var raw rawMetadata
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	if raw.Plate == nil {
		return Metadata{}, fmt.Errorf("metadata %s missing required field plate", path)
	}
	meta := Metadata{
		Plate:  asString(raw.Plate),
		Well:   asString(raw.Well),
		Batch:  asString(raw.Batch),
		Arm:    asString(raw.Arm),
		Images: raw.Images,
	}
	if raw.Site != nil {
		v, err := asInt(raw.Site)
		if err != nil {
			return Metadata{}, fmt.Errorf("metadata %s: site: %w", path, err)
		}
		meta.Site = &v
	}
	if raw.Cycle != nil {
		v, err := asInt(raw.Cycle)
		if err != nil {
			return Metadata{}, fmt.Errorf("metadata %s: cycle: %w", path, err)
		}
		meta.Cycle = &v
	}
	if raw.Cycles != nil {
		cycles, err := asIntList(raw.Cycles)
		if err != nil {
			return Metadata{}, fmt.Errorf("metadata %s: cycles: %w", path, err)
		}
		meta.Cycles = cycles
	}
	if raw.Channels != nil {
		meta.Channels = asStringList(raw.Channels)
	}
	return meta, nil
}

// BaseRecord returns the shared metadata key/value pairs every record derived
// from this acquisition carries.
func (m Metadata) BaseRecord() domain.Record {
	rec := domain.Record{domain.KeyPlate: m.Plate}
	if m.Batch != "" {
		rec[domain.KeyBatch] = m.Batch
	}
	if m.Arm != "" {
		rec[domain.KeyArm] = m.Arm
	}
	if m.Well != "" {
		rec[domain.KeyWell] = m.Well
	}
	if m.Site != nil {
		rec[domain.KeySite] = strconv.Itoa(*m.Site)
	}
	if m.Cycle != nil {
		rec[domain.KeyCycle] = strconv.Itoa(*m.Cycle)
	}
	return rec
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(t)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asIntList(v any) ([]int, error) {
	switch t := v.(type) {
	case []any:
		out := make([]int, 0, len(t))
		for _, item := range t {
			n, err := asInt(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}
}

func asStringList(v any) []string {
	switch t := v.(type) {
	case string:
		return domain.SplitChannels(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}
