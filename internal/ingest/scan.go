package ingest

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"platebind/pkg/domain"
)

// ScanImages lists image files in dir and builds one record per file,
// combining the acquisition metadata with whatever the filename encodes.
// When the metadata carries an image_metadata array, entries are matched to
// files by filename (or by position when filenames are absent) and their
// well/site values win over filename parsing.
func ScanImages(dir string, meta Metadata) ([]domain.ImageRecord, error) {
	names, err := listFiles(dir, isImageFile)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]ImageEntry, len(meta.Images))
	positional := meta.Images
	for _, entry := range meta.Images {
		if entry.Filename != "" {
			byName[entry.Filename] = entry
		}
	}

	records := make([]domain.ImageRecord, 0, len(names))
	for i, name := range names {
		rec := meta.BaseRecord()

		if ref, ok := ParseOriginalImage(name); ok {
			rec[domain.KeyChannels] = ref.Channels
			if ref.Cycle != "" {
				rec[domain.KeyCycle] = ref.Cycle
			}
		} else if len(meta.Channels) > 0 {
			rec[domain.KeyChannels] = strings.Join(meta.Channels, ",")
		}

		entry, matched := byName[name]
		if !matched && len(byName) == 0 && i < len(positional) {
			entry, matched = positional[i], true
		}
		if matched {
			rec[domain.KeyWell] = entry.Well
			rec[domain.KeySite] = strconv.Itoa(entry.Site)
			if entry.Cycle != nil {
				rec[domain.KeyCycle] = strconv.Itoa(*entry.Cycle)
			}
			if entry.Channel != "" {
				rec[domain.KeyChannels] = entry.Channel
				if len(meta.Channels) > 1 {
					rec[domain.KeyOriginalChannels] = strings.Join(meta.Channels, ",")
				}
			}
		} else {
			if !rec.Has(domain.KeyWell) {
				if well, ok := ParseWell(name); ok {
					rec[domain.KeyWell] = well
				}
			}
			if !rec.Has(domain.KeySite) {
				if site, ok := ParseSite(name); ok {
					rec[domain.KeySite] = strconv.Itoa(site)
				}
			}
		}

		records = append(records, domain.ImageRecord{Meta: rec, File: name})
	}
	return records, nil
}

// ScanCorrections lists correction artifacts in dir. Only files following the
// illumination naming contract carry a channel; others are still ingested and
// resolved (or skipped) downstream.
func ScanCorrections(dir string, meta Metadata) ([]domain.CorrectionArtifact, error) {
	names, err := listFiles(dir, isCorrectionFile)
	if err != nil {
		return nil, err
	}
	artifacts := make([]domain.CorrectionArtifact, 0, len(names))
	for _, name := range names {
		rec := meta.BaseRecord()
		// Correction artifacts are per plate (and cycle), never per well/site.
		delete(rec, domain.KeyWell)
		delete(rec, domain.KeySite)
		artifacts = append(artifacts, domain.CorrectionArtifact{Meta: rec, File: name})
	}
	return artifacts, nil
}

func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if keep(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isImageFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".tif") || strings.HasSuffix(lower, ".tiff")
}

func isCorrectionFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".npy")
}
