package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"platebind/pkg/domain"
)

// SynthesisOptions tunes the manifest layout. The zero value produces the
// canonical contract: all sites, no frame columns, no staging subdirectories.
type SynthesisOptions struct {
	// SiteStride keeps every Nth distinct site (sorted); 0 or 1 keeps all.
	SiteStride int
	// IncludeFrames adds Frame_Orig<Channel> index columns for multi-channel
	// acquisitions that pack several channels into one physical file.
	IncludeFrames bool
	// AssignSubdirs rewrites original-file cells to imgN/<file> using a
	// deterministic subdirectory assignment over the deduplicated images.
	AssignSubdirs bool
}

// SynthesisResult is the per-group output handed to the next pipeline stage
// as one logical unit: the manifest plus the staging file lists.
type SynthesisResult struct {
	Manifest    domain.Manifest
	Images      []string // deduplicated by physical file name, first-seen order
	Corrections []string
	Subdirs     map[string]string // only when AssignSubdirs
}

// metadataColumns is the fixed ordering of metadata columns. Batch, plate,
// and cycle appear when the group's metadata carries them; well and site are
// always emitted since rows are keyed by them (site defaults to 1).
var metadataColumns = []struct {
	key    string
	header string
	always bool
}{
	{domain.KeyBatch, "Metadata_Batch", false},
	{domain.KeyPlate, "Metadata_Plate", false},
	{domain.KeyWell, "Metadata_Well", true},
	{domain.KeySite, "Metadata_Site", true},
	{domain.KeyCycle, "Metadata_Cycle", false},
}

type siteBucket struct {
	well, site string
	records    []domain.ImageRecord
}

// Synthesize builds the manifest rows for one joined pair: one row per
// distinct (well, site) combination in first-seen order, one original-file
// column and one correction-file column per channel in ascending lexical
// channel order. Physical files shared across logical channels are emitted
// once in the returned image list but referenced by every matching column.
func Synthesize(pair domain.JoinedGroup, opts SynthesisOptions) (SynthesisResult, error) {
	if len(pair.Images.Records) == 0 {
		return SynthesisResult{}, fmt.Errorf("group %s: no image records to synthesize", pair.Images.Key.ID())
	}

	metas := make([]domain.Record, 0, len(pair.Images.Records))
	for _, rec := range pair.Images.Records {
		metas = append(metas, rec.Meta)
	}
	channels, preSplit := ResolveChannels(metas)

	// Correction files keyed by the channel their names encode. A name that
	// fails the Illum contract simply yields an empty cell.
	corrByChannel := make(map[string]string)
	for _, artifact := range pair.Corrections.Records {
		ref, ok := ParseIllumName(artifact.File)
		if !ok {
			continue
		}
		if _, dup := corrByChannel[ref.Channel]; !dup {
			corrByChannel[ref.Channel] = artifact.File
		}
	}

	buckets := partitionBySite(pair.Images.Records)
	buckets = subsampleSites(buckets, opts.SiteStride)

	first := pair.Images.First()
	var header []string
	var activeMeta []struct {
		key    string
		header string
	}
	for _, col := range metadataColumns {
		if col.always || first.Has(col.key) {
			header = append(header, col.header)
			activeMeta = append(activeMeta, struct {
				key    string
				header string
			}{col.key, col.header})
		}
	}
	for _, ch := range channels {
		header = append(header, "FileName_Orig"+ch)
	}
	if opts.IncludeFrames {
		for _, ch := range channels {
			header = append(header, "Frame_Orig"+ch)
		}
	}
	for _, ch := range channels {
		header = append(header, "FileName_Illum"+ch)
	}

	var rows [][]string
	for _, bucket := range buckets {
		row := make([]string, 0, len(header))
		bucketMeta := bucket.records[0].Meta
		for _, col := range activeMeta {
			switch col.key {
			case domain.KeyWell:
				row = append(row, bucket.well)
			case domain.KeySite:
				row = append(row, bucket.site)
			default:
				value, _ := bucketMeta.Lookup(col.key)
				row = append(row, value)
			}
		}
		files := make([]string, len(channels))
		frames := make([]string, len(channels))
		for i, ch := range channels {
			rec, ok := resolveChannelFile(bucket.records, ch, preSplit)
			if !ok {
				// ChannelResolutionAmbiguity: partial output beats failing
				// the group; the other channels and wells remain usable.
				continue
			}
			files[i] = rec.File
			frames[i] = strconv.Itoa(frameIndex(rec.Meta, ch))
		}
		row = append(row, files...)
		if opts.IncludeFrames {
			row = append(row, frames...)
		}
		for _, ch := range channels {
			row = append(row, corrByChannel[ch])
		}
		rows = append(rows, row)
	}

	images := dedupeFiles(pair.Images.Records)
	corrections := make([]string, 0, len(pair.Corrections.Records))
	seenCorr := make(map[string]struct{})
	for _, artifact := range pair.Corrections.Records {
		if _, dup := seenCorr[artifact.File]; dup {
			continue
		}
		seenCorr[artifact.File] = struct{}{}
		corrections = append(corrections, artifact.File)
	}

	result := SynthesisResult{
		Manifest:    domain.Manifest{GroupID: pair.Images.Key.ID(), Header: header, Rows: rows},
		Images:      images,
		Corrections: corrections,
	}
	if opts.AssignSubdirs {
		result.Subdirs = AssignSubdirectories(images)
		rewriteWithSubdirs(result.Manifest.Rows, len(activeMeta), len(channels), result.Subdirs)
	}
	return result, nil
}

// partitionBySite buckets records by (well, site) in first-seen order,
// indexing within a bucket by the record's raw channels string. Site
// defaults to "1" when the metadata omits it.
func partitionBySite(records []domain.ImageRecord) []siteBucket {
	index := make(map[string]int)
	var buckets []siteBucket
	for _, rec := range records {
		well, _ := rec.Meta.Lookup(domain.KeyWell)
		site, ok := rec.Meta.Lookup(domain.KeySite)
		if !ok {
			site = "1"
		}
		id := well + "\x00" + site
		pos, seen := index[id]
		if !seen {
			pos = len(buckets)
			index[id] = pos
			buckets = append(buckets, siteBucket{well: well, site: site})
		}
		buckets[pos].records = append(buckets[pos].records, rec)
	}
	return buckets
}

// subsampleSites keeps buckets whose site falls on every Nth distinct site,
// ordered numerically where possible.
func subsampleSites(buckets []siteBucket, stride int) []siteBucket {
	if stride <= 1 {
		return buckets
	}
	distinct := make(map[string]struct{})
	for _, b := range buckets {
		distinct[b.site] = struct{}{}
	}
	sites := make([]string, 0, len(distinct))
	for s := range distinct {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return siteLess(sites[i], sites[j]) })
	keep := make(map[string]struct{})
	for i, s := range sites {
		if i%stride == 0 {
			keep[s] = struct{}{}
		}
	}
	out := buckets[:0]
	for _, b := range buckets {
		if _, ok := keep[b.site]; ok {
			out = append(out, b)
		}
	}
	return out
}

func siteLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// resolveChannelFile finds the record providing the target channel within a
// bucket. Pre-split groups index directly by the raw channels value;
// multi-channel-native groups search for the record whose channel list
// contains the target, which may resolve several channels to one file.
func resolveChannelFile(records []domain.ImageRecord, channel string, preSplit bool) (domain.ImageRecord, bool) {
	if preSplit {
		for _, rec := range records {
			if raw, ok := rec.Meta.Lookup(domain.KeyChannels); ok && raw == channel {
				return rec, true
			}
		}
		return domain.ImageRecord{}, false
	}
	for _, rec := range records {
		for _, member := range rec.Meta.Channels() {
			if member == channel {
				return rec, true
			}
		}
	}
	return domain.ImageRecord{}, false
}

// frameIndex computes the frame of a channel within its physical file: the
// channel's position in the record's channel list, or in original_channels
// for records split out of a multi-channel acquisition.
func frameIndex(meta domain.Record, channel string) int {
	raw, _ := meta.Lookup(domain.KeyChannels)
	if strings.Contains(raw, ",") {
		for i, member := range domain.SplitChannels(raw) {
			if member == channel {
				return i
			}
		}
		return 0
	}
	if original, ok := meta.Lookup(domain.KeyOriginalChannels); ok && strings.Contains(original, ",") {
		for i, member := range domain.SplitChannels(original) {
			if member == raw {
				return i
			}
		}
	}
	return 0
}

// dedupeFiles returns the distinct physical files in first-seen order. This
// protects the staging step from copying one file once per logical channel.
func dedupeFiles(records []domain.ImageRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.File]; dup {
			continue
		}
		seen[rec.File] = struct{}{}
		out = append(out, rec.File)
	}
	return out
}

// AssignSubdirectories maps each unique image to a staging subdirectory
// (img1, img2, ...) in sorted file-name order.
func AssignSubdirectories(images []string) map[string]string {
	unique := append([]string(nil), images...)
	sort.Strings(unique)
	out := make(map[string]string, len(unique))
	for i, img := range unique {
		out[img] = fmt.Sprintf("img%d", i+1)
	}
	return out
}

func rewriteWithSubdirs(rows [][]string, metaCols, channelCount int, subdirs map[string]string) {
	for _, row := range rows {
		for i := metaCols; i < metaCols+channelCount && i < len(row); i++ {
			if dir, ok := subdirs[row[i]]; ok && row[i] != "" {
				row[i] = dir + "/" + row[i]
			}
		}
	}
}
