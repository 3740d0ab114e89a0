package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// Original acquisition filenames pack the channel list into the name:
//
//	WellA1_PointA1_0000_ChannelDNA,GFP_Seq0000.ome.tiff
//	WellA1_PointA1_0000_ChannelDNA,GFP_Cycle03_Seq0000.ome.tiff
var (
	originalCyclePattern = regexp.MustCompile(`Well[A-Z]\d+_Point[A-Z]\d+_\d+_Channel([^_]+)_Cycle(\d+)_Seq\d+\.ome\.tiff?$`)
	originalPattern      = regexp.MustCompile(`Well[A-Z]\d+_Point[A-Z]\d+_\d+_Channel([^_]+)_Seq\d+\.ome\.tiff?$`)

	wellOriginalPattern  = regexp.MustCompile(`Well([A-Z]\d+)_Point`)
	wellDelimitedPattern = regexp.MustCompile(`Well_([A-Z]\d+)_`)

	siteOriginalPattern  = regexp.MustCompile(`Point[A-Z](\d+)_`)
	siteDelimitedPattern = regexp.MustCompile(`Site_(\d+)`)
)

// OriginalImageRef is the information recoverable from an acquisition filename.
type OriginalImageRef struct {
	Channels string // raw channel list, possibly comma separated
	Cycle    string // empty when the name carries no cycle
}

// ParseOriginalImage extracts the channel list (and cycle if present) from an
// acquisition filename. Returns false when the name does not follow the
// acquisition contract.
func ParseOriginalImage(name string) (OriginalImageRef, bool) {
	if m := originalCyclePattern.FindStringSubmatch(name); m != nil {
		cycle := strings.TrimLeft(m[2], "0")
		if cycle == "" {
			cycle = "0"
		}
		return OriginalImageRef{Channels: m[1], Cycle: cycle}, true
	}
	if m := originalPattern.FindStringSubmatch(name); m != nil {
		return OriginalImageRef{Channels: m[1]}, true
	}
	return OriginalImageRef{}, false
}

// ParseWell recovers a well identifier from a filename when the metadata
// omits it. Returns false when no known pattern matches.
func ParseWell(name string) (string, bool) {
	if m := wellOriginalPattern.FindStringSubmatch(name); m != nil {
		return m[1], true
	}
	if m := wellDelimitedPattern.FindStringSubmatch(name); m != nil {
		return m[1], true
	}
	return "", false
}

// ParseSite recovers a site number from a filename. Point identifiers from
// the acquisition naming count as sites.
func ParseSite(name string) (int, bool) {
	if m := siteOriginalPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := siteDelimitedPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}
