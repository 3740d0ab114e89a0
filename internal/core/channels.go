package core

import (
	"sort"
	"strings"

	"platebind/pkg/domain"
)

// ResolveChannels determines the canonical ordered channel list for a group
// of image metadata records, and whether the group consists of single-channel
// records pre-split from a multi-channel acquisition.
//
// Pre-split mode holds when every record's channels value is a single name
// and at least one record carries the original_channels marker; each physical
// file then corresponds to exactly one channel. Otherwise the group is
// multi-channel native: channel values are comma-split and unioned, and one
// physical file may serve several channels at once. Collapsing the two modes
// produces duplicate file references or missing columns downstream.
func ResolveChannels(metas []domain.Record) (channels []string, preSplit bool) {
	anySplitMarker := false
	allSingle := true
	set := make(map[string]struct{})
	for _, meta := range metas {
		if meta.Has(domain.KeyOriginalChannels) {
			anySplitMarker = true
		}
		raw, ok := meta.Lookup(domain.KeyChannels)
		if !ok {
			continue
		}
		if strings.Contains(raw, ",") {
			allSingle = false
		}
		for _, ch := range domain.SplitChannels(raw) {
			set[ch] = struct{}{}
		}
	}
	channels = make([]string, 0, len(set))
	for ch := range set {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels, allSingle && anySplitMarker
}
