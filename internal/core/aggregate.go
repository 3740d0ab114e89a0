package core

import (
	"platebind/pkg/domain"
)

// AggregateImages groups the image stream by the derived key, preserving
// first-seen order of groups and of records within each group. Group
// membership only closes once the whole stream has been observed, so the
// input must be fully materialized. An empty stream yields an empty slice.
// A record missing any configured key aborts aggregation with
// domain.MissingKeyError; records are never silently dropped.
func AggregateImages(stream []domain.ImageRecord, keyNames []string) ([]domain.ImageGroup, error) {
	index := make(map[string]int)
	var groups []domain.ImageGroup
	for _, rec := range stream {
		key, err := Derive(rec.Meta, keyNames)
		if err != nil {
			return nil, err
		}
		id := key.ID()
		pos, ok := index[id]
		if !ok {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, domain.ImageGroup{Key: key})
		}
		groups[pos].Records = append(groups[pos].Records, rec)
	}
	return groups, nil
}

// AggregateCorrections groups the correction stream by the subset-aware key
// derivation: each artifact is grouped by whichever configured keys its own
// metadata carries. Ordering semantics match AggregateImages.
func AggregateCorrections(stream []domain.CorrectionArtifact, keyNames []string) ([]domain.CorrectionGroup, error) {
	index := make(map[string]int)
	var groups []domain.CorrectionGroup
	for _, rec := range stream {
		key, err := DeriveSubset(rec.Meta, keyNames)
		if err != nil {
			return nil, err
		}
		id := key.ID()
		pos, ok := index[id]
		if !ok {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, domain.CorrectionGroup{Key: key})
		}
		groups[pos].Records = append(groups[pos].Records, rec)
	}
	return groups, nil
}
