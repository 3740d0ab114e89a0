package core

import (
	"platebind/pkg/domain"
)

// JoinResult carries the joined pairs plus the diagnosable conditions the
// join surfaced: image groups that matched nothing (irrecoverable data loss
// downstream if unobserved) and groups that matched more than once.
type JoinResult struct {
	Pairs     []domain.JoinedGroup
	Unmatched []domain.UnmatchedGroupError
	Ambiguous []domain.AmbiguousJoinError
}

// Join associates image groups with correction groups by equality of the
// join key. For every candidate pair the key is derived from the
// intersection of joinBy with the keys present on both sides' first records,
// so streams carrying different key schemas still associate. Zero matches
// drops the image group from the output but records the event; multiple
// matches emit every pair and record the ambiguity. Join order is
// independent of input order because derivation is pure.
func Join(images []domain.ImageGroup, corrections []domain.CorrectionGroup, joinBy []string) JoinResult {
	var result JoinResult
	for _, img := range images {
		imgMeta := img.First()
		if imgMeta == nil {
			continue
		}
		var matches []domain.CorrectionGroup
		var matchIDs []string
		lastJoinID := ""
		for _, corr := range corrections {
			corrMeta := corr.First()
			if corrMeta == nil {
				continue
			}
			shared := intersectKeys(joinBy, imgMeta, corrMeta)
			if len(shared) == 0 {
				continue
			}
			imgKey, err := Derive(imgMeta, shared)
			if err != nil {
				continue
			}
			corrKey, err := Derive(corrMeta, shared)
			if err != nil {
				continue
			}
			lastJoinID = imgKey.ID()
			if imgKey.ID() == corrKey.ID() {
				matches = append(matches, corr)
				matchIDs = append(matchIDs, corr.Key.ID())
			}
		}
		switch {
		case len(matches) == 0:
			result.Unmatched = append(result.Unmatched, domain.UnmatchedGroupError{
				GroupID: img.Key.ID(),
				JoinKey: lastJoinID,
			})
		default:
			if len(matches) > 1 {
				result.Ambiguous = append(result.Ambiguous, domain.AmbiguousJoinError{
					GroupID: img.Key.ID(),
					Matches: matchIDs,
				})
			}
			for _, corr := range matches {
				result.Pairs = append(result.Pairs, domain.JoinedGroup{Images: img, Corrections: corr})
			}
		}
	}
	return result
}
