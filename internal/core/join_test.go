package core

import (
	"testing"

	"platebind/pkg/domain"
)

func mustAggregate(t *testing.T, images []domain.ImageRecord, corrections []domain.CorrectionArtifact, keys []string) ([]domain.ImageGroup, []domain.CorrectionGroup) {
	t.Helper()
	imgGroups, err := AggregateImages(images, keys)
	if err != nil {
		t.Fatalf("aggregate images: %v", err)
	}
	corrGroups, err := AggregateCorrections(corrections, keys)
	if err != nil {
		t.Fatalf("aggregate corrections: %v", err)
	}
	return imgGroups, corrGroups
}

func TestJoinMatchesOnSharedKeys(t *testing.T) {
	images := []domain.ImageRecord{imageRec("B1", "P1", "A1", "f1")}
	corrections := []domain.CorrectionArtifact{
		{Meta: domain.Record{"batch": "B1", "plate": "P1"}, File: "P1_IllumDAPI.npy"},
	}
	imgGroups, corrGroups := mustAggregate(t, images, corrections, []string{"batch", "plate"})

	result := Join(imgGroups, corrGroups, []string{"batch", "plate"})
	if len(result.Pairs) != 1 || len(result.Unmatched) != 0 {
		t.Fatalf("expected single pair, got %d pairs %d unmatched", len(result.Pairs), len(result.Unmatched))
	}
}

func TestJoinIntersectsAvailableKeys(t *testing.T) {
	// Correction metadata lacks batch; the join key narrows to plate.
	images := []domain.ImageRecord{imageRec("B1", "P1", "A1", "f1")}
	corrections := []domain.CorrectionArtifact{
		{Meta: domain.Record{"plate": "P1"}, File: "P1_IllumDAPI.npy"},
	}
	imgGroups, corrGroups := mustAggregate(t, images, corrections, []string{"batch", "plate"})

	result := Join(imgGroups, corrGroups, []string{"batch", "plate"})
	if len(result.Pairs) != 1 {
		t.Fatalf("expected join over the shared subset, got %d pairs", len(result.Pairs))
	}
}

func TestJoinUnmatchedGroupReported(t *testing.T) {
	images := []domain.ImageRecord{imageRec("B1", "P1", "A1", "f1")}
	corrections := []domain.CorrectionArtifact{
		{Meta: domain.Record{"batch": "B1", "plate": "P9"}, File: "P9_IllumDAPI.npy"},
	}
	imgGroups, corrGroups := mustAggregate(t, images, corrections, []string{"batch", "plate"})

	result := Join(imgGroups, corrGroups, []string{"batch", "plate"})
	if len(result.Pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(result.Pairs))
	}
	if len(result.Unmatched) != 1 {
		t.Fatalf("expected one unmatched group, got %d", len(result.Unmatched))
	}
	if result.Unmatched[0].GroupID != "B1_P1" {
		t.Fatalf("unexpected unmatched group %s", result.Unmatched[0].GroupID)
	}
}

func TestJoinAmbiguousEmitsAllPairs(t *testing.T) {
	images := []domain.ImageRecord{imageRec("B1", "P1", "A1", "f1")}
	corrections := []domain.CorrectionArtifact{
		{Meta: domain.Record{"plate": "P1", "cycle": "1"}, File: "P1_Cycle01_IllumDAPI.npy"},
		{Meta: domain.Record{"plate": "P1", "cycle": "2"}, File: "P1_Cycle02_IllumDAPI.npy"},
	}
	imgGroups, err := AggregateImages(images, []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("aggregate images: %v", err)
	}
	corrGroups, err := AggregateCorrections(corrections, []string{"plate", "cycle"})
	if err != nil {
		t.Fatalf("aggregate corrections: %v", err)
	}

	result := Join(imgGroups, corrGroups, []string{"plate"})
	if len(result.Pairs) != 2 {
		t.Fatalf("multiple matches must all be emitted, got %d pairs", len(result.Pairs))
	}
	if len(result.Ambiguous) != 1 {
		t.Fatalf("expected one ambiguity report, got %d", len(result.Ambiguous))
	}
	if got := len(result.Ambiguous[0].Matches); got != 2 {
		t.Fatalf("ambiguity must list all matches, got %d", got)
	}
}

func TestJoinNoSharedKeysIsUnmatched(t *testing.T) {
	images := []domain.ImageRecord{imageRec("B1", "P1", "A1", "f1")}
	corrections := []domain.CorrectionArtifact{
		{Meta: domain.Record{"cycle": "1"}, File: "X_Cycle01_IllumDAPI.npy"},
	}
	imgGroups, err := AggregateImages(images, []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("aggregate images: %v", err)
	}
	corrGroups, err := AggregateCorrections(corrections, []string{"cycle"})
	if err != nil {
		t.Fatalf("aggregate corrections: %v", err)
	}

	result := Join(imgGroups, corrGroups, []string{"batch", "plate"})
	if len(result.Pairs) != 0 || len(result.Unmatched) != 1 {
		t.Fatalf("disjoint schemas must not match: %d pairs %d unmatched", len(result.Pairs), len(result.Unmatched))
	}
}
