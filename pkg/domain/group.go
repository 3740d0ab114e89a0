package domain

import "strings"

// GroupKey is an ordered tuple of (key-name, value) pairs derived from a
// record. Two records belong to the same group iff their identifiers match.
type GroupKey struct {
	Names  []string `json:"names"`
	Values []string `json:"values"`
}

// ID returns the derived identifier: the values joined with underscores in
// derivation order. Derivation is pure, so equal inputs yield equal IDs.
func (k GroupKey) ID() string {
	return strings.Join(k.Values, "_")
}

// IsZero reports whether the key carries no components.
func (k GroupKey) IsZero() bool { return len(k.Names) == 0 }

// ImageGroup is a set of image records sharing one derived GroupKey.
// Records keep their first-seen arrival order.
type ImageGroup struct {
	Key     GroupKey      `json:"key"`
	Records []ImageRecord `json:"records"`
}

// First returns the metadata of the group's first record. Join-key
// computation reads availability from the first member by contract.
func (g ImageGroup) First() Record {
	if len(g.Records) == 0 {
		return nil
	}
	return g.Records[0].Meta
}

// CorrectionGroup is a set of correction artifacts sharing one derived key.
type CorrectionGroup struct {
	Key     GroupKey             `json:"key"`
	Records []CorrectionArtifact `json:"records"`
}

// First returns the metadata of the group's first artifact.
func (g CorrectionGroup) First() Record {
	if len(g.Records) == 0 {
		return nil
	}
	return g.Records[0].Meta
}

// JoinedGroup associates one image group with one correction group whose
// join-key identifiers matched.
type JoinedGroup struct {
	Images      ImageGroup      `json:"images"`
	Corrections CorrectionGroup `json:"corrections"`
}
