// Package core implements the pure grouping, joining, and manifest synthesis
// logic: key derivation, stream aggregation, the image/correction join, and
// the channel-aware CSV layout. Everything here is side-effect free and
// deterministic; orchestration and I/O live in internal/adapters.
package core

import (
	"platebind/pkg/domain"
)

// Derive computes a GroupKey from record for the given key names, in order.
// The order is the grouping granularity and must be caller-supplied. A
// missing or empty key yields domain.MissingKeyError.
func Derive(record domain.Record, keyNames []string) (domain.GroupKey, error) {
	names := make([]string, 0, len(keyNames))
	values := make([]string, 0, len(keyNames))
	for _, name := range keyNames {
		value, ok := record.Lookup(name)
		if !ok {
			return domain.GroupKey{}, domain.MissingKeyError{Key: name, Record: record}
		}
		names = append(names, name)
		values = append(values, value)
	}
	return domain.GroupKey{Names: names, Values: values}, nil
}

// DeriveSubset computes a GroupKey from the subset of keyNames actually
// present on the record, preserving keyNames order. Correction streams carry
// fewer keys than image streams; their grouping skips what is absent. An
// empty intersection yields domain.MissingKeyError for the first name.
func DeriveSubset(record domain.Record, keyNames []string) (domain.GroupKey, error) {
	names := make([]string, 0, len(keyNames))
	values := make([]string, 0, len(keyNames))
	for _, name := range keyNames {
		if value, ok := record.Lookup(name); ok {
			names = append(names, name)
			values = append(values, value)
		}
	}
	if len(names) == 0 {
		key := ""
		if len(keyNames) > 0 {
			key = keyNames[0]
		}
		return domain.GroupKey{}, domain.MissingKeyError{Key: key, Record: record}
	}
	return domain.GroupKey{Names: names, Values: values}, nil
}

// intersectKeys returns the members of subset present on both records, in
// subset order. The join key is computed from this intersection rather than
// hard-coded, so streams with different key schemas still associate.
func intersectKeys(subset []string, a, b domain.Record) []string {
	out := make([]string, 0, len(subset))
	for _, name := range subset {
		if a.Has(name) && b.Has(name) {
			out = append(out, name)
		}
	}
	return out
}
