package domain

import "fmt"

// MissingKeyError reports a record that lacks a configured grouping or join
// key. Proceeding with a default would corrupt the join, so the enclosing
// group's processing aborts instead.
type MissingKeyError struct {
	Key    string
	Record Record
}

func (e MissingKeyError) Error() string {
	return fmt.Sprintf("metadata key %q missing from record", e.Key)
}

// UnmatchedGroupError reports an image group with no correction group under
// the configured join. The group is dropped from output; callers surface the
// event through audit and metrics rather than failing the run.
type UnmatchedGroupError struct {
	GroupID string
	JoinKey string
}

func (e UnmatchedGroupError) Error() string {
	return fmt.Sprintf("image group %s has no matching correction group (join key %q)", e.GroupID, e.JoinKey)
}

// AmbiguousJoinError reports an image group whose join key matched more than
// one correction group. All pairs are still emitted; the ambiguity is
// surfaced so callers can tighten their key configuration.
type AmbiguousJoinError struct {
	GroupID string
	Matches []string
}

func (e AmbiguousJoinError) Error() string {
	return fmt.Sprintf("image group %s matched %d correction groups %v", e.GroupID, len(e.Matches), e.Matches)
}

// WriteError reports a manifest or file-list write failure.
type WriteError struct {
	Path string
	Err  error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e WriteError) Unwrap() error { return e.Err }
