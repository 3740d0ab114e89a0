package blob

import (
	fsstore "platebind/internal/infra/blob/fs"
)

// NewFilesystem returns a filesystem-backed blob.Store rooted at path.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }
