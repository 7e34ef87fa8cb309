package index

import "errors"

// Sentinel errors for index build/restore/lookup per the documented taxonomy.
var (
	// ErrBuildFailed wraps a fatal failure of the directory-walk setup itself.
	ErrBuildFailed = errors.New("index: build failed")
	// ErrCorruption indicates restore found an inconsistent snapshot.
	ErrCorruption = errors.New("index: snapshot is corrupt")
	// ErrDocumentNotFound is returned by GetDocument for an unknown docid.
	ErrDocumentNotFound = errors.New("index: document not found")
)
