package repository

import (
	"context"

	"netintent/internal/domain"
)

// WriteRequest is a create or update of one file. An empty RevisionToken
// creates the file; otherwise the token names the revision being replaced.
type WriteRequest struct {
	Path          string
	Content       string
	Message       string
	Branch        string
	RevisionToken string
}

// IsUpdate reports whether the write replaces an existing revision
func (w WriteRequest) IsUpdate() bool {
	return w.RevisionToken != ""
}

// WriteResult reports an accepted write
type WriteResult struct {
	Status    int
	CommitRef string
}

// ContentRepository is a remote versioned text store
type ContentRepository interface {
	// Get fetches path at ref. A missing file is not an error; it returns a
	// state with Exists false.
	Get(ctx context.Context, path, ref string) (domain.RemoteFileState, error)

	// Write creates or updates a file
	Write(ctx context.Context, req WriteRequest) (WriteResult, error)
}

// Journal records sync attempts
type Journal interface {
	Record(ctx context.Context, outcome domain.SyncOutcome) error
	Recent(ctx context.Context, device string, limit int) ([]domain.SyncOutcome, error)
	Close() error
}
