package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies sync failures
type ErrorKind string

const (
	KindMissingTemplate ErrorKind = "missing_template"
	KindRenderError     ErrorKind = "render_error"
	KindRepositoryError ErrorKind = "repository_error"
	KindConnectionError ErrorKind = "connection_error"
)

// SyncError is a terminal failure of a sync attempt. Status and Body are set
// for repository errors.
type SyncError struct {
	Kind   ErrorKind `json:"kind"`
	Status int       `json:"status,omitempty"`
	Body   string    `json:"body,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Err    error     `json:"-"`
}

func (e *SyncError) Error() string {
	switch {
	case e.Kind == KindRepositoryError && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return string(e.Kind)
	}
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError wraps err with a kind, keeping its text for serialization
func NewSyncError(kind ErrorKind, err error) *SyncError {
	se := &SyncError{Kind: kind, Err: err}
	if err != nil {
		se.Detail = err.Error()
	}
	return se
}

// NewRepositoryError builds a repository error from an HTTP response
func NewRepositoryError(status int, body string) *SyncError {
	return &SyncError{Kind: KindRepositoryError, Status: status, Body: body}
}

// AsSyncError returns err as a *SyncError, wrapping unknown errors with the
// fallback kind
func AsSyncError(err error, fallback ErrorKind) *SyncError {
	if err == nil {
		return nil
	}
	var se *SyncError
	if errors.As(err, &se) {
		return se
	}
	return NewSyncError(fallback, err)
}

// KindOf returns the kind of a sync error, or "" for other errors
func KindOf(err error) ErrorKind {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
