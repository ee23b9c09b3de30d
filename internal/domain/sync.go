package domain

import (
	"strings"
	"time"
)

// RenderedConfig is configuration text produced for one device
type RenderedConfig struct {
	Device    string `json:"device"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
}

// NewRenderedConfig wraps rendered text and counts its lines
func NewRenderedConfig(device, content string) RenderedConfig {
	return RenderedConfig{
		Device:    device,
		Content:   content,
		LineCount: len(strings.Split(content, "\n")),
	}
}

// RemoteFileState is a snapshot of a file in the content repository
type RemoteFileState struct {
	Path          string `json:"path"`
	Exists        bool   `json:"exists"`
	Content       string `json:"content,omitempty"`
	RevisionToken string `json:"revision_token,omitempty"`
}

// DecisionKind selects which write, if any, a sync issues
type DecisionKind string

const (
	DecisionNoOp   DecisionKind = "noop"
	DecisionCreate DecisionKind = "create"
	DecisionUpdate DecisionKind = "update"
)

// SyncDecision is the outcome of comparing rendered and stored content.
// RevisionToken is only set for updates.
type SyncDecision struct {
	Kind          DecisionKind `json:"kind"`
	RevisionToken string       `json:"revision_token,omitempty"`
}

// RequiresWrite reports whether the decision implies a repository write
func (d SyncDecision) RequiresWrite() bool {
	return d.Kind == DecisionCreate || d.Kind == DecisionUpdate
}

// SyncStage is the terminal state of a sync attempt
type SyncStage string

const (
	StageCommitted SyncStage = "committed"
	StageSkipped   SyncStage = "skipped"
	StageFailed    SyncStage = "failed"
)

// SyncOutcome reports a single sync attempt. Success and failure share the
// same shape; Err is set only when Stage is failed.
type SyncOutcome struct {
	ID         string       `json:"id"`
	Device     string       `json:"device"`
	Path       string       `json:"path,omitempty"`
	Decision   SyncDecision `json:"decision"`
	Stage      SyncStage    `json:"stage"`
	Success    bool         `json:"success"`
	DryRun     bool         `json:"dry_run,omitempty"`
	CommitRef  string       `json:"commit_ref,omitempty"`
	Message    string       `json:"message,omitempty"`
	Diff       string       `json:"diff,omitempty"`
	LineCount  int          `json:"line_count,omitempty"`
	Err        *SyncError   `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Fail marks the outcome failed with the given error
func (o *SyncOutcome) Fail(err *SyncError) {
	o.Stage = StageFailed
	o.Success = false
	o.Err = err
}

// Skip marks the outcome as finished without a write
func (o *SyncOutcome) Skip() {
	o.Stage = StageSkipped
	o.Success = true
}

// Commit marks the outcome as committed
func (o *SyncOutcome) Commit(ref string) {
	o.Stage = StageCommitted
	o.Success = true
	o.CommitRef = ref
}
