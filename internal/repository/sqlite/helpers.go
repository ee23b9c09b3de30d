package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netintent/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeToUnix stores times as unix nanoseconds; the zero time is stored as 0
func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// unixToTime reverses timeToUnix
func unixToTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string; nil is stored as NULL
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Outcome Row Scanner
// ============================================================================
//
// Column order must match between outcomeColumns, scanArgs() and
// outcomeInsertArgs().

// outcomeColumns is the column list for outcome queries
const outcomeColumns = `id, device, path, decision, revision_token, stage,
	success, dry_run, commit_ref, message, diff, line_count,
	error_kind, error, started_at, finished_at`

// outcomeRow holds all columns from an outcome query for scanning
type outcomeRow struct {
	ID            string
	Device        string
	Path          sql.NullString
	Decision      string
	RevisionToken sql.NullString
	Stage         string
	Success       int
	DryRun        int
	CommitRef     sql.NullString
	Message       sql.NullString
	Diff          sql.NullString
	LineCount     int
	ErrorKind     sql.NullString
	ErrorJSON     sql.NullString
	StartedAt     int64
	FinishedAt    int64
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *outcomeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,            // 1
		&r.Device,        // 2
		&r.Path,          // 3
		&r.Decision,      // 4
		&r.RevisionToken, // 5
		&r.Stage,         // 6
		&r.Success,       // 7
		&r.DryRun,        // 8
		&r.CommitRef,     // 9
		&r.Message,       // 10
		&r.Diff,          // 11
		&r.LineCount,     // 12
		&r.ErrorKind,     // 13
		&r.ErrorJSON,     // 14
		&r.StartedAt,     // 15
		&r.FinishedAt,    // 16
	}
}

// toDomain converts the scanned row to a domain.SyncOutcome
func (r *outcomeRow) toDomain() (*domain.SyncOutcome, error) {
	o := &domain.SyncOutcome{
		ID:     r.ID,
		Device: r.Device,
		Path:   nullToString(r.Path),
		Decision: domain.SyncDecision{
			Kind:          domain.DecisionKind(r.Decision),
			RevisionToken: nullToString(r.RevisionToken),
		},
		Stage:      domain.SyncStage(r.Stage),
		Success:    r.Success != 0,
		DryRun:     r.DryRun != 0,
		CommitRef:  nullToString(r.CommitRef),
		Message:    nullToString(r.Message),
		Diff:       nullToString(r.Diff),
		LineCount:  r.LineCount,
		StartedAt:  unixToTime(r.StartedAt),
		FinishedAt: unixToTime(r.FinishedAt),
	}

	if r.ErrorJSON.Valid {
		o.Err = &domain.SyncError{}
		if err := unmarshalJSONField(r.ErrorJSON, o.Err); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}
	}

	return o, nil
}

// outcomeInsertArgs prepares arguments for outcome INSERT
func outcomeInsertArgs(o *domain.SyncOutcome) ([]interface{}, error) {
	var (
		errJSON sql.NullString
		errKind sql.NullString
		err     error
	)
	if o.Err != nil {
		errJSON, err = marshalToNull(o.Err)
		if err != nil {
			return nil, fmt.Errorf("marshal error: %w", err)
		}
		errKind = stringToNull(string(o.Err.Kind))
	}

	return []interface{}{
		o.ID,
		o.Device,
		stringToNull(o.Path),
		string(o.Decision.Kind),
		stringToNull(o.Decision.RevisionToken),
		string(o.Stage),
		boolToInt(o.Success),
		boolToInt(o.DryRun),
		stringToNull(o.CommitRef),
		stringToNull(o.Message),
		stringToNull(o.Diff),
		o.LineCount,
		errKind,
		errJSON,
		timeToUnix(o.StartedAt),
		timeToUnix(o.FinishedAt),
	}, nil
}
