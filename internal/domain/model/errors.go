package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRecord is matched by every MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("schema error")
	// ErrFeatureMismatch is matched by every FeatureMismatchError.
	ErrFeatureMismatch = errors.New("feature mismatch")
	// ErrUntrainedModel is returned when a classifier operation runs before Train or Load.
	ErrUntrainedModel = errors.New("model must be trained or loaded first")
	// ErrArtifactNotFound is matched by every ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrAnalysis is matched by every AnalysisError.
	ErrAnalysis = errors.New("analysis failed")
	// ErrVerdictNotFound is returned by verdict repositories for unknown IDs.
	ErrVerdictNotFound = errors.New("verdict not found")
)

// MalformedRecordError reports a record field that is missing or out of range.
type MalformedRecordError struct {
	SessionID string
	Row       int // 1-based data row when known, otherwise 0
	Field     string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	b.WriteString("malformed record")
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.SessionID != "" {
		fmt.Fprintf(&b, " (session %s)", e.SessionID)
	}
	fmt.Fprintf(&b, ": %s %s", e.Field, e.Reason)
	return b.String()
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// SchemaError reports a dataset that lacks required columns or rows.
type SchemaError struct {
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema error: missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return "schema error: " + e.Reason
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// FeatureMismatchError reports a transform whose feature layout differs from
// the layout fitted at training time.
type FeatureMismatchError struct {
	Expected []string
	Got      []string
	Reason   string
}

func (e *FeatureMismatchError) Error() string {
	if e.Reason != "" {
		return "feature mismatch: " + e.Reason
	}
	return fmt.Sprintf("feature mismatch: fitted on [%s], got [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

func (e *FeatureMismatchError) Is(target error) bool { return target == ErrFeatureMismatch }

// ArtifactNotFoundError reports a missing persisted model bundle.
type ArtifactNotFoundError struct {
	Path string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("pre-trained model not found: %s", e.Path)
}

func (e *ArtifactNotFoundError) Is(target error) bool { return target == ErrArtifactNotFound }

// AnalysisError wraps any failure raised while analyzing a single record.
type AnalysisError struct {
	SessionID string
	Err       error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of session %q failed: %v", e.SessionID, e.Err)
}

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysis }

func (e *AnalysisError) Unwrap() error { return e.Err }
