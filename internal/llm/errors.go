package llm

import (
	"errors"
	"fmt"
)

// DiagnosticLimit caps any provider text carried in errors or debug output.
const DiagnosticLimit = 600

// Stage names used in diagnostics.
const (
	StageClient     = "client"
	StageListModels = "listModels"
	StagePickModel  = "pickModel"
	StageGenerate   = "generate"
	StageDecode     = "decode"
)

// UpstreamError is a failed provider call: transport failure, non-success
// status or timeout.
type UpstreamError struct {
	Stage      string
	StatusCode int
	Body       string // truncated to DiagnosticLimit
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: provider call timed out", e.Stage)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: provider returned status %d", e.Stage, e.StatusCode)
	default:
		return fmt.Sprintf("%s: provider call failed: %v", e.Stage, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// SelectorErrorKind classifies why no model could be chosen.
type SelectorErrorKind string

const (
	NoCredential    SelectorErrorKind = "NoCredential"
	ListUnavailable SelectorErrorKind = "ListUnavailable"
	NoUsableModel   SelectorErrorKind = "NoUsableModel"
)

// SelectorError is returned by SelectModel.
type SelectorError struct {
	Kind SelectorErrorKind
	Err  error
}

func (e *SelectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model selection failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("model selection failed (%s)", e.Kind)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// Stage reports which selection step failed.
func (e *SelectorError) Stage() string {
	if e.Kind == ListUnavailable {
		return StageListModels
	}
	return StagePickModel
}

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind string

const (
	NoTextFound DecodeErrorKind = "NoTextFound"
	InvalidJSON DecodeErrorKind = "InvalidJson"
)

// DecodeError is returned by the response decoder. Sample holds a bounded
// prefix of the offending text, never the full text.
type DecodeError struct {
	Kind   DecodeErrorKind
	Sample string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode failed (%s)", e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeKind reports whether err is a DecodeError of the given kind.
func IsDecodeKind(err error, kind DecodeErrorKind) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == kind
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
