package preprocess

import "fmt"

// SkipReason codes why a file was excluded without being an error.
type SkipReason string

const (
	SkipDurationOutOfRange SkipReason = "duration_out_of_range"
)

// FailureKind categorizes per-file recoverable failures.
type FailureKind string

const (
	FailureLoad       FailureKind = "load"
	FailureExtraction FailureKind = "extraction"
)

// OutcomeKind tags the three possible results of processing one file.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeSkip
	OutcomeFailure
)

// Outcome is the tagged result of ProcessOne: a record, a skip with a
// reason code, or a failure with its cause. Skips are expected and are
// not errors.
type Outcome struct {
	Kind        OutcomeKind
	Record      *ProcessedRecord
	SkipReason  SkipReason
	FailureKind FailureKind
	Err         error
}

// Succeeded wraps a processed record.
func Succeeded(record *ProcessedRecord) Outcome {
	return Outcome{Kind: OutcomeSuccess, Record: record}
}

// Skipped marks a file excluded for an expected reason.
func Skipped(reason SkipReason) Outcome {
	return Outcome{Kind: OutcomeSkip, SkipReason: reason}
}

// Failed marks a per-file recoverable failure.
func Failed(kind FailureKind, err error) Outcome {
	return Outcome{Kind: OutcomeFailure, FailureKind: kind, Err: err}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success(%s)", o.Record.FilePath)
	case OutcomeSkip:
		return fmt.Sprintf("skip(%s)", o.SkipReason)
	default:
		return fmt.Sprintf("failure(%s: %v)", o.FailureKind, o.Err)
	}
}
