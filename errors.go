package agora

import "fmt"

// InvalidInputError reports a caller contract violation, such as a negative
// interaction count handed to the rank function. It signals a programming
// error, not a runtime condition to recover from.
type InvalidInputError struct {
	reason string
}

func InvalidInput(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("InvalidInput: %v", e.reason)
}

// DataUnavailableError reports that underlying aggregates could not be read.
// Callers keep whatever value they last had and retry on the next pass
// rather than treating a partial read as authoritative.
type DataUnavailableError struct {
	err error
}

func DataUnavailable(err error) *DataUnavailableError {
	return &DataUnavailableError{err: err}
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("DataUnavailable: %v", e.err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.err
}

// PartialRewriteError reports an interrupted preference rewrite. The
// retirement stays in the rewriting state; re-running the rewrite re-scans
// for remaining rows, so retrying is always safe.
type PartialRewriteError struct {
	Retired SortPreference
	err     error
}

func PartialRewrite(retired SortPreference, err error) *PartialRewriteError {
	return &PartialRewriteError{Retired: retired, err: err}
}

func (e *PartialRewriteError) Error() string {
	return fmt.Sprintf("PartialRewrite: retirement of %q: %v", e.Retired, e.err)
}

func (e *PartialRewriteError) Unwrap() error {
	return e.err
}
