package merger

import (
	"fmt"

	"github.com/JaimeStill/binder/internal/drive"
)

// Job describes one merge: inputs in page order, the output file name, and
// the destination container (empty for the root).
type Job struct {
	Inputs        []drive.File
	OutputName    string
	DestinationID string
}

// Issue records an input excluded from a merge and why.
type Issue struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func issue(f drive.File, format string, args ...any) Issue {
	return Issue{
		FileID: f.ID,
		Name:   f.Name,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Result is the immutable outcome of a Job.
//
// InvalidInputs lists inputs rejected before merging (missing, trashed, or not
// a PDF). FailedInputs lists inputs that passed validation but could not be
// downloaded or decoded; their pages are absent from Output.
// Skipped is set when the collision policy declined the write; a skipped
// result is neither a success nor a failure. PageCount is 0 when a single
// copied input cannot be decoded.
type Result struct {
	Success       bool        `json:"success"`
	Skipped       bool        `json:"skipped,omitempty"`
	Output        *drive.File `json:"output,omitempty"`
	PageCount     int         `json:"page_count,omitempty"`
	InvalidInputs []Issue     `json:"invalid_inputs,omitempty"`
	FailedInputs  []Issue     `json:"failed_inputs,omitempty"`
	Message       string      `json:"message"`
	Err           error       `json:"-"`
}

// Failed reports whether the result is neither a success nor a skip.
func (r Result) Failed() bool {
	return !r.Success && !r.Skipped
}

// Failure builds a failed Result carrying err.
func Failure(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

func (r Result) fail(err error) Result {
	r.Success = false
	r.Err = err
	r.Message = err.Error()
	return r
}
