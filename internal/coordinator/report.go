package coordinator

import (
	"fmt"

	"github.com/JaimeStill/binder/internal/grouping"
)

// Report is the outcome of one student's run. Err is set when the student
// could not be processed at all; otherwise Outcomes holds one entry per
// category.
type Report struct {
	Student       Student            `json:"student"`
	DestinationID string             `json:"destination_id,omitempty"`
	Outcomes      []grouping.Outcome `json:"outcomes,omitempty"`
	Message       string             `json:"message"`
	Err           error              `json:"-"`
}

// Counts tallies category outcomes.
type Counts struct {
	Merged  int `json:"merged"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Counts tallies the report's category outcomes by status.
func (r Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch {
		case o.Result.Success:
			c.Merged++
		case o.Result.Skipped:
			c.Skipped++
		default:
			c.Failed++
		}
	}
	return c
}

// Failed reports whether the student failed outright or any category failed.
func (r Report) Failed() bool {
	return r.Err != nil || r.Counts().Failed > 0
}

func (r Report) fail(err error) Report {
	r.Err = err
	r.Message = err.Error()
	return r
}

func (r Report) summarize() Report {
	c := r.Counts()
	r.Message = fmt.Sprintf("%d merged, %d skipped, %d failed", c.Merged, c.Skipped, c.Failed)
	return r
}

// Summary tallies a run across students.
type Summary struct {
	Students int `json:"students"`
	Failed   int `json:"failed"`
	Counts
}

// Summarize tallies reports. Students that failed outright count toward
// Summary.Failed, not toward the category counts.
func Summarize(reports []Report) Summary {
	s := Summary{Students: len(reports)}
	for _, r := range reports {
		if r.Err != nil {
			s.Failed++
			continue
		}
		c := r.Counts()
		s.Merged += c.Merged
		s.Skipped += c.Skipped
		s.Counts.Failed += c.Failed
	}
	return s
}
