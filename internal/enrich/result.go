package enrich

import (
	"fmt"

	"github.com/husaker/spotify-data-viz/internal/model"
)

// Summary counts the outcomes of a run.
type Summary struct {
	Found         int
	Missing       int
	Failed        int
	Batches       int
	FailedBatches int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d found, %d missing, %d failed (%d/%d batches failed)",
		s.Found, s.Missing, s.Failed, s.FailedBatches, s.Batches)
}

// Add merges another summary into s.
func (s *Summary) Add(o Summary) {
	s.Found += o.Found
	s.Missing += o.Missing
	s.Failed += o.Failed
	s.Batches += o.Batches
	s.FailedBatches += o.FailedBatches
}

// Result holds one outcome per distinct requested ID.
type Result[T any] struct {
	// IDs lists the distinct IDs in first-seen order.
	IDs      []string
	Outcomes map[string]model.Outcome[T]
	Summary  Summary
}

func newResult[T any](ids []string) *Result[T] {
	return &Result[T]{
		IDs:      ids,
		Outcomes: make(map[string]model.Outcome[T], len(ids)),
	}
}

// Get returns the value for id if it was found.
func (r *Result[T]) Get(id string) (T, bool) {
	if r == nil {
		var zero T
		return zero, false
	}
	o := r.Outcomes[id]
	return o.Value, o.Found()
}

// Status returns the status for id. IDs without an outcome report the
// zero Status, which prints as "unknown".
func (r *Result[T]) Status(id string) model.Status {
	if r == nil {
		return 0
	}
	return r.Outcomes[id].Status
}

func (r *Result[T]) record(id string, outcome model.Outcome[T]) {
	r.Outcomes[id] = outcome
	switch outcome.Status {
	case model.StatusFound:
		r.Summary.Found++
	case model.StatusMissing:
		r.Summary.Missing++
	case model.StatusFailed:
		r.Summary.Failed++
	}
}
