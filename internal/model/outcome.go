package model

// Status is the per-identifier result of an enrichment run.
type Status int

const (
	// StatusFound means the provider returned the entity.
	StatusFound Status = iota + 1

	// StatusMissing means the provider has no such entity, or returned it
	// without the expected fields.
	StatusMissing

	// StatusFailed means the request for the identifier's batch gave up.
	StatusFailed
)

// String returns the lowercase status name used in output columns.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome pairs a status with the fetched value. Value is the zero value
// unless Status is StatusFound; Err is set only for StatusFailed.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Found reports whether the outcome carries a value.
func (o Outcome[T]) Found() bool {
	return o.Status == StatusFound
}
