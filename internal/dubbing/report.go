package dubbing

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Report summarizes one assembly.
type Report struct {
	Segments  int
	Placed    int
	Skipped   int
	Failed    int
	Fallbacks int
	Clamped   int
	Overlaps  int
	// Warnings aggregates per-segment failures that did not stop the job.
	Warnings *multierror.Error
}

func (r *Report) warn(index int, err error) {
	r.Warnings = multierror.Append(r.Warnings, fmt.Errorf("segment %d: %w", index, err))
}

// Err returns the aggregated warnings, or nil when there were none.
func (r Report) Err() error {
	return r.Warnings.ErrorOrNil()
}

// Messages lists the warnings as strings for persistence.
func (r Report) Messages() []string {
	if r.Warnings == nil {
		return nil
	}
	out := make([]string, 0, len(r.Warnings.Errors))
	for _, err := range r.Warnings.Errors {
		out = append(out, err.Error())
	}
	return out
}
