package document

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the final state of one object that did not end Valid.
type Outcome struct {
	Object string
	Status Status
	Reason string
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return fmt.Sprintf("%s: %s", o.Object, o.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", o.Object, o.Status, o.Reason)
}

// Report summarises a recompute pass.
type Report struct {
	Recomputed int
	Skipped    int
	Errored    int
	Aborted    int

	// Order lists the objects whose Execute was called, in call order.
	Order []string
	// Failures lists Error and Aborted outcomes in visiting order.
	Failures []Outcome
	Duration time.Duration
}

// OK reports whether the pass left no errored or aborted object.
func (r *Report) OK() bool { return r.Errored == 0 && r.Aborted == 0 }

// Visited is the number of objects the pass looked at.
func (r *Report) Visited() int { return r.Recomputed + r.Skipped + r.Errored + r.Aborted }

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "recomputed %d, skipped %d, errored %d, aborted %d in %s",
		r.Recomputed, r.Skipped, r.Errored, r.Aborted, r.Duration)
	for _, f := range r.Failures {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}
