package document

import "fmt"

// Status is the recompute state of an object.
type Status int

const (
	StatusValid   Status = iota // output is up to date
	StatusTouched               // inputs changed since the last pass
	StatusError                 // last execute failed
	StatusAborted               // not executed because an upstream object failed
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusTouched:
		return "touched"
	case StatusError:
		return "error"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PropertyStatus is a set of orthogonal property flags.
type PropertyStatus uint8

const (
	ReadOnly    PropertyStatus = 1 << iota // rejected by Set; owners use Init
	Hidden                                 // not shown by editors
	Transient                              // never persisted
	NoRecompute                            // cosmetic: changing it does not touch the owner
	External                               // link may point outside the owning document
	Containment                            // membership list, not a dependency
)

// Has reports whether all bits of flag are set.
func (s PropertyStatus) Has(flag PropertyStatus) bool {
	return s&flag == flag
}

func (s PropertyStatus) String() string {
	names := []string{"read-only", "hidden", "transient", "no-recompute", "external", "containment"}
	out := ""
	for i, n := range names {
		if s&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n
	}
	if out == "" {
		return "none"
	}
	return out
}
