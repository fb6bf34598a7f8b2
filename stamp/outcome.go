package stamp

// Outcome is the verdict on a single sector.
type Outcome int

const (
	// Good: header and filler are intact.
	Good Outcome = iota
	// Changed: header intact, a few filler words differ.
	Changed
	// BadMatching: header intact, filler beyond tolerance.
	BadMatching
	// Overwritten: an intact stamp of another offset. This is the signature
	// of a drive whose addresses wrap onto earlier physical storage.
	Overwritten
	// OverwrittenAndChanged: a stamp of another offset with a few filler
	// words changed.
	OverwrittenAndChanged
	// Bad: indistinguishable from noise.
	Bad
)

// NumOutcomes is the number of distinct outcomes.
const NumOutcomes = int(Bad) + 1

var outcomeNames = [NumOutcomes]string{
	Good:                  "good",
	Changed:               "changed",
	BadMatching:           "bad-matching",
	Overwritten:           "overwritten",
	OverwrittenAndChanged: "overwritten-changed",
	Bad:                   "bad",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= NumOutcomes {
		return "unknown"
	}
	return outcomeNames[o]
}

// HasFound reports whether the found header is a meaningful offset for o,
// i.e. an intact or near-intact stamp of another location.
func (o Outcome) HasFound() bool {
	return o == Overwritten || o == OverwrittenAndChanged
}

// Outcomes lists every outcome in declaration order.
func Outcomes() []Outcome {
	out := make([]Outcome, NumOutcomes)
	for i := range out {
		out[i] = Outcome(i)
	}
	return out
}
