// Package detect contains the risk detectors consulted by the gate.
//
// Every detector is a total function: a panic inside a detector is recovered
// and reported as no match.
package detect

// Result is the outcome of one detector.
type Result struct {
	Matched bool
	Label   string
}

// NoMatch is the zero result.
var NoMatch = Result{}

func match(label string) Result {
	return Result{Matched: true, Label: label}
}

// guard converts a panic into NoMatch.
func guard(res *Result) {
	if r := recover(); r != nil {
		*res = NoMatch
	}
}
