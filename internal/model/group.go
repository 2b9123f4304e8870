package model

// Group is one selector group of the output document.
type Group struct {
	Name string
	Type string // "select" | "url-test"

	Members []string // proxy names / group names / DIRECT / REJECT

	// url-test only
	TestURL     string
	IntervalSec int
	ToleranceMS int
}
