// Package doctor runs environment diagnostics: is there a usable
// telemetry backend, does the config parse, can the remote host be
// reached. Surfaced as 'gpuwatch doctor'.
package doctor

import "fmt"

// CheckStatus is the outcome level of a single check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name       string
	Status     CheckStatus
	Message    string
	Suggestion string
}

// Check is a single diagnostic.
type Check interface {
	// Name identifies the check in output.
	Name() string

	// Category groups related checks (e.g. "BACKEND", "CONFIG", "SSH").
	Category() string

	// Run executes the check.
	Run() CheckResult
}

// RunAll executes checks in order and collects the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// HasFailures reports whether any check failed outright.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// Summary describes the overall outcome in one line.
func Summary(results []CheckResult) string {
	var warn, fail int
	for _, r := range results {
		switch r.Status {
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	plural := ""
	if total != 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d issue%s found", total, plural)
}
