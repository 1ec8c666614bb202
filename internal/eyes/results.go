package eyes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey   = errors.New("API key is missing")
	ErrMissingTestName = errors.New("test name is missing")
	ErrAlreadyOpen     = errors.New("eyes session is already open")
	ErrNotOpen         = errors.New("eyes session is not open")
	ErrDiffsFound      = errors.New("differences found")
	ErrNewTest         = errors.New("new test ended")
	ErrTestFailed      = errors.New("test failed")
	ErrNoResults       = errors.New("server returned no test results")
)

// TestResultsStatus is the dashboard verdict of a test
type TestResultsStatus string

const (
	StatusPassed     TestResultsStatus = "Passed"
	StatusUnresolved TestResultsStatus = "Unresolved"
	StatusFailed     TestResultsStatus = "Failed"
)

// TestResults is what the server reports when a session stops
type TestResults struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	AppName    string            `json:"appName"`
	BatchID    string            `json:"batchId"`
	Status     TestResultsStatus `json:"status"`
	IsNew      bool              `json:"isNew"`
	IsAborted  bool              `json:"isAborted"`
	Steps      int               `json:"steps"`
	Matches    int               `json:"matches"`
	Mismatches int               `json:"mismatches"`
	Missing    int               `json:"missing"`
	URL        string            `json:"url"`
}

// IsPassed reports whether the test passed
func (r *TestResults) IsPassed() bool {
	return r.Status == StatusPassed
}

// Err converts a non-passing verdict into an error wrapping
// ErrNewTest, ErrDiffsFound or ErrTestFailed
func (r *TestResults) Err() error {
	switch r.Status {
	case StatusUnresolved:
		if r.IsNew {
			return fmt.Errorf("%w: %q of %q, see %s", ErrNewTest, r.Name, r.AppName, r.URL)
		}
		return fmt.Errorf("%w: %q of %q, %d of %d steps mismatched, see %s",
			ErrDiffsFound, r.Name, r.AppName, r.Mismatches, r.Steps, r.URL)
	case StatusFailed:
		return fmt.Errorf("%w: %q of %q, see %s", ErrTestFailed, r.Name, r.AppName, r.URL)
	default:
		return nil
	}
}

// TestResultContainer holds the outcome of one stopped session
type TestResultContainer struct {
	TestName string
	Results  *TestResults
	Err      error
}

// TestResultsSummary collects every session stopped through a runner
type TestResultsSummary struct {
	Containers []TestResultContainer
}

// Passed counts passed tests
func (s TestResultsSummary) Passed() int { return s.count(StatusPassed) }

// Unresolved counts tests awaiting review
func (s TestResultsSummary) Unresolved() int { return s.count(StatusUnresolved) }

// Failed counts failed tests
func (s TestResultsSummary) Failed() int { return s.count(StatusFailed) }

// Exceptions counts sessions that could not be stopped
func (s TestResultsSummary) Exceptions() int {
	n := 0
	for _, c := range s.Containers {
		if c.Err != nil {
			n++
		}
	}
	return n
}

func (s TestResultsSummary) count(status TestResultsStatus) int {
	n := 0
	for _, c := range s.Containers {
		if c.Err == nil && c.Results != nil && c.Results.Status == status {
			n++
		}
	}
	return n
}

// Err joins the exception and verdict errors of every container
func (s TestResultsSummary) Err() error {
	var errs []error
	for _, c := range s.Containers {
		switch {
		case c.Err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", c.TestName, c.Err))
		case c.Results != nil:
			if err := c.Results.Err(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s TestResultsSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test results: %d passed, %d unresolved, %d failed, %d exceptions",
		s.Passed(), s.Unresolved(), s.Failed(), s.Exceptions())
	for _, c := range s.Containers {
		if c.Err != nil {
			fmt.Fprintf(&b, "\n  %s: error: %v", c.TestName, c.Err)
			continue
		}
		r := c.Results
		if r == nil {
			fmt.Fprintf(&b, "\n  %s: no results", c.TestName)
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %s (steps %d, matches %d, mismatches %d, missing %d) %s",
			r.Name, r.Status, r.Steps, r.Matches, r.Mismatches, r.Missing, r.URL)
	}
	return b.String()
}
