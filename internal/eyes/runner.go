package eyes

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is how many sessions a runner stops at once
const DefaultConcurrency = 5

// RunnerOption configures a ClassicRunner
type RunnerOption func(*ClassicRunner)

// WithConcurrency limits how many sessions are stopped in parallel
func WithConcurrency(n int) RunnerOption {
	return func(r *ClassicRunner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// ClassicRunner collects the results of every Eyes session bound to it.
// Asynchronous closes run on a bounded group; one failing close never
// cancels the others.
type ClassicRunner struct {
	concurrency int
	group       errgroup.Group

	mu         sync.Mutex
	containers []TestResultContainer
}

// NewClassicRunner creates a runner
func NewClassicRunner(opts ...RunnerOption) *ClassicRunner {
	r := &ClassicRunner{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	r.group.SetLimit(r.concurrency)
	return r
}

func (r *ClassicRunner) record(testName string, results *TestResults, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.containers = append(r.containers, TestResultContainer{
		TestName: testName,
		Results:  results,
		Err:      err,
	})
}

// schedule runs stop in the background and records its outcome.
// It blocks while the concurrency limit is reached.
func (r *ClassicRunner) schedule(testName string, stop func() (*TestResults, error)) {
	r.group.Go(func() error {
		results, err := stop()
		r.record(testName, results, err)
		return nil
	})
}

// GetAllTestResults waits for every pending close and returns the summary.
// With throwOnDiffs it also returns an error when any test did not pass or
// could not be stopped.
func (r *ClassicRunner) GetAllTestResults(ctx context.Context, throwOnDiffs bool) (TestResultsSummary, error) {
	done := make(chan struct{})
	go func() {
		r.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return TestResultsSummary{}, ctx.Err()
	}

	r.mu.Lock()
	summary := TestResultsSummary{Containers: make([]TestResultContainer, len(r.containers))}
	copy(summary.Containers, r.containers)
	r.mu.Unlock()

	if throwOnDiffs {
		if err := summary.Err(); err != nil {
			return summary, err
		}
	}
	return summary, nil
}
