package analyzer

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/analysis"
)

// Job is one unit of analysis work: a project handle and the language its
// manifest was discovered under (selecting which Analyzer to invoke, in a
// multi-language workspace).
type Job struct {
	Handle   analysis.ProjectHandle
	Language analysis.Language
}

// Result pairs a Job with its outcome.
type Result struct {
	Job   Job
	Entry analysis.Entry
	Err   error
}

// Pool runs the analysis phase's bounded worker pool: Degree goroutines
// drain a job queue, each invoking the Analyzer registered for the job's
// language. A failed job cancels the whole collection; the first failure
// wins and names the project it came from.
type Pool struct {
	// Analyzers maps a project's language to the adapter that analyzes it.
	Analyzers map[analysis.Language]adapters.Analyzer
	// Degree is the number of concurrent workers. Non-positive means 1.
	Degree int
}

// Run analyzes every job, stopping the whole pool as soon as one fails.
// Results are returned in the same order as jobs were given, regardless of
// completion order.
func (p Pool) Run(ctx context.Context, jobs []Job) ([]analysis.Entry, error) {
	degree := p.Degree
	if degree <= 0 {
		degree = 1
	}
	if degree > len(jobs) {
		degree = len(jobs)
	}
	if degree == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		idx int
		Job
	}
	queue := make(chan indexed)
	results := make(chan struct {
		idx   int
		entry analysis.Entry
		err   error
	}, len(jobs))

	var wg sync.WaitGroup
	wg.Add(degree)
	for w := 0; w < degree; w++ {
		go func() {
			defer wg.Done()
			for job := range queue {
				an, ok := p.Analyzers[job.Language]
				if !ok {
					results <- struct {
						idx   int
						entry analysis.Entry
						err   error
					}{job.idx, analysis.Entry{}, errors.Errorf("analyzer: no adapter registered for language %q (%s)", job.Language, job.Handle)}
					continue
				}
				entry, err := an.Analyze(ctx, job.Handle)
				if err != nil {
					err = errors.Wrapf(err, "analyzer: %s", job.Handle)
				}
				results <- struct {
					idx   int
					entry analysis.Entry
					err   error
				}{job.idx, entry, err}
			}
		}()
	}

	go func() {
		defer close(queue)
		for i, j := range jobs {
			select {
			case queue <- indexed{idx: i, Job: j}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	entries := make([]analysis.Entry, len(jobs))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		entries[r.idx] = r.entry
	}
	return entries, firstErr
}
