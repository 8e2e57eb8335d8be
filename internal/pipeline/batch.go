package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/neuroanim/internal/storage"
)

// RunAll converts jobs concurrently with at most workers in flight.
// Results keep job order; a failed job leaves a nil entry and contributes
// to the joined error.
func (p *Pipeline) RunAll(ctx context.Context, jobs []Job, workers int) ([]*storage.Run, error) {
	workers = max(1, workers)
	results := make([]*storage.Run, len(jobs))
	errs := make([]error, len(jobs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = fmt.Errorf("%s: %w", job.Source, ctx.Err())
				return
			}
			defer func() { <-sem }()

			run, err := p.Run(ctx, job)
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", job.Source, err)
				return
			}
			results[idx] = run
		}(i, job)
	}

	wg.Wait()
	return results, errors.Join(errs...)
}
