package digest

import (
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Result is one settled digest computation
type Result struct {
	Path   string
	Digest string
	Err    error
}

// Pool computes digests concurrently over a goroutine pool. Results are
// returned index-aligned with the input paths, so grouping built from
// them is independent of completion order.
type Pool struct {
	computer *Computer
	pool     *ants.Pool
}

// NewPool creates a pool with the given worker count
func NewPool(computer *Computer, workers int) (*Pool, error) {
	if workers <= 0 {
		workers = 1
	}
	p, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Pool{computer: computer, pool: p}, nil
}

// SumAll computes the digest of every path and waits for all results to
// settle before returning
func (p *Pool) SumAll(paths []string) []Result {
	results := make([]Result, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			d, err := p.computer.Sum(path)
			results[i] = Result{Path: path, Digest: d, Err: err}
		})
		if err != nil {
			// Pool rejected the task (released); fall back to inline
			d, serr := p.computer.Sum(path)
			results[i] = Result{Path: path, Digest: d, Err: serr}
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

// Release shuts the worker pool down
func (p *Pool) Release() {
	p.pool.Release()
}
