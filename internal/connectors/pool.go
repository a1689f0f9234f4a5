package connectors

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docask/internal/logger"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Pool runs per-document work on a bounded set of goroutines.
// It is shared by all connectors and safe for concurrent use.
type Pool struct {
	pool *ants.Pool
}

// NewPool creates a pool of size workers.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultWorkers
	}
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.pool.Cap()
}

// Run calls fn(i) for every i in [0, n) and waits for all calls to return.
// Callers write results into slot i so completion order never leaks into
// the output. A nil pool, or one that rejects a task, runs inline.
func (p *Pool) Run(n int, fn func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if p == nil {
			fn(i)
			continue
		}
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			logger.Debug("Worker pool rejected task, running inline: %v", err)
			fn(i)
			wg.Done()
		}
	}
	wg.Wait()
}

// Release stops the workers.
func (p *Pool) Release() {
	if p != nil {
		p.pool.Release()
	}
}
