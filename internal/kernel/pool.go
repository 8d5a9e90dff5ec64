package kernel

import (
	"context"
	"runtime"
	"sync"
)

// rowJob is a contiguous band of image rows handed to one worker.
type rowJob struct {
	y0, y1 int
	fn     func(y int)
	done   *sync.WaitGroup
}

// Pool runs per-row pixel kernels on a fixed set of goroutines.
// Every row is processed exactly once and rows never share output pixels,
// so results are identical to a serial sweep.
type Pool struct {
	jobQueue chan rowJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewPool creates a pool with the given number of workers.
// workers <= 0 selects runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		jobQueue: make(chan rowJob, workers*4),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for range workers {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Rows calls fn(y) for every y in [0, height) and blocks until all rows are done.
// A nil pool, a single worker, or a stopped pool runs the rows inline.
func (p *Pool) Rows(height int, fn func(y int)) {
	if height <= 0 {
		return
	}
	if p == nil || p.workers <= 1 || p.ctx.Err() != nil {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	// A few bands per worker keeps load balanced when rows differ in cost
	// (early-exit raymarching makes sky rows much cheaper than planet rows).
	bands := p.workers * 4
	if bands > height {
		bands = height
	}
	band := (height + bands - 1) / bands

	var done sync.WaitGroup
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		done.Add(1)
		job := rowJob{y0: y0, y1: y1, fn: fn, done: &done}
		select {
		case p.jobQueue <- job:
		case <-p.ctx.Done():
			// Pool stopped mid-dispatch: finish the band here.
			runBand(job)
		}
	}
	done.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			runBand(job)
		case <-p.ctx.Done():
			// Drain anything already queued so Rows callers never hang.
			for {
				select {
				case job := <-p.jobQueue:
					runBand(job)
				default:
					return
				}
			}
		}
	}
}

func runBand(job rowJob) {
	defer job.done.Done()
	for y := job.y0; y < job.y1; y++ {
		job.fn(y)
	}
}

// Shutdown stops the workers. Safe to call more than once; must not overlap
// with an in-flight Rows call.
func (p *Pool) Shutdown() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}
