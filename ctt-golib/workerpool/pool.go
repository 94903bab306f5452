package workerpool

import (
	"sync"

	"github.com/kiteco/ctt/ctt-golib/errors"
)

// Job is a unit of work run by the pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	jobs    chan Job
	stop    chan struct{}
	stopped sync.Once

	pending sync.WaitGroup

	m    sync.Mutex
	errs errors.List
}

// New creates a pool with n workers; n < 1 is treated as 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		jobs: make(chan Job),
		stop: make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			err := job()
			if err != nil {
				p.m.Lock()
				p.errs = errors.Append(p.errs, err)
				p.m.Unlock()
			}
			p.pending.Done()
		}
	}
}

func (p *Pool) submit(jobs []Job) {
	for _, job := range jobs {
		select {
		case <-p.stop:
			p.pending.Done()
		case p.jobs <- job:
		}
	}
}

// Add queues jobs without blocking the caller.
func (p *Pool) Add(jobs []Job) {
	p.pending.Add(len(jobs))
	go p.submit(jobs)
}

// AddBlocking queues jobs, returning once every job has been handed to a worker.
func (p *Pool) AddBlocking(jobs []Job) {
	p.pending.Add(len(jobs))
	p.submit(jobs)
}

// Wait blocks until all queued jobs have finished or been dropped by Stop,
// and returns the errors of the jobs that ran since the last Wait.
func (p *Pool) Wait() error {
	p.pending.Wait()

	p.m.Lock()
	defer p.m.Unlock()
	errs := p.errs
	p.errs = nil
	return errs.ErrorOrNil()
}

// Stop drops jobs that have not started yet and shuts down the workers.
// Jobs already running are not interrupted.
func (p *Pool) Stop() {
	p.stopped.Do(func() {
		close(p.stop)
	})
}
