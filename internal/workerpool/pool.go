// Package workerpool implements the bounded, FIFO, idle-timeout worker
// pool shape spec.md describes twice with the same contract: the download
// queue's worker pool (§4.6: "download_threads in [1,50] or auto ... idle
// threads terminate after 5 seconds ... FIFO") and the HTTP server's
// connection-handler pool (§4.7: "min 3, max 300, 30-second idle timeout,
// FIFO queue"). One implementation serves both call sites.
package workerpool

import (
	"sync"
	"time"
)

// Pool runs submitted tasks on a bounded set of goroutines, fed by an
// unbounded FIFO backlog so Submit itself never blocks (spec §5: enqueue is
// non-blocking apart from lock acquisition). A single dispatcher goroutine
// drains the backlog and hands tasks to workers, spawning on-demand workers
// up to max and blocking only there, never in the caller of Submit.
type Pool struct {
	tasks       chan func()
	idleTimeout time.Duration
	max         int

	mu      sync.Mutex
	workers int
	pending []func()
	closed  bool

	notify       chan struct{}
	dispatchDone chan struct{}
}

// New builds a Pool. min workers are kept warm regardless of idleTimeout;
// up to max workers are spawned on demand and retired after idleTimeout.
func New(min, max int, idleTimeout time.Duration) *Pool {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	p := &Pool{
		tasks:        make(chan func()),
		idleTimeout:  idleTimeout,
		max:          max,
		notify:       make(chan struct{}, 1),
		dispatchDone: make(chan struct{}),
	}
	for i := 0; i < min; i++ {
		p.spawnWorker(true)
	}
	go p.dispatch()
	return p
}

// Submit appends task to the FIFO backlog and returns immediately; it never
// blocks on worker availability.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	p.pending = append(p.pending, task)
	p.mu.Unlock()
	p.wake()
}

func (p *Pool) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// dispatch drains pending in FIFO order, handing each task to a worker
// (spawning one on demand if below max). It's the only goroutine that
// blocks on worker availability, so a burst of Submit calls never blocks
// its callers.
func (p *Pool) dispatch() {
	defer close(p.dispatchDone)
	for {
		p.mu.Lock()
		for len(p.pending) == 0 && !p.closed {
			p.mu.Unlock()
			<-p.notify
			p.mu.Lock()
		}
		if len(p.pending) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		task := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()

		p.dispatchOne(task)
	}
}

func (p *Pool) dispatchOne(task func()) {
	p.mu.Lock()
	if p.workers < p.max {
		select {
		case p.tasks <- task:
			p.mu.Unlock()
			return
		default:
			p.spawnWorker(false)
			p.mu.Unlock()
			p.tasks <- task
			return
		}
	}
	p.mu.Unlock()
	p.tasks <- task
}

func (p *Pool) spawnWorker(permanent bool) {
	p.workers++
	go func() {
		defer func() {
			p.mu.Lock()
			p.workers--
			p.mu.Unlock()
		}()
		for {
			if permanent {
				task, ok := <-p.tasks
				if !ok {
					return
				}
				task()
				continue
			}
			select {
			case task, ok := <-p.tasks:
				if !ok {
					return
				}
				task()
			case <-time.After(p.idleTimeout):
				return
			}
		}
	}()
}

// Close stops accepting new work once the backlog drains, then lets
// in-flight tasks finish. It does not wait for them; callers that need
// that should coordinate separately (e.g. via a sync.WaitGroup around
// their task bodies).
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wake()
	<-p.dispatchDone
	close(p.tasks)
}
