package parallel

import (
	"sync"
)

// workChunk represents a range of indices for a worker to process.
type workChunk struct {
	lo, hi int
	body   func(lo, hi int)
}

// Pool keeps a fixed set of worker goroutines alive between calls, so a
// frame does not pay goroutine start-up for its fan-out.
type Pool struct {
	numWorkers int
	threshold  int

	mu sync.Mutex // one Run at a time

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewPool creates a pool of numWorkers goroutines. Calls with fewer than
// threshold items run on the caller; below that the hand-off costs more
// than it saves. Workers start on first use.
func NewPool(numWorkers, threshold int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		threshold:  threshold,
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// startWorkers launches persistent worker goroutines.
func (p *Pool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them. The pool can be
// used again afterwards; workers restart on the next Run.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.body(chunk.lo, chunk.hi)
			p.doneChan <- struct{}{}
		}
	}
}

// Run implements Runner.
func (p *Pool) Run(n int, body func(lo, hi int)) {
	if n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if n < p.threshold || p.numWorkers == 1 {
		body(0, n)
		return
	}

	p.startWorkers()

	// At most numWorkers chunks, so dispatch never blocks on the buffer.
	dispatched := 0
	chunks(n, p.numWorkers, func(lo, hi int) {
		p.workChan <- workChunk{lo: lo, hi: hi, body: body}
		dispatched++
	})

	// Wait for all chunks to complete
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
