package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/store"
)

// persister writes snapshots on a single background goroutine. Snapshots
// submitted while a write is in flight coalesce: only the newest is
// written next, which is correct because every snapshot is the full
// collection.
type persister struct {
	store  store.Store
	key    string
	logger *log.Logger
	onErr  func(error)

	mu        sync.Mutex
	pending   []byte
	submitted uint64 // generation of the newest submitted snapshot
	written   uint64 // generation of the newest completed write
	lastErr   error
	changed   chan struct{} // closed and replaced after every write
	closed    bool

	wake chan struct{}
	done chan struct{}
}

func newPersister(st store.Store, key string, logger *log.Logger, onErr func(error)) *persister {
	p := &persister{
		store:   st,
		key:     key,
		logger:  logger,
		onErr:   onErr,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// submit queues blob and returns immediately. The caller must not modify
// blob afterwards.
func (p *persister) submit(blob []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = blob
	p.submitted++
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for range p.wake {
		for p.writeNext() {
		}
	}
}

// writeNext writes the pending snapshot, if any, and reports whether it did.
func (p *persister) writeNext() bool {
	p.mu.Lock()
	blob, gen := p.pending, p.submitted
	p.pending = nil
	p.mu.Unlock()
	if blob == nil {
		return false
	}

	err := p.store.Set(context.Background(), p.key, blob)

	p.mu.Lock()
	p.written = gen
	if err != nil {
		p.lastErr = &PersistenceError{Op: "write", Key: p.key, Err: err}
	} else {
		p.lastErr = nil
	}
	perr := p.lastErr
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()

	if perr != nil {
		p.logger.Warn("changes are not being saved", "key", p.key, "err", err)
		if p.onErr != nil {
			p.onErr(perr)
		}
	} else {
		p.logger.Debug("saved", "key", p.key, "bytes", len(blob))
	}
	return true
}

// flush waits until every snapshot submitted before the call is written
// and returns the outcome of the newest write.
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.submitted
	for p.written < target {
		ch := p.changed
		p.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		p.mu.Lock()
	}
	err := p.lastErr
	p.mu.Unlock()
	return err
}

func (p *persister) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// close flushes and stops the writer. Later submits are dropped.
func (p *persister) close(ctx context.Context) error {
	err := p.flush(ctx)

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.wake)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}
