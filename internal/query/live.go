// Package query runs search text against the task list as the user types.
package query

import (
	"sync"
	"time"

	"github.com/idilsaglam/tada/internal/debounce"
	"github.com/idilsaglam/tada/internal/model"
)

// Searcher returns the ranked tasks for text, or every task for blank text.
type Searcher interface {
	Search(text string) []model.Task
}

// Result is the outcome of one search request. Seq orders requests by
// when they were made.
type Result struct {
	Seq   uint64
	Text  string
	Tasks []model.Task
}

// Live debounces typed text and keeps the newest result. A result is
// accepted only if its request is newer than the one already held, so a
// slow debounced search never replaces a later submitted one.
type Live struct {
	searcher Searcher
	onResult func(Result)
	deb      *debounce.Debouncer[string]

	mu     sync.Mutex
	text   string
	latest Result
}

// New returns a Live pipeline. onResult, if set, receives each accepted
// result; it may run on a timer goroutine, and two calls may overlap, so
// receivers should compare Seq themselves.
func New(searcher Searcher, delay time.Duration, onResult func(Result)) *Live {
	l := &Live{searcher: searcher, onResult: onResult}
	l.deb = debounce.New(delay, l.run)
	return l
}

// Type records text and searches once typing pauses.
func (l *Live) Type(text string) uint64 {
	l.setText(text)
	return l.deb.Trigger(text)
}

// Submit searches text now, dropping any pending typed search.
func (l *Live) Submit(text string) uint64 {
	l.setText(text)
	return l.deb.Now(text)
}

// Refresh re-runs the current text now, e.g. after the list changed.
func (l *Live) Refresh() uint64 {
	return l.deb.Now(l.Text())
}

// Text returns the most recently typed or submitted text.
func (l *Live) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Latest returns the newest accepted result.
func (l *Live) Latest() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.latest
	r.Tasks = model.Clone(r.Tasks)
	return r
}

// Pending reports whether a typed search is waiting for its quiet period.
func (l *Live) Pending() bool { return l.deb.Pending() }

// Stop drops any pending search. Later calls do nothing.
func (l *Live) Stop() { l.deb.Stop() }

func (l *Live) setText(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
}

func (l *Live) run(seq uint64, text string) {
	l.accept(Result{Seq: seq, Text: text, Tasks: l.searcher.Search(text)})
}

func (l *Live) accept(r Result) bool {
	l.mu.Lock()
	if r.Seq <= l.latest.Seq {
		l.mu.Unlock()
		return false
	}
	l.latest = r
	l.mu.Unlock()

	if l.onResult != nil {
		l.onResult(Result{Seq: r.Seq, Text: r.Text, Tasks: model.Clone(r.Tasks)})
	}
	return true
}
