// Package tasks owns the task collection. Every change is followed by a
// full-snapshot write through a store.Store and a full rebuild of the
// search index.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/search"
	"github.com/idilsaglam/tada/internal/store"
)

// DefaultKey is the store key holding the collection.
const DefaultKey = "tasks"

const maxIDAttempts = 8

// Config wires a Repository. Only Store is required.
type Config struct {
	Store store.Store

	// Index defaults to the fuzzy engine. The Repository closes it on Close.
	Index search.Index

	Logger *log.Logger
	Key    string

	// NewID defaults to random UUIDs.
	NewID func() string

	// OnPersistError is called from the background writer after each
	// failed write.
	OnPersistError func(error)
}

// Repository is the single source of truth for the task list. It is safe
// for concurrent use, but is designed around one logical writer.
type Repository struct {
	mu    sync.RWMutex
	tasks []model.Task

	store   store.Store
	key     string
	index   search.Index
	persist *persister
	logger  *log.Logger
	newID   func() string
}

func New(cfg Config) *Repository {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Index == nil {
		cfg.Index = search.NewFuzzy()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	logger := cfg.Logger.With("component", "tasks")
	return &Repository{
		store:   cfg.Store,
		key:     cfg.Key,
		index:   cfg.Index,
		persist: newPersister(cfg.Store, cfg.Key, logger, cfg.OnPersistError),
		logger:  logger,
		newID:   cfg.NewID,
	}
}

// Load reads the stored collection. Call it once, before any mutation.
// A missing or malformed blob yields an empty list and no error. A failed
// read also yields an empty list and returns a *PersistenceError; the
// Repository stays usable in memory.
func (r *Repository) Load(ctx context.Context) error {
	var (
		loaded []model.Task
		perr   error
	)
	blob, err := r.store.Get(ctx, r.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.logger.Debug("no stored tasks", "key", r.key)
	case err != nil:
		perr = &PersistenceError{Op: "read", Key: r.key, Err: err}
		r.logger.Warn("could not read stored tasks, starting empty", "key", r.key, "err", err)
	default:
		loaded, err = decode(blob)
		if err != nil {
			r.logger.Warn("ignoring malformed stored tasks", "key", r.key, "err", err)
			loaded = nil
		}
	}
	loaded = r.dropDuplicateIDs(loaded)

	r.mu.Lock()
	r.tasks = loaded
	r.rebuild(model.Clone(loaded))
	r.mu.Unlock()

	r.logger.Debug("loaded", "tasks", len(loaded))
	return perr
}

// dropDuplicateIDs keeps the first task for each ID.
func (r *Repository) dropDuplicateIDs(in []model.Task) []model.Task {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, t := range in {
		if seen[t.ID] {
			r.logger.Warn("dropping stored task with duplicate id", "id", t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// Create appends a task with trimmed fields and a fresh ID.
func (r *Repository) Create(title, description string) (model.Task, error) {
	title, description, field := model.Normalize(title, description)
	if field != "" {
		return model.Task{}, &ValidationError{Field: field}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.freshID()
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: id, Title: title, Description: description}
	r.tasks = append(r.tasks, t)
	r.commit("create", id)
	return t, nil
}

// Update replaces title and description in place. ID, done flag and
// position are kept.
func (r *Repository) Update(id, title, description string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	title, description, field := model.Normalize(title, description)
	if field != "" {
		return model.Task{}, &ValidationError{Field: field}
	}
	r.tasks[i].Title = title
	r.tasks[i].Description = description
	r.commit("update", id)
	return r.tasks[i], nil
}

// SetDone sets the done flag and nothing else.
func (r *Repository) SetDone(id string, done bool) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	r.tasks[i].IsDone = done
	r.commit("set-done", id)
	return r.tasks[i], nil
}

// Toggle flips the done flag.
func (r *Repository) Toggle(id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	r.tasks[i].IsDone = !r.tasks[i].IsDone
	r.commit("toggle", id)
	return r.tasks[i], nil
}

// Duplicate appends a pending copy of the task under a fresh ID.
func (r *Repository) Duplicate(id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	nid, err := r.freshID()
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: nid, Title: r.tasks[i].Title, Description: r.tasks[i].Description}
	r.tasks = append(r.tasks, t)
	r.commit("duplicate", nid)
	return t, nil
}

// Delete removes the task and reports whether it existed. Deleting an
// unknown ID changes nothing.
func (r *Repository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return false
	}
	r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
	r.commit("delete", id)
	return true
}

// Snapshot returns a copy of the collection in insertion order.
func (r *Repository) Snapshot() []model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.Clone(r.tasks)
}

// Get returns a copy of one task.
func (r *Repository) Get(id string) (model.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.find(id); i >= 0 {
		return r.tasks[i], true
	}
	return model.Task{}, false
}

// Len returns the number of tasks.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Stats counts done and pending tasks.
func (r *Repository) Stats() (done, pending int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.Stats(r.tasks)
}

// Search returns the whole collection for blank text and ranked index
// matches otherwise.
func (r *Repository) Search(text string) []model.Task {
	if strings.TrimSpace(text) == "" {
		return r.Snapshot()
	}
	return r.index.Query(text)
}

// Persist resubmits the current collection, e.g. after a failed write.
func (r *Repository) Persist() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submit(model.Clone(r.tasks))
}

// Flush waits for pending writes. It returns the newest write's
// *PersistenceError, if it failed.
func (r *Repository) Flush(ctx context.Context) error {
	return r.persist.flush(ctx)
}

// PersistErr returns the newest write failure, cleared by the next
// successful write.
func (r *Repository) PersistErr() error {
	return r.persist.err()
}

// Close flushes pending writes, stops the writer and closes the index.
// The store is left open for its owner to close.
func (r *Repository) Close(ctx context.Context) error {
	err := r.persist.close(ctx)
	if cerr := r.index.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close index: %w", cerr)
	}
	return err
}

// find returns the position of id, or -1. Callers hold r.mu.
func (r *Repository) find(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// freshID asks the generator for an ID not already in use. Callers hold r.mu.
func (r *Repository) freshID() (string, error) {
	for range maxIDAttempts {
		id := r.newID()
		if id != "" && r.find(id) < 0 {
			return id, nil
		}
		r.logger.Warn("id generator returned a used id, retrying", "id", id)
	}
	return "", fmt.Errorf("no unused task id after %d attempts", maxIDAttempts)
}

// commit snapshots the collection, hands it to the writer and rebuilds
// the index. Callers hold r.mu for writing.
func (r *Repository) commit(op, id string) {
	snap := model.Clone(r.tasks)
	r.submit(snap)
	r.rebuild(snap)
	r.logger.Debug(op, "id", id, "tasks", len(snap))
}

func (r *Repository) submit(snap []model.Task) {
	blob, err := encode(snap)
	if err != nil {
		r.logger.Error("could not encode tasks", "err", err)
		return
	}
	r.persist.submit(blob)
}

func (r *Repository) rebuild(snap []model.Task) {
	if err := r.index.Rebuild(snap); err != nil {
		r.logger.Error("search index rebuild failed", "err", err)
	}
}
