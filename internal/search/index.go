// Package search answers "which tasks approximately match this text".
//
// An Index is rebuilt from the full task collection after every change and
// holds no state that is not derived from that collection. Both engines
// share one ranking contract: tasks containing the query as a
// case-insensitive substring of the title or description come before any
// fuzzy-only match, title hits before description hits, earlier positions
// first, and insertion order breaks ties.
package search

import (
	"fmt"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

// Index is a rebuildable fuzzy-match index over tasks.
type Index interface {
	// Rebuild discards the previous state and indexes tasks.
	Rebuild(tasks []model.Task) error

	// Query returns matching tasks, best match first. Blank text matches
	// nothing.
	Query(text string) []model.Task

	// Len reports how many tasks the current index holds.
	Len() int

	Close() error
}

const (
	EngineFuzzy = "fuzzy"
	EngineBleve = "bleve"
)

// Engines lists the accepted engine names.
var Engines = []string{EngineFuzzy, EngineBleve}

// New returns an empty index for the named engine. The empty name selects
// the fuzzy engine.
func New(engine string) (Index, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineFuzzy:
		return NewFuzzy(), nil
	case EngineBleve:
		return NewBleve(), nil
	}
	return nil, fmt.Errorf("unknown search engine %q (want one of %s)", engine, strings.Join(Engines, ", "))
}
