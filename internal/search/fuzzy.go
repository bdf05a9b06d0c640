package search

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/idilsaglam/tada/internal/model"
)

// Fuzzy is the default in-process engine: substring matches, then
// sahilm/fuzzy subsequence matches, then per-token edit distance.
type Fuzzy struct {
	cur atomic.Pointer[corpus]
}

var _ Index = (*Fuzzy)(nil)

func NewFuzzy() *Fuzzy {
	f := &Fuzzy{}
	f.cur.Store(newCorpus(nil))
	return f
}

// fieldSource implements fuzzy.Source over one lowercased field.
type fieldSource []string

func (s fieldSource) String(i int) string { return s[i] }
func (s fieldSource) Len() int            { return len(s) }

func (f *Fuzzy) Rebuild(tasks []model.Task) error {
	f.cur.Store(newCorpus(tasks))
	return nil
}

func (f *Fuzzy) Len() int { return len(f.cur.Load().tasks) }

func (f *Fuzzy) Close() error { return nil }

func (f *Fuzzy) Query(text string) []model.Task {
	q := normalizeQuery(text)
	if q == "" {
		return nil
	}
	c := f.cur.Load()
	hits := make(map[int]hit)

	for i := range c.tasks {
		if h, ok := c.substring(i, q); ok {
			hits[i] = h
		}
	}

	for _, field := range []fieldSource{c.titles, c.descs} {
		for _, m := range fuzzy.FindFrom(q, field) {
			keep(hits, hit{idx: m.Index, tier: tierFuzzy, cost: -m.Score})
		}
	}

	qTokens := tokenize(q)
	if len(qTokens) == 0 {
		return c.collect(hits)
	}
	for i := range c.tasks {
		if _, ok := hits[i]; ok {
			continue
		}
		fieldTokens := append(tokenize(c.titles[i]), tokenize(c.descs[i])...)
		if d, ok := nearTokens(qTokens, fieldTokens); ok {
			hits[i] = hit{idx: i, tier: tierEdit, cost: d}
		}
	}
	return c.collect(hits)
}

// nearTokens reports whether every query token is within maxEdits of some
// field token, and the summed distance of the closest pairs.
func nearTokens(query, field []string) (int, bool) {
	total := 0
	for _, q := range query {
		limit := maxEdits(utf8.RuneCountInString(q))
		best := -1
		for _, f := range field {
			d := levenshtein.ComputeDistance(q, f)
			if d <= limit && (best < 0 || d < best) {
				best = d
			}
		}
		if best < 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}
