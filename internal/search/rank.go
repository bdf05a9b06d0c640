package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/idilsaglam/tada/internal/model"
)

// Match tiers, best first.
const (
	tierTitle = iota
	tierDescription
	tierFuzzy
	tierEdit
)

// hit is one matched task. Lower tier and lower cost rank first.
type hit struct {
	idx  int
	tier int
	cost int
}

// corpus is the lowercased view of an indexed collection. It is built once
// per rebuild and never mutated afterwards.
type corpus struct {
	tasks  []model.Task
	titles []string
	descs  []string
}

func newCorpus(tasks []model.Task) *corpus {
	c := &corpus{
		tasks:  model.Clone(tasks),
		titles: make([]string, len(tasks)),
		descs:  make([]string, len(tasks)),
	}
	for i, t := range tasks {
		c.titles[i] = strings.ToLower(t.Title)
		c.descs[i] = strings.ToLower(t.Description)
	}
	return c
}

// substring reports the substring tier of task i for the lowercased query.
func (c *corpus) substring(i int, q string) (hit, bool) {
	if p := strings.Index(c.titles[i], q); p >= 0 {
		return hit{idx: i, tier: tierTitle, cost: p}, true
	}
	if p := strings.Index(c.descs[i], q); p >= 0 {
		return hit{idx: i, tier: tierDescription, cost: p}, true
	}
	return hit{}, false
}

// collect orders hits and resolves them to tasks.
func (c *corpus) collect(hits map[int]hit) []model.Task {
	if len(hits) == 0 {
		return nil
	}
	ordered := make([]hit, 0, len(hits))
	for _, h := range hits {
		ordered = append(ordered, h)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		return a.idx < b.idx
	})
	out := make([]model.Task, len(ordered))
	for i, h := range ordered {
		out[i] = c.tasks[h.idx]
	}
	return out
}

// keep records h unless an equal or better hit for the same task exists.
func keep(hits map[int]hit, h hit) {
	cur, ok := hits[h.idx]
	if !ok || h.tier < cur.tier || (h.tier == cur.tier && h.cost < cur.cost) {
		hits[h.idx] = h
	}
}

func normalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// maxEdits is the edit distance a token of n runes may be off by and still
// count as a near match. Short tokens must match exactly.
func maxEdits(n int) int {
	switch {
	case n < 4:
		return 0
	case n <= 6:
		return 1
	}
	return 2
}
