package search

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/idilsaglam/tada/internal/model"
)

// Bleve keeps an in-memory bleve index per rebuild and scores fuzzy
// matches with BM25. Substring hits are re-ranked ahead of bleve's order
// so both engines honor the same contract.
type Bleve struct {
	mu  sync.Mutex // serializes rebuilds
	cur atomic.Pointer[bleveSnapshot]
}

var _ Index = (*Bleve)(nil)

type bleveSnapshot struct {
	*corpus
	index bleve.Index // nil when the collection is empty
	byID  map[string]int
}

// bleveDoc is what gets indexed for each task.
type bleveDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var singleToken = regexp.MustCompile(`^[\p{L}\p{N}]+$`)

func NewBleve() *Bleve {
	b := &Bleve{}
	b.cur.Store(&bleveSnapshot{corpus: newCorpus(nil)})
	return b
}

func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

func (b *Bleve) Rebuild(tasks []model.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := &bleveSnapshot{
		corpus: newCorpus(tasks),
		byID:   make(map[string]int, len(tasks)),
	}
	if len(tasks) > 0 {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return fmt.Errorf("create bleve index: %w", err)
		}
		batch := index.NewBatch()
		for i, t := range tasks {
			snap.byID[t.ID] = i
			if err := batch.Index(t.ID, bleveDoc{Title: t.Title, Description: t.Description}); err != nil {
				index.Close()
				return fmt.Errorf("index task %s: %w", t.ID, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			index.Close()
			return fmt.Errorf("apply bleve batch: %w", err)
		}
		snap.index = index
	}

	old := b.cur.Swap(snap)
	if old != nil && old.index != nil {
		old.index.Close()
	}
	return nil
}

func (b *Bleve) Len() int { return len(b.cur.Load().tasks) }

func (b *Bleve) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.cur.Swap(&bleveSnapshot{corpus: newCorpus(nil)})
	if old != nil && old.index != nil {
		return old.index.Close()
	}
	return nil
}

func (b *Bleve) Query(text string) []model.Task {
	q := normalizeQuery(text)
	if q == "" {
		return nil
	}
	snap := b.cur.Load()
	hits := make(map[int]hit)

	if snap.index != nil {
		req := bleve.NewSearchRequestOptions(buildQuery(q), len(snap.tasks), 0, false)
		// A failed search (e.g. the index was swapped out underneath us)
		// still leaves the substring scan below.
		if res, err := snap.index.Search(req); err == nil {
			for rank, dm := range res.Hits {
				if i, ok := snap.byID[dm.ID]; ok {
					keep(hits, hit{idx: i, tier: tierFuzzy, cost: rank})
				}
			}
		}
	}

	// Substring hits outrank bleve's order, and cover terms the analyzer
	// drops, such as stop words.
	for i := range snap.tasks {
		if h, ok := snap.substring(i, q); ok {
			hits[i] = h
		}
	}
	return snap.collect(hits)
}

func buildQuery(q string) query.Query {
	fuzziness := maxEdits(utf8.RuneCountInString(q))

	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	title.SetFuzziness(fuzziness)
	title.SetBoost(2.0)

	desc := bleve.NewMatchQuery(q)
	desc.SetField("description")
	desc.SetFuzziness(fuzziness)

	disj := bleve.NewDisjunctionQuery(title, desc)
	if singleToken.MatchString(q) {
		for _, field := range []string{"title", "description"} {
			w := bleve.NewWildcardQuery("*" + q + "*")
			w.SetField(field)
			disj.AddQuery(w)
		}
	}
	return disj
}
