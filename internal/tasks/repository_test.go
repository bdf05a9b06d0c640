package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/search"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/memstore"
)

func newRepo(t *testing.T, st store.Store) *Repository {
	t.Helper()
	r := New(Config{Store: st})
	require.NoError(t, r.Load(context.Background()))
	t.Cleanup(func() { r.Close(context.Background()) })
	return r
}

func seed(t *testing.T, r *Repository) (milk, dog model.Task) {
	t.Helper()
	milk, err := r.Create("Buy milk", "2%")
	require.NoError(t, err)
	dog, err = r.Create("Walk dog", "evening")
	require.NoError(t, err)
	return milk, dog
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func stored(t *testing.T, st store.Store) []model.Task {
	t.Helper()
	blob, err := st.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	got, err := decode(blob)
	require.NoError(t, err)
	return got
}

func TestLoad_EmptyStore(t *testing.T) {
	r := newRepo(t, memstore.New())
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, r.Len())
}

func TestCreate_TrimsAndAppends(t *testing.T) {
	r := newRepo(t, memstore.New())
	got, err := r.Create("  Buy milk ", "\t2% ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2%", got.Description)
	assert.False(t, got.IsDone)
	assert.NotEmpty(t, got.ID)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, got, snap[0])
}

func TestCreate_Validation(t *testing.T) {
	st := memstore.New()
	r := newRepo(t, st)

	_, err := r.Create("   ", "x")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.FieldTitle, verr.Field)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Create("x", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.FieldDescription, verr.Field)

	require.NoError(t, r.Flush(context.Background()))
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, st.Writes())
}

func TestUpdate(t *testing.T) {
	r := newRepo(t, memstore.New())
	milk, dog := seed(t, r)
	_, err := r.SetDone(milk.ID, true)
	require.NoError(t, err)

	got, err := r.Update(milk.ID, " Buy oat milk ", "1l")
	require.NoError(t, err)
	assert.Equal(t, milk.ID, got.ID)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.True(t, got.IsDone)

	assert.Equal(t, []string{"Buy oat milk", "Walk dog"}, titles(r.Snapshot()))

	_, err = r.Update(dog.ID, "Walk dog", " ")
	assert.ErrorIs(t, err, ErrValidation)
	d, _ := r.Get(dog.ID)
	assert.Equal(t, "evening", d.Description)

	_, err = r.Update("nope", "", "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.ID)
}

func TestSetDoneAndToggle(t *testing.T) {
	r := newRepo(t, memstore.New())
	milk, _ := seed(t, r)

	got, err := r.SetDone(milk.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsDone)
	got, err = r.SetDone(milk.ID, false)
	require.NoError(t, err)
	assert.Equal(t, milk, got)

	got, err = r.Toggle(milk.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDone)
	done, pending := r.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, pending)

	_, err = r.Toggle("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.SetDone("nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicate(t *testing.T) {
	r := newRepo(t, memstore.New())
	milk, _ := seed(t, r)
	_, err := r.SetDone(milk.ID, true)
	require.NoError(t, err)

	dup, err := r.Duplicate(milk.ID)
	require.NoError(t, err)
	assert.NotEqual(t, milk.ID, dup.ID)
	assert.Equal(t, milk.Title, dup.Title)
	assert.Equal(t, milk.Description, dup.Description)
	assert.False(t, dup.IsDone)

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, dup, snap[2])

	_, err = r.Duplicate("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	st := memstore.New()
	r := newRepo(t, st)
	milk, dog := seed(t, r)
	require.NoError(t, r.Flush(context.Background()))
	writes := st.Writes()

	assert.True(t, r.Delete(milk.ID))
	assert.False(t, r.Delete(milk.ID))
	assert.False(t, r.Delete("nope"))
	require.NoError(t, r.Flush(context.Background()))

	assert.Equal(t, writes+1, st.Writes())
	assert.Equal(t, []model.Task{dog}, r.Snapshot())
	assert.Empty(t, r.Search("milk"))
}

func TestSnapshotIsCopy(t *testing.T) {
	r := newRepo(t, memstore.New())
	seed(t, r)
	snap := r.Snapshot()
	snap[0].Title = "changed"
	assert.Equal(t, "Buy milk", r.Snapshot()[0].Title)
}

func TestSearch(t *testing.T) {
	r := newRepo(t, memstore.New())
	seed(t, r)

	assert.Equal(t, []string{"Buy milk"}, titles(r.Search("milk")))
	assert.Equal(t, []string{"Buy milk"}, titles(r.Search("MILK")))
	assert.Equal(t, []string{"Walk dog"}, titles(r.Search("EVEN")))
	assert.Empty(t, r.Search("zzz-nomatch"))
	assert.Equal(t, []string{"Buy milk", "Walk dog"}, titles(r.Search("  ")))
}

func TestSearch_SeesLatestMutation(t *testing.T) {
	r := newRepo(t, memstore.New())
	milk, _ := seed(t, r)
	_, err := r.Update(milk.ID, "Buy bread", "white")
	require.NoError(t, err)
	assert.Empty(t, r.Search("milk"))
	assert.Equal(t, []string{"Buy bread"}, titles(r.Search("bread")))
}

func TestSearch_BleveEngine(t *testing.T) {
	idx, err := search.New(search.EngineBleve)
	require.NoError(t, err)
	r := New(Config{Store: memstore.New(), Index: idx})
	require.NoError(t, r.Load(context.Background()))
	defer r.Close(context.Background())
	seed(t, r)

	assert.Equal(t, []string{"Buy milk"}, titles(r.Search("milk")))
	assert.Equal(t, []string{"Walk dog"}, titles(r.Search("EVEN")))
}

func TestRestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := New(Config{Store: jsonstore.New(dir)})
	require.NoError(t, first.Load(ctx))
	milk, _ := seed(t, first)
	_, err := first.SetDone(milk.ID, true)
	require.NoError(t, err)
	want := first.Snapshot()
	require.NoError(t, first.Close(ctx))

	second := New(Config{Store: jsonstore.New(dir)})
	require.NoError(t, second.Load(ctx))
	defer second.Close(ctx)
	assert.Equal(t, want, second.Snapshot())
	assert.Equal(t, []string{"Buy milk"}, titles(second.Search("milk")))
}

func TestLoad_MalformedStartsEmpty(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"garbage": `not json`,
		"null":    `null`,
		"schema":  `[{"id":"a"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			st := memstore.New()
			require.NoError(t, st.Set(ctx, DefaultKey, []byte(blob)))
			r := newRepo(t, st)
			assert.Empty(t, r.Snapshot())
		})
	}
}

func TestLoad_DuplicateIDsKeepFirst(t *testing.T) {
	st := memstore.New()
	require.NoError(t, st.Set(context.Background(), DefaultKey, []byte(`[
		{"id":"a","isDone":false,"title":"first","description":"x"},
		{"id":"a","isDone":true,"title":"second","description":"y"},
		{"id":"b","isDone":false,"title":"third","description":"z"}
	]`)))
	r := newRepo(t, st)
	assert.Equal(t, []string{"first", "third"}, titles(r.Snapshot()))
}

type failingReadStore struct{ *memstore.Store }

func (failingReadStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("permission denied")
}

func TestLoad_ReadFailure(t *testing.T) {
	st := failingReadStore{memstore.New()}
	r := New(Config{Store: st})
	defer r.Close(context.Background())

	err := r.Load(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)
	assert.Empty(t, r.Snapshot())

	_, err = r.Create("still", "works")
	require.NoError(t, err)
	assert.Len(t, r.Snapshot(), 1)
}

func TestPersistFailure(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	failures := make(chan error, 8)
	r := New(Config{Store: st, OnPersistError: func(err error) { failures <- err }})
	require.NoError(t, r.Load(ctx))
	defer r.Close(ctx)

	st.SetFailure(errors.New("disk full"))
	_, err := r.Create("Buy milk", "2%")
	require.NoError(t, err)

	err = r.Flush(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, r.PersistErr(), ErrPersistence)
	assert.Len(t, r.Snapshot(), 1)
	assert.ErrorIs(t, <-failures, ErrPersistence)

	st.SetFailure(nil)
	r.Persist()
	require.NoError(t, r.Flush(ctx))
	assert.NoError(t, r.PersistErr())
	assert.Equal(t, r.Snapshot(), stored(t, st))
}

func TestLastWriteWins(t *testing.T) {
	st := memstore.New()
	r := newRepo(t, st)
	var ids []string
	for i := range 50 {
		got, err := r.Create(fmt.Sprintf("task %d", i), "d")
		require.NoError(t, err)
		ids = append(ids, got.ID)
	}
	for i, id := range ids {
		switch i % 3 {
		case 0:
			_, err := r.Toggle(id)
			require.NoError(t, err)
		case 1:
			r.Delete(id)
		}
	}
	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, r.Snapshot(), stored(t, st))
}

func TestFreshID_RetriesOnCollision(t *testing.T) {
	seq := []string{"a", "a", "b"}
	next := func() string {
		id := seq[0]
		if len(seq) > 1 {
			seq = seq[1:]
		}
		return id
	}
	r := New(Config{Store: memstore.New(), NewID: next})
	require.NoError(t, r.Load(context.Background()))
	defer r.Close(context.Background())

	a, err := r.Create("one", "x")
	require.NoError(t, err)
	b, err := r.Create("two", "y")
	require.NoError(t, err)
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "b", b.ID)

	_, err = r.Create("three", "z")
	assert.Error(t, err)
	assert.Len(t, r.Snapshot(), 2)
}

func TestClose_FlushesPendingWrites(t *testing.T) {
	st := memstore.New()
	r := New(Config{Store: st})
	require.NoError(t, r.Load(context.Background()))
	seed(t, r)
	require.NoError(t, r.Close(context.Background()))
	assert.Len(t, stored(t, st), 2)
}

func TestProperty_CreateAppendsUniqueTrimmed(t *testing.T) {
	word := rapid.StringMatching(`[ \t]{0,2}[A-Za-z0-9%][A-Za-z0-9 %]{0,15}[ \t]{0,2}`)
	rapid.Check(t, func(t *rapid.T) {
		r := New(Config{Store: memstore.New()})
		defer r.Close(context.Background())
		if err := r.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
		n := rapid.IntRange(1, 20).Draw(t, "n")
		seen := make(map[string]bool)
		for i := range n {
			title := word.Draw(t, "title")
			desc := word.Draw(t, "desc")
			got, err := r.Create(title, desc)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if got.Title != strings.TrimSpace(title) || got.Description != strings.TrimSpace(desc) {
				t.Fatalf("not trimmed: %+v", got)
			}
			if seen[got.ID] {
				t.Fatalf("duplicate id %s", got.ID)
			}
			seen[got.ID] = true
			snap := r.Snapshot()
			if len(snap) != i+1 || snap[i] != got {
				t.Fatalf("not appended at the end: %+v", snap)
			}
		}
	})
}
