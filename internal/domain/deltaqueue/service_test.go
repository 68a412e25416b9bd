package deltaqueue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanflow/internal/core/apperror"
	"scanflow/internal/core/types"
)

type memRepo struct {
	mu      sync.Mutex
	entries []Entry
	failing error
}

func (r *memRepo) Append(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return r.failing
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRepo) Sum(_ context.Context, documentID, rowKey string) (types.Quantity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum types.Quantity
	for _, e := range r.entries {
		if e.DocumentID == documentID && e.RowKey == rowKey {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (r *memRepo) MarkSent(_ context.Context, documentID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range r.entries {
		e := &r.entries[i]
		if e.DocumentID == documentID && want[e.ID] && !e.Sent {
			e.Sent = true
			n++
		}
	}
	return n, nil
}

func (r *memRepo) HasUnsent(_ context.Context, documentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.DocumentID == documentID && !e.Sent {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListByDocument(_ context.Context, documentID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return nil, r.failing
	}
	var out []Entry
	for _, e := range r.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type inlineTx struct{ calls int }

func (t *inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func q(n int64) types.Quantity { return types.NewQuantity(n) }

func seed(t *testing.T, m *Merger, rowKey string, deltas ...int64) {
	t.Helper()
	for _, d := range deltas {
		require.NoError(t, m.Append(context.Background(), Entry{DocumentID: "doc-1", RowKey: rowKey, Delta: q(d)}))
	}
}

func TestMerger_SumCountsSentAndUnsent(t *testing.T) {
	repo := &memRepo{}
	txm := &inlineTx{}
	m := NewMerger(repo, txm)
	ctx := context.Background()

	seed(t, m, "row-1", 1, 2, 3)
	seed(t, m, "row-2", 10)

	sum, err := m.Sum(ctx, "doc-1", "row-1")
	require.NoError(t, err)
	assert.Equal(t, q(6), sum)

	require.NoError(t, m.MarkSent(ctx, "doc-1", []string{repo.entries[0].ID, repo.entries[1].ID}))
	assert.Equal(t, 1, txm.calls)

	sum, err = m.Sum(ctx, "doc-1", "row-1")
	require.NoError(t, err)
	assert.Equal(t, q(6), sum)
	assert.Len(t, repo.entries, 4)
}

func TestMerger_Unsent(t *testing.T) {
	repo := &memRepo{}
	m := NewMerger(repo, &inlineTx{})
	ctx := context.Background()

	unsent, err := m.Unsent(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, unsent)

	seed(t, m, "row-1", 1, 1)
	unsent, err = m.Unsent(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, unsent)

	require.NoError(t, m.MarkSent(ctx, "doc-1", []string{repo.entries[0].ID}))
	unsent, err = m.Unsent(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, unsent)

	require.NoError(t, m.MarkSent(ctx, "doc-1", []string{repo.entries[1].ID}))
	unsent, err = m.Unsent(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, unsent)
}

func TestMerger_Validation(t *testing.T) {
	m := NewMerger(&memRepo{}, &inlineTx{})
	ctx := context.Background()

	err := m.Append(ctx, Entry{DocumentID: "doc-1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = m.Sum(ctx, "doc-1", "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = m.MarkSent(ctx, "doc-1", nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestMerger_AppendKeepsGivenID(t *testing.T) {
	repo := &memRepo{}
	m := NewMerger(repo, &inlineTx{})

	require.NoError(t, m.Append(context.Background(), Entry{ID: "q-1", DocumentID: "doc-1", RowKey: "row-1", Delta: q(1)}))
	require.NoError(t, m.Append(context.Background(), Entry{DocumentID: "doc-1", RowKey: "row-1", Delta: q(1)}))

	assert.Equal(t, "q-1", repo.entries[0].ID)
	assert.NotEmpty(t, repo.entries[1].ID)
}

func TestMerger_MergeRepoFailure(t *testing.T) {
	fail := errors.New("timeout")
	m := NewMerger(&memRepo{failing: fail}, &inlineTx{})

	_, err := m.Merge(context.Background(), "doc-1")

	assert.ErrorIs(t, err, fail)
}

func TestMerger_Merge(t *testing.T) {
	repo := &memRepo{}
	m := NewMerger(repo, &inlineTx{})
	ctx := context.Background()

	seed(t, m, "row-b", 4)
	seed(t, m, "row-a", 1, 2)
	require.NoError(t, m.MarkSent(ctx, "doc-1", []string{repo.entries[1].ID}))

	merged, err := m.Merge(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, merged, 2)

	assert.Equal(t, "row-a", merged[0].RowKey)
	assert.Equal(t, q(3), merged[0].Total)
	assert.Equal(t, q(2), merged[0].Pending)
	assert.Equal(t, []string{repo.entries[2].ID}, merged[0].PendingIDs)

	assert.Equal(t, MergedLine{RowKey: "row-b", Total: q(4), Pending: q(4), PendingIDs: []string{repo.entries[0].ID}}, merged[1])
}

func TestMergeEntries_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := make([]Entry, 0, 50)
	for i := 0; i < 50; i++ {
		entries = append(entries, Entry{
			ID:        fmt.Sprintf("e-%02d", i),
			RowKey:    fmt.Sprintf("row-%d", rng.Intn(5)),
			Delta:     types.Quantity(rng.Int63n(100_000)),
			Sent:      rng.Intn(2) == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	want := MergeEntries(entries)

	for n := 0; n < 20; n++ {
		shuffled := append([]Entry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, MergeEntries(shuffled))
	}
}

func TestMergeEntries_Empty(t *testing.T) {
	assert.Empty(t, MergeEntries(nil))
}
