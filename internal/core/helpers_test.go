// ABOUTME: Shared fixtures for engine tests
// ABOUTME: In-memory storage, dated events, and fake providers
package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/lifeline/internal/embedding"
	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestEngine(t *testing.T, store *sqlite.Storage, provider embedding.Provider) *Engine {
	t.Helper()
	if provider == nil {
		provider = embedding.NewLocal()
	}
	return NewEngine(Components{
		Events:          store.Events(),
		Eras:            store.Eras(),
		Embeddings:      store.Embeddings(),
		CrossReferences: store.CrossReferences(),
		Provider:        provider,
	}, DefaultOptions())
}

func saveEvents(t *testing.T, store *sqlite.Storage, events ...models.Event) {
	t.Helper()
	for i := range events {
		require.NoError(t, store.Events().Save(context.Background(), &events[i]))
	}
}

// embedAll embeds every stored event through the engine
func embedAll(t *testing.T, engine *Engine) {
	t.Helper()
	report, err := engine.RegenerateAll(context.Background(), BatchOptions{})
	require.NoError(t, err)
	require.Empty(t, report.Errors)
}

// scenarioEvents is the graduation, first job, Paris timeline
func scenarioEvents() []models.Event {
	return []models.Event{
		{ID: "evt_a", Title: "Graduated college", Category: "education", StartDate: date("2020-05-15")},
		{ID: "evt_b", Title: "Started first job", Category: "work", StartDate: date("2020-06-01")},
		{ID: "evt_c", Title: "Trip to Paris", Category: "travel", StartDate: date("2021-08-10")},
	}
}

// fakeProvider returns fixed vectors per text and counts calls
type fakeProvider struct {
	name    string
	model   string
	dim     int
	vectors map[string][]float64
	err     error
	delay   time.Duration

	calls       atomic.Int32
	mu          sync.Mutex
	inflight    int
	maxInflight int
}

func newFakeProvider(dim int) *fakeProvider {
	return &fakeProvider{name: "fake", model: "fake-v1", dim: dim, vectors: map[string][]float64{}}
}

func (f *fakeProvider) Name() string   { return f.name }
func (f *fakeProvider) Model() string  { return f.model }
func (f *fakeProvider) Dimension() int { return f.dim }

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	v := make([]float64, f.dim)
	v[0] = 1
	return v, nil
}
