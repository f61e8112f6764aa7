package sync

import (
	"errors"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coachly-backend/pkg/localstore"
	"coachly-backend/pkg/sse"
)

// flakyWriter fails the first failures applications of each intent.
type flakyWriter struct {
	mu       gosync.Mutex
	failures int
	applied  []string
}

func (w *flakyWriter) Apply(intent *Intent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("remote unavailable")
	}
	w.applied = append(w.applied, intent.EntityID)
	return nil
}

func newTestOutbox(t *testing.T, writer RemoteWriter) (*Outbox, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	events := sse.NewManager()
	go events.Run()

	o := NewOutbox(store, writer, events, zap.NewNop())
	o.retryDelay = 5 * time.Millisecond
	require.NoError(t, o.Start())
	t.Cleanup(o.Stop)
	return o, store
}

func TestOutboxConfirmClearsDirty(t *testing.T) {
	writer := &flakyWriter{}
	o, store := newTestOutbox(t, writer)

	require.NoError(t, store.Put(TableHabits, "h1", []byte(`{}`), true))
	require.NoError(t, o.Enqueue(&Intent{
		UserID:   "u1",
		Op:       OpHabitUpsert,
		Table:    TableHabits,
		EntityID: "h1",
		Payload:  []byte(`{}`),
	}))

	o.Flush()

	row, err := store.Get(TableHabits, "h1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, row.Dirty)

	dirty, err := store.DirtyRows()
	require.NoError(t, err)
	assert.Empty(t, dirty)

	assert.Equal(t, []string{"h1"}, writer.applied)
}

func TestOutboxRetriesUntilSuccess(t *testing.T) {
	writer := &flakyWriter{failures: 2}
	o, store := newTestOutbox(t, writer)

	require.NoError(t, store.Put(TableHabits, "h1", []byte(`{}`), true))
	require.NoError(t, o.Enqueue(&Intent{
		UserID:   "u1",
		Op:       OpHabitUpsert,
		Table:    TableHabits,
		EntityID: "h1",
	}))

	o.Flush()

	assert.Equal(t, []string{"h1"}, writer.applied)
	row, err := store.Get(TableHabits, "h1")
	require.NoError(t, err)
	assert.False(t, row.Dirty)
}

func TestOutboxParksAfterMaxAttempts(t *testing.T) {
	writer := &flakyWriter{failures: 100}
	o, store := newTestOutbox(t, writer)

	require.NoError(t, store.Put(TableHabits, "h1", []byte(`{}`), true))
	require.NoError(t, o.Enqueue(&Intent{
		UserID:   "u1",
		Op:       OpHabitUpsert,
		Table:    TableHabits,
		EntityID: "h1",
	}))

	o.Flush()

	assert.Empty(t, writer.applied)

	// The local write stays dirty and the intent row survives for the
	// next run to retry.
	row, err := store.Get(TableHabits, "h1")
	require.NoError(t, err)
	assert.True(t, row.Dirty)

	parked, err := store.Query(outboxTable)
	require.NoError(t, err)
	assert.Len(t, parked, 1)
}

func TestOutboxRequeuesPersistedIntentsOnStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	store, err := localstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	events := sse.NewManager()
	go events.Run()

	// First run: every write fails, the intent gets parked.
	first := NewOutbox(store, &flakyWriter{failures: 100}, events, zap.NewNop())
	first.retryDelay = time.Millisecond
	require.NoError(t, store.Put(TableHabits, "h1", []byte(`{}`), true))
	require.NoError(t, first.Start())
	require.NoError(t, first.Enqueue(&Intent{
		UserID:   "u1",
		Op:       OpHabitUpsert,
		Table:    TableHabits,
		EntityID: "h1",
	}))
	first.Stop()

	// Second run: the remote is back, the parked intent drains.
	writer := &flakyWriter{}
	second := NewOutbox(store, writer, events, zap.NewNop())
	second.retryDelay = time.Millisecond
	require.NoError(t, second.Start())
	second.Flush()
	second.Stop()

	assert.Equal(t, []string{"h1"}, writer.applied)
	row, err := store.Get(TableHabits, "h1")
	require.NoError(t, err)
	assert.False(t, row.Dirty)
}
