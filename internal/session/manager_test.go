package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// bleve starts its analysis workers at package init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/blevesearch/bleve_index_api.AnalysisWorker"))
}

func TestManager_CreateAndDo(t *testing.T) {
	m := NewManager(threeHits())
	snap := m.Create()
	require.NotEmpty(t, snap.ID)
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, NoCursor, snap.Cursor)

	snap, err := m.Do(snap.ID, func(s *Session) {
		s.SetQuery("agent")
		s.NextResult()
	})
	require.NoError(t, err)
	assert.Equal(t, Navigating, snap.State)
	assert.Equal(t, 0, snap.Cursor)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "agent", snap.Active.MatchText)
	assert.Len(t, snap.Results, 3)
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(threeHits())
	_, err := m.Get("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.True(t, errors.Is(m.Delete("missing"), ErrSessionNotFound))
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(threeHits())
	id := m.Create().ID
	require.NoError(t, m.Delete(id))
	assert.Zero(t, m.Len())
	_, err := m.Get(id)
	assert.Error(t, err)
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(threeHits(), WithTTL(time.Minute))
	m.now = func() time.Time { return now }

	stale := m.Create().ID
	now = now.Add(30 * time.Second)
	fresh := m.Create().ID
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, m.Sweep())
	_, err := m.Get(stale)
	assert.Error(t, err)
	_, err = m.Get(fresh)
	assert.NoError(t, err)
}

func TestManager_MaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(threeHits(), WithMaxSessions(2))
	m.now = func() time.Time { now = now.Add(time.Second); return now }

	first := m.Create().ID
	second := m.Create().ID
	_, err := m.Get(first) // touch first so second is older
	require.NoError(t, err)
	m.Create()

	assert.Equal(t, 2, m.Len())
	_, err = m.Get(second)
	assert.Error(t, err)
	_, err = m.Get(first)
	assert.NoError(t, err)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(threeHits())
	id := m.Create().ID
	_, err := m.Do(id, func(s *Session) { s.SetQuery("agent") })
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Do(id, func(s *Session) { s.NextResult() })
		}()
	}
	wg.Wait()

	snap, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 29%3, snap.Cursor)
}

func TestManager_StartAndClose(t *testing.T) {
	m := NewManager(threeHits(), WithTTL(time.Minute))
	m.Start(context.Background())
	m.Close()
	m.Close()
}

func TestManager_StartStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(threeHits(), WithTTL(time.Minute))
	m.Start(ctx)
	cancel()
	m.Close()
}

func TestManager_CreateAtCapWhileInUse(t *testing.T) {
	m := NewManager(threeHits(), WithMaxSessions(20))
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = m.Create().ID
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for round := 0; round < 5; round++ {
			for _, id := range ids {
				_, _ = m.Do(id, func(s *Session) { s.NextResult() })
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 40; i++ {
			m.Create()
		}
	}()
	wg.Wait()
	assert.Equal(t, 20, m.Len())
}
