package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	s, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	require.NoError(t, m.Save(ctx, 1, Session{State: "awaiting_salary", Data: map[string]string{"language": "go"}}))
	active, err := m.InProgress(ctx, 1)
	require.NoError(t, err)
	assert.True(t, active)

	s, err = m.Get(ctx, 1)
	require.NoError(t, err)
	s.Data["language"] = "mutated"
	again, _ := m.Get(ctx, 1)
	assert.Equal(t, "go", again.Data["language"], "Get must return a copy")

	require.NoError(t, m.Clear(ctx, 1))
	active, _ = m.InProgress(ctx, 1)
	assert.False(t, active)

	require.NoError(t, m.Save(ctx, 2, Session{State: "x"}))
	require.NoError(t, m.Save(ctx, 2, Session{State: StateIdle}))
	assert.Zero(t, m.Len())
}

func TestMemoryManagerSweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, 1, Session{State: "a"}))
	now = now.Add(45 * time.Minute)
	require.NoError(t, m.Save(ctx, 2, Session{State: "b"}))
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, m.Sweep(ctx, time.Hour))
	assert.Equal(t, 1, m.Len())
	active, _ := m.InProgress(ctx, 2)
	assert.True(t, active)

	assert.Zero(t, m.Sweep(ctx, 0))
}

func TestRedisManager(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewRedisManager(client, RedisOptions{TTL: time.Hour})

	s, err := m.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	require.NoError(t, m.Save(ctx, 42, Session{State: "awaiting_region", Data: map[string]string{"salary_band": "от 150k"}}))
	assert.True(t, mr.Exists("vacancybot:session:42"))
	assert.Equal(t, time.Hour, mr.TTL("vacancybot:session:42"))

	s, err = m.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, State("awaiting_region"), s.State)
	assert.Equal(t, "от 150k", s.Data["salary_band"])
	assert.False(t, s.UpdatedAt.IsZero())

	mr.FastForward(2 * time.Hour)
	active, err := m.InProgress(ctx, 42)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, m.Save(ctx, 7, Session{State: "awaiting_salary"}))
	require.NoError(t, m.Save(ctx, 7, Session{}))
	assert.False(t, mr.Exists("vacancybot:session:7"))
}

func TestRedisManagerDropsCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("custom:9", "{not json"))
	m := NewRedisManager(client, RedisOptions{Prefix: "custom:"})
	s, err := m.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, s.Idle())
	assert.False(t, mr.Exists("custom:9"))

	require.NoError(t, m.Save(context.Background(), 9, Session{State: "awaiting_salary"}))
	active, err := m.InProgress(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(5)
			defer unlock()
			n := active.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, km.size())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock(2)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
