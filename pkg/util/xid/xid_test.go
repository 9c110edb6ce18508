package xid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMachine(id uint16) Option {
	return WithMachineID(func() (uint16, error) { return id, nil })
}

func TestGenerator_UniqueAndIncreasing(t *testing.T) {
	gen, err := NewGenerator(fixedMachine(7))
	require.NoError(t, err)

	const n = 200
	ids := make([]int64, 0, n)
	for range n {
		s, err := gen.Next(context.Background())
		require.NoError(t, err)
		id, err := Parse(s)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }))
	for i := 1; i < n; i++ {
		assert.NotEqual(t, ids[i-1], ids[i])
	}
}

func TestGenerator_Concurrent(t *testing.T) {
	gen, err := NewGenerator(fixedMachine(1))
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				id, err := gen.Next(context.Background())
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 400)
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	_, err := NewGenerator(WithMaxWait(-time.Second))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewGenerator(WithRetryInterval(0))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewGenerator(WithMachineID(func() (uint16, error) { return 0, errors.New("no machine") }))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerator_RetriesUntilClockRecovers(t *testing.T) {
	calls := 0
	g := &Generator{
		next: func() (int64, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("clock moved backwards")
			}
			return 42, nil
		},
		maxWait:       time.Second,
		retryInterval: time.Millisecond,
	}
	id, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, 3, calls)
}

func TestGenerator_RetryTimeout(t *testing.T) {
	g := &Generator{
		next:          func() (int64, error) { return 0, errors.New("clock moved backwards") },
		maxWait:       5 * time.Millisecond,
		retryInterval: time.Millisecond,
	}
	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, ErrClockBackwardTimeout)
}

func TestGenerator_OverTimeLimitNotRetried(t *testing.T) {
	calls := 0
	g := &Generator{
		next: func() (int64, error) {
			calls++
			return 0, sonyflake.ErrOverTimeLimit
		},
		maxWait:       time.Second,
		retryInterval: time.Millisecond,
	}
	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, ErrOverTimeLimit)
	assert.Equal(t, 1, calls)
}

func TestGenerator_ContextCanceled(t *testing.T) {
	g := &Generator{
		next:          func() (int64, error) { return 0, errors.New("clock moved backwards") },
		maxWait:       time.Minute,
		retryInterval: 10 * time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_Nil(t *testing.T) {
	var g *Generator
	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, ErrNilGenerator)

	_, err = (&Generator{}).Next(context.Background())
	assert.ErrorIs(t, err, ErrNilGenerator)
}

func TestParse(t *testing.T) {
	id, err := Parse("12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	for _, in := range []string{"", "abc", "0", "-1", "1.5"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidID, in)
	}
}

func TestDefaultMachineID(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvMachineID, "513")
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, uint16(513), id)
	})

	t.Run("invalid env", func(t *testing.T) {
		t.Setenv(EnvMachineID, strconv.Itoa(1<<16))
		_, err := DefaultMachineID()
		assert.Error(t, err)
	})

	t.Run("hostname", func(t *testing.T) {
		t.Setenv(EnvMachineID, "")
		orig := osHostname
		t.Cleanup(func() { osHostname = orig })

		osHostname = func() (string, error) { return "api-0", nil }
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, hashToMachineID("api-0"), id)

		osHostname = func() (string, error) { return "", nil }
		_, err = DefaultMachineID()
		assert.Error(t, err)
	})
}

func TestHashToMachineID_Spread(t *testing.T) {
	seen := make(map[uint16]struct{})
	for i := range 64 {
		seen[hashToMachineID(fmt.Sprintf("api-%d", i))] = struct{}{}
	}
	// 64 个主机名落在 65536 个槽位中，碰撞应极少
	assert.Greater(t, len(seen), 60)
	assert.Equal(t, hashToMachineID("api-0"), hashToMachineID("api-0"))
}
