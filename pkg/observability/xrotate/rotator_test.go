package xrotate

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_WritesAndCreatesDir(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "logs", "combined.log")

	r, err := NewLumberjack(filename, WithMaxSize(1), WithCompress(false), WithLocalTime(true))
	require.NoError(t, err)

	_, err = r.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestNewLumberjack_NilOptionIgnored(t *testing.T) {
	r, err := NewLumberjack(filepath.Join(t.TempDir(), "a.log"), nil, WithMaxSize(5), nil)
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestNewLumberjack_Validation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		opts []Option
		want error
	}{
		{"empty filename", "", nil, ErrEmptyFilename},
		{"zero size", "a.log", []Option{WithMaxSize(0)}, ErrInvalidMaxSize},
		{"huge size", "a.log", []Option{WithMaxSize(maxSizeMB + 1)}, ErrInvalidMaxSize},
		{"negative backups", "a.log", []Option{WithMaxBackups(-1)}, ErrInvalidMaxBackups},
		{"negative age", "a.log", []Option{WithMaxAge(-1)}, ErrInvalidMaxAge},
		{"no cleanup", "a.log", []Option{WithMaxBackups(0), WithMaxAge(0)}, ErrNoCleanupPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := tt.file
			if file != "" {
				file = filepath.Join(dir, file)
			}
			_, err := NewLumberjack(file, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRotator_Closed(t *testing.T) {
	r, err := NewLumberjack(filepath.Join(t.TempDir(), "c.log"))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
}

func TestRotator_Rotate(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "r.log")
	r, err := NewLumberjack(filename, WithCompress(false))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("before\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("after\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}

func TestRotator_ConcurrentWrite(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "w.log")
	r, err := NewLumberjack(filename)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_, _ = r.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, r.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 200, strings.Count(string(data), "line\n"))
}
