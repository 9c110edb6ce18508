package xjson

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestPrettyE(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{name: "struct", input: testUser{Name: "Alice", Age: 30}, want: "{\n  \"name\": \"Alice\",\n  \"age\": 30\n}"},
		{name: "nil", input: nil, want: "null"},
		{name: "slice", input: []int{1, 2}, want: "[\n  1,\n  2\n]"},
		{name: "html not escaped", input: "<a&b>", want: `"<a&b>"`},
		{name: "NaN", input: math.NaN(), wantErr: true},
		{name: "channel", input: make(chan int), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrettyE(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMarshal)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPretty_ErrorMarker(t *testing.T) {
	assert.Contains(t, Pretty(math.Inf(1)), "<marshal error:")
	assert.Equal(t, "{\n  \"a\": 1\n}", Pretty(map[string]int{"a": 1}))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]string{"k": "v"}))
	assert.Equal(t, "{\n  \"k\": \"v\"\n}\n", buf.String())

	assert.ErrorIs(t, Write(&buf, math.NaN()), ErrMarshal)
}

func TestWrite_WriterError(t *testing.T) {
	err := Write(failingWriter{}, 1)
	assert.EqualError(t, err, "disk full")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
