package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStream_Nested(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONStream(&buf, true)

	require.NoError(t, s.BeginObject())
	require.NoError(t, s.Field("a", 1))
	require.NoError(t, s.BeginArrayField("list"))
	require.NoError(t, s.Element([2]any{"2020-01-01", 2}))
	require.NoError(t, s.BeginObject())
	require.NoError(t, s.Field("x", "y"))
	require.NoError(t, s.EndObject())
	require.NoError(t, s.EndArray())
	require.NoError(t, s.BeginObjectField("empty"))
	require.NoError(t, s.EndObject())
	require.NoError(t, s.BeginArrayField("none"))
	require.NoError(t, s.EndArray())
	require.NoError(t, s.EndObject())
	require.NoError(t, s.Close())

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), buf.String())
	assert.Equal(t, float64(1), got["a"])
	assert.Equal(t, []any{[]any{"2020-01-01", float64(2)}, map[string]any{"x": "y"}}, got["list"])
	assert.Equal(t, map[string]any{}, got["empty"])
	assert.Equal(t, []any{}, got["none"])
}

func TestJSONStream_Compact(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONStream(&buf, false)
	s.BeginObject()
	s.Field("a", 1)
	s.Field("b", []int{1, 2})
	s.EndObject()
	require.NoError(t, s.Close())
	assert.Equal(t, "{\"a\": 1,\"b\": [1,2]}\n", buf.String())
}

func TestJSONStream_IncompleteFailsClose(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONStream(&buf, true)
	s.BeginObject()
	s.Field("a", 1)
	assert.Error(t, s.Close())
	assert.Zero(t, buf.Len(), "nothing may be flushed for an incomplete document")
}

func TestJSONStream_Misuse(t *testing.T) {
	s := NewJSONStream(&bytes.Buffer{}, false)
	assert.Error(t, s.Field("a", 1), "field outside object")

	s = NewJSONStream(&bytes.Buffer{}, false)
	s.BeginObject()
	assert.Error(t, s.Element(1), "element inside object")
	assert.Error(t, s.EndObject(), "error is sticky")

	s = NewJSONStream(&bytes.Buffer{}, false)
	s.BeginObject()
	assert.Error(t, s.EndArray(), "unbalanced end")

	s = NewJSONStream(&bytes.Buffer{}, false)
	s.BeginObject()
	s.EndObject()
	assert.Error(t, s.BeginObject(), "second root value")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONStream_WriteErrorSurfaces(t *testing.T) {
	s := NewJSONStream(failingWriter{}, false)
	s.BeginObject()
	s.Field("a", 1)
	s.EndObject()
	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestJSONStream_UnencodableValue(t *testing.T) {
	s := NewJSONStream(&bytes.Buffer{}, false)
	s.BeginObject()
	assert.Error(t, s.Field("ch", make(chan int)))
	assert.Error(t, s.Close())
}
