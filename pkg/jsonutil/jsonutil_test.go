package jsonutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Target   string   `json:"target"`
	Warnings []string `json:"warnings"`
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	in := sample{Target: "https://example.com/?q=1", Warnings: []string{"missing CSP"}}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.True(t, Valid(data))

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestWriteIndented(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{Target: "t"}, "  "))
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
	assert.Contains(t, buf.String(), "\n  \"target\": \"t\"")
}

func TestWriteCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]int{"a": 1}, ""))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
}

func TestValidRejectsGarbage(t *testing.T) {
	t.Parallel()
	assert.False(t, Valid([]byte("{")))
}
