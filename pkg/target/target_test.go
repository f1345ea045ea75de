package target

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"https", "https://example.com/search?q=test&id=5", nil},
		{"http with port", "http://127.0.0.1:8080/", nil},
		{"uppercase scheme", "HTTPS://example.com", nil},
		{"no scheme", "example.com/path", ErrUnsupportedScheme},
		{"ftp", "ftp://example.com", ErrUnsupportedScheme},
		{"no host", "http:///path", ErrInvalidTarget},
		{"empty", "  ", ErrInvalidTarget},
		{"bad port", "http://example.com:99999/", ErrInvalidTarget},
		{"garbage", "http://[::1", ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.raw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDerivedValues(t *testing.T) {
	t.Parallel()

	tgt := MustParse("https://example.com/search?q=test&id=5#frag")
	assert.Equal(t, "example.com", tgt.Hostname())
	assert.Equal(t, 443, tgt.Port())
	assert.True(t, tgt.IsHTTPS())
	assert.Empty(t, tgt.URL().Fragment)

	plain := MustParse("http://example.com:8080")
	assert.Equal(t, 8080, plain.Port())
	assert.False(t, plain.IsHTTPS())
	assert.Equal(t, 80, MustParse("http://example.com").Port())
}

func TestURLReturnsCopy(t *testing.T) {
	t.Parallel()

	tgt := MustParse("https://example.com/a?x=1")
	u := tgt.URL()
	u.Path = "/mutated"
	assert.Equal(t, "/a", tgt.URL().Path)
}

func TestParamsOrderAndMultiValues(t *testing.T) {
	t.Parallel()

	tgt := MustParse("https://example.com/?b=2&a=1&b=3&empty=&x%20y=a+b")
	params := tgt.Params()
	require.Len(t, params, 4)
	assert.Equal(t, Param{Name: "b", Values: []string{"2", "3"}}, params[0])
	assert.Equal(t, Param{Name: "a", Values: []string{"1"}}, params[1])
	assert.Equal(t, Param{Name: "empty", Values: []string{""}}, params[2])
	assert.Equal(t, Param{Name: "x y", Values: []string{"a b"}}, params[3])

	assert.False(t, MustParse("https://example.com/").HasParams())
}

func TestWithParam(t *testing.T) {
	t.Parallel()

	tgt := MustParse("https://example.com/search?q=test&id=5&id=6")
	probed := tgt.WithParam("id", "' OR '1'='1")

	u, err := url.Parse(probed)
	require.NoError(t, err)
	assert.Equal(t, "/search", u.Path)
	assert.Equal(t, []string{"' OR '1'='1"}, u.Query()["id"])
	assert.Equal(t, []string{"test"}, u.Query()["q"])
	assert.Equal(t, "q=test&id=%27+OR+%271%27%3D%271", u.RawQuery)

	// the target itself is untouched
	assert.Equal(t, "https://example.com/search?q=test&id=5&id=6", tgt.String())
}
