package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rijks-verifier/internal/core/domain"
)

const testRoot = "https://www.rijksmuseum.nl/api"

func newTestBuilder(t *testing.T, apiKey string) *URLBuilder {
	t.Helper()
	b, err := NewURLBuilder(BuilderConfig{Root: testRoot, Locale: "en", APIKey: apiKey})
	require.NoError(t, err)
	return b
}

// queryOrder returns the query pairs of rawURL in wire order.
func queryOrder(t *testing.T, rawURL string) []domain.Param {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	pairs, err := parseQuery(u.RawQuery)
	require.NoError(t, err)
	return pairs
}

// ============================================================================
// Construction
// ============================================================================

func TestNewURLBuilder_Defaults(t *testing.T) {
	b, err := NewURLBuilder(BuilderConfig{})
	require.NoError(t, err)

	got, err := b.URL("collection")
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot+"/en/collection?format=json", got)
	assert.False(t, b.HasAPIKey())
}

func TestNewURLBuilder_InvalidRoot(t *testing.T) {
	tests := []struct {
		name string
		root string
	}{
		{name: "unsupported scheme", root: "ftp://example.org/api"},
		{name: "no scheme", root: "example.org/api"},
		{name: "missing host", root: "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewURLBuilder(BuilderConfig{Root: tt.root})
			var ce *domain.ConstructionError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

// ============================================================================
// Build
// ============================================================================

func TestBuild_RelativePath(t *testing.T) {
	b := newTestBuilder(t, "abc")

	tests := []struct {
		name string
		spec domain.RequestSpec
		want string
	}{
		{
			name: "key, default format, then params",
			spec: domain.Request("collection", domain.P("q", "rembrandt"), domain.IntParam("ps", 5)),
			want: testRoot + "/en/collection?key=abc&format=json&q=rembrandt&ps=5",
		},
		{
			name: "single leading slash stripped",
			spec: domain.Request("/collection"),
			want: testRoot + "/en/collection?key=abc&format=json",
		},
		{
			name: "key omitted on request",
			spec: domain.RequestSpec{Path: "collection", Params: domain.Params{domain.P("q", "x")}, OmitKey: true},
			want: testRoot + "/en/collection?format=json&q=x",
		},
		{
			name: "caller format replaces default in caller position",
			spec: domain.Request("collection", domain.P("q", "a"), domain.P("format", "jsonp")),
			want: testRoot + "/en/collection?key=abc&q=a&format=jsonp",
		},
		{
			name: "later duplicate overwrites earlier in place",
			spec: domain.Request("collection", domain.IntParam("ps", 5), domain.P("q", "a"), domain.IntParam("ps", 10)),
			want: testRoot + "/en/collection?key=abc&format=json&ps=10&q=a",
		},
		{
			name: "values are percent-encoded",
			spec: domain.Request("collection", domain.P("involvedMaker", "Rembrandt van Rijn"), domain.P("f.dating.period", "17"), domain.P("q", "a&b=c")),
			want: testRoot + "/en/collection?key=abc&format=json&involvedMaker=Rembrandt+van+Rijn&f.dating.period=17&q=a%26b%3Dc",
		},
		{
			name: "object detail path",
			spec: domain.Request("collection/SK-C-5"),
			want: testRoot + "/en/collection/SK-C-5?key=abc&format=json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_AbsolutePathUsedVerbatim(t *testing.T) {
	b := newTestBuilder(t, "abc")

	got, err := b.URL("https://example.org/api/nl/collection?q=x", domain.IntParam("p", 2))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "https://example.org/api/nl/collection?"))
	want := []domain.Param{
		{Key: "q", Value: "x"},
		{Key: "key", Value: "abc"},
		{Key: "format", Value: "json"},
		{Key: "p", Value: "2"},
	}
	if diff := cmp.Diff(want, queryOrder(t, got)); diff != "" {
		t.Errorf("query order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_AbsolutePathKeepsExistingFormat(t *testing.T) {
	b := newTestBuilder(t, "abc")

	got, err := b.URL("http://example.org/collection?format=xml")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/collection?format=xml&key=abc", got)
}

func TestBuild_CallerKeyOverridesCredentialInPlace(t *testing.T) {
	b := newTestBuilder(t, "abc")

	got, err := b.URL("collection", domain.P("q", "x"), domain.P("key", "other"))
	require.NoError(t, err)
	assert.Equal(t, testRoot+"/en/collection?key=other&format=json&q=x", got)
}

func TestBuildLocalized(t *testing.T) {
	b := newTestBuilder(t, "abc")

	got, err := b.BuildLocalized("nl", domain.Request("collection/SK-C-5"))
	require.NoError(t, err)
	assert.Equal(t, testRoot+"/nl/collection/SK-C-5?key=abc&format=json", got)
}

func TestBuild_ConstructionErrors(t *testing.T) {
	b := newTestBuilder(t, "abc")

	t.Run("empty path", func(t *testing.T) {
		_, err := b.Build(domain.RequestSpec{})
		assert.ErrorIs(t, err, domain.ErrEmptyPath)
		var ce *domain.ConstructionError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("bad escape in path", func(t *testing.T) {
		_, err := b.URL("collection/%zz")
		var ce *domain.ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "collection/%zz", ce.Path)
	})

	t.Run("bad escape in absolute query", func(t *testing.T) {
		_, err := b.URL("https://example.org/collection?q=%zz")
		var ce *domain.ConstructionError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("absolute without host", func(t *testing.T) {
		_, err := b.URL("https:///collection")
		var ce *domain.ConstructionError
		assert.ErrorAs(t, err, &ce)
	})
}

// ============================================================================
// Properties
// ============================================================================

var propertySpecs = []domain.RequestSpec{
	domain.Request("collection"),
	domain.Request("collection", domain.P("q", "Rembrandt")),
	domain.Request("collection", domain.P("format", "xml")),
	domain.Request("collection", domain.IntParam("p", 2), domain.IntParam("ps", 5), domain.P("q", "portrait")),
	domain.Request("collection/SK-A-999999"),
	{Path: "collection", Params: domain.Params{domain.P("q", "still life")}, OmitKey: true},
	domain.Request("https://example.org/api/en/collection?q=x"),
}

func TestBuild_IsDeterministic(t *testing.T) {
	for _, key := range []string{"", "abc"} {
		b := newTestBuilder(t, key)
		for _, spec := range propertySpecs {
			first, err := b.Build(spec)
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := b.Build(spec)
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		}
	}
}

func TestBuild_NoKeyWithoutCredential(t *testing.T) {
	b := newTestBuilder(t, "")
	for _, spec := range propertySpecs {
		for _, omit := range []bool{false, true} {
			spec.OmitKey = omit
			got, err := b.Build(spec)
			require.NoError(t, err)

			u, err := url.Parse(got)
			require.NoError(t, err)
			_, hasKey := u.Query()["key"]
			assert.False(t, hasKey, "unexpected key in %s", got)
		}
	}
}

func TestBuild_ExactlyOneKeyIffIncluded(t *testing.T) {
	b := newTestBuilder(t, "abc")
	for _, spec := range propertySpecs {
		got, err := b.Build(spec)
		require.NoError(t, err)
		u, err := url.Parse(got)
		require.NoError(t, err)

		if spec.OmitKey {
			assert.Empty(t, u.Query()["key"], got)
		} else {
			assert.Equal(t, []string{"abc"}, u.Query()["key"], got)
		}
	}
}

func TestBuild_ExactlyOneFormat(t *testing.T) {
	b := newTestBuilder(t, "abc")
	for _, spec := range propertySpecs {
		got, err := b.Build(spec)
		require.NoError(t, err)
		u, err := url.Parse(got)
		require.NoError(t, err)

		formats := u.Query()["format"]
		require.Len(t, formats, 1, got)
		if !spec.Params.Has("format") {
			assert.Equal(t, "json", formats[0])
		}
	}
}

func TestWithAPIKey_DoesNotMutateOriginal(t *testing.T) {
	b := newTestBuilder(t, "abc")
	other := b.WithAPIKey("bogus")

	got, err := b.URL("collection")
	require.NoError(t, err)
	assert.Contains(t, got, "key=abc")

	got, err = other.URL("collection")
	require.NoError(t, err)
	assert.Contains(t, got, "key=bogus")
}

func TestQueryPairsSet(t *testing.T) {
	q := queryPairs{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "a", Value: "3"}}

	got := q.set("a", "9")
	want := queryPairs{{Key: "a", Value: "9"}, {Key: "b", Value: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, q, 3, "original must not change")

	got = got.set("c", "x")
	assert.Equal(t, "a=9&b=2&c=x", got.encode())
}
