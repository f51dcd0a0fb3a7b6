package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rijks-verifier/internal/adapters/secondary/rijks"
	"rijks-verifier/internal/config"
	"rijks-verifier/internal/core/domain"
	"rijks-verifier/internal/testutil"
)

const fakeKey = "test-key"

func newHTTPClient() *rijks.Client {
	return rijks.NewClient(&config.RijksConfig{Timeout: 5 * time.Second})
}

// setupFakeVerifier points a verifier at a fresh fake API. mutate may flip
// the fake's Break* switches before any request is served.
func setupFakeVerifier(t *testing.T, apiKey string, mutate func(*testutil.FakeCollectionAPI)) (*Verifier, *testutil.FakeCollectionAPI) {
	t.Helper()
	fake := testutil.NewFakeCollectionAPI(t, fakeKey)
	if mutate != nil {
		mutate(fake)
	}
	b, err := NewURLBuilder(BuilderConfig{Root: fake.Root(), Locale: "en", APIKey: apiKey})
	require.NoError(t, err)
	return NewVerifier(b, newHTTPClient(), DefaultVerifierSettings()), fake
}

func checkByName(t *testing.T, v *Verifier, name string) Check {
	t.Helper()
	for _, c := range v.Checks() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no check named %q", name)
	return Check{}
}

func requireViolation(t *testing.T, err error) *domain.ContractViolation {
	t.Helper()
	var violation *domain.ContractViolation
	require.ErrorAs(t, err, &violation)
	return violation
}

// ============================================================================
// Catalogue
// ============================================================================

func TestChecks_CatalogueNamesAreUnique(t *testing.T) {
	v, _ := setupFakeVerifier(t, fakeKey, nil)

	seen := map[string]bool{}
	for _, c := range v.Checks() {
		assert.False(t, seen[c.Name], "duplicate check %q", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Description)
		assert.NotNil(t, c.Run)
	}
	assert.Len(t, seen, 13)
}

// ============================================================================
// Happy path against a conforming API
// ============================================================================

func TestChecks_AllPassAgainstConformingAPI(t *testing.T) {
	v, fake := setupFakeVerifier(t, fakeKey, nil)

	for _, c := range v.Checks() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NoError(t, c.Run(context.Background()))
		})
	}

	requests := fake.Requests()
	require.NotEmpty(t, requests)
	for _, r := range requests {
		assert.Equal(t, "application/json", r.Accept)
		assert.Contains(t, r.Query, "format=json")
	}
}

func TestChecks_CredentialChecksRunWithoutKey(t *testing.T) {
	v, _ := setupFakeVerifier(t, "", nil)

	for _, name := range []string{"credential-missing", "credential-missing-documented", "credential-invalid"} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, checkByName(t, v, name).Run(context.Background()))
		})
	}
}

// ============================================================================
// Each property detected in isolation
// ============================================================================

func TestChecks_DetectViolations(t *testing.T) {
	tests := []struct {
		name     string
		check    string
		mutate   func(*testutil.FakeCollectionAPI)
		property string
	}{
		{
			name:     "missing structural fields",
			check:    "structure",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.BreakStructure = true },
			property: "elapsedMilliseconds",
		},
		{
			name:     "overlapping pages",
			check:    "pagination",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.BreakPaging = true },
			property: "page 2 objectNumbers",
		},
		{
			name:     "page size not honoured",
			check:    "page-size",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.BreakPageSize = true },
			property: "artObjects length for ps=5",
		},
		{
			name:     "maker filter is substring match",
			check:    "artist-filter",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.BreakMakerFilter = true },
			property: "artObjects[3].principalOrFirstMaker",
		},
		{
			name:     "unknown object answers 404",
			check:    "unknown-object",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.BreakUnknownObject = true },
			property: "status for unknown object",
		},
		{
			name:     "documented status differs",
			check:    "credential-missing-documented",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.UnauthorizedStatus = http.StatusForbidden },
			property: "status without key",
		},
		{
			name:     "credential not enforced",
			check:    "credential-missing",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.UnauthorizedStatus = http.StatusOK },
			property: "status without key",
		},
		{
			name:     "alternate locale missing",
			check:    "locale-variant",
			mutate:   func(f *testutil.FakeCollectionAPI) { f.Locales = []string{"en"} },
			property: "status collection/SK-A-2344",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := setupFakeVerifier(t, fakeKey, tt.mutate)

			err := checkByName(t, v, tt.check).Run(context.Background())
			violation := requireViolation(t, err)
			assert.Equal(t, tt.property, violation.Property)
		})
	}
}

func TestChecks_GenericRejectionAcceptsForbidden(t *testing.T) {
	v, _ := setupFakeVerifier(t, fakeKey, func(f *testutil.FakeCollectionAPI) {
		f.UnauthorizedStatus = http.StatusForbidden
	})

	assert.NoError(t, checkByName(t, v, "credential-missing").Run(context.Background()))
	assert.NoError(t, checkByName(t, v, "credential-invalid").Run(context.Background()))
}

func TestChecks_EmptyResultDetectsMatches(t *testing.T) {
	v, _ := setupFakeVerifier(t, fakeKey, nil)
	v.settings.EmptyQuery = "portrait"

	violation := requireViolation(t, checkByName(t, v, "empty-result").Run(context.Background()))
	assert.Equal(t, "count", violation.Property)
	assert.Equal(t, "0", violation.Expected)
	assert.Equal(t, "15", violation.Observed)
}

func TestChecks_ArtistFilterRequiresResults(t *testing.T) {
	v, _ := setupFakeVerifier(t, fakeKey, nil)
	v.settings.ArtistFilter = "Nobody in Particular"

	violation := requireViolation(t, checkByName(t, v, "artist-filter").Run(context.Background()))
	assert.Equal(t, "non-empty", violation.Expected)
}

// ============================================================================
// Canned responses
// ============================================================================

func setupMockVerifier(t *testing.T) (*Verifier, *testutil.MockCollectionAPI) {
	t.Helper()
	api := new(testutil.MockCollectionAPI)
	b, err := NewURLBuilder(BuilderConfig{Root: testRoot, APIKey: "abc"})
	require.NoError(t, err)
	return NewVerifier(b, api, DefaultVerifierSettings()), api
}

func urlContains(fragment string) interface{} {
	return mock.MatchedBy(func(u string) bool { return strings.Contains(u, fragment) })
}

func TestSearchRelevance_NoMatchingObject(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, urlContains("q=Rembrandt")).Return(testutil.JSONResponse(200,
		`{"count":1,"artObjects":[{"objectNumber":"X-1","title":"Still life","principalOrFirstMaker":"Willem Claesz. Heda"}]}`), nil)

	violation := requireViolation(t, v.checkSearchRelevance(context.Background()))
	assert.Equal(t, "title or principalOrFirstMaker", violation.Property)
	api.AssertExpectations(t)
}

func TestSearchRelevance_MatchesCaseInsensitivelyInTitle(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, urlContains("q=Rembrandt")).Return(testutil.JSONResponse(200,
		`{"count":2,"artObjects":[
			{"objectNumber":"X-1","title":"Still life","principalOrFirstMaker":"Heda"},
			{"objectNumber":"X-2","title":"Copy after REMBRANDT","principalOrFirstMaker":"Anonymous"}]}`), nil)

	assert.NoError(t, v.checkSearchRelevance(context.Background()))
}

func TestDetail_ObjectNumberMismatch(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, urlContains("/collection?")).Return(testutil.JSONResponse(200,
		`{"count":1,"artObjects":[{"objectNumber":"SK-A-2344","title":"The Milkmaid","principalOrFirstMaker":"Johannes Vermeer"}]}`), nil)
	api.On("Get", mock.Anything, urlContains("/collection/SK-A-2344?")).Return(testutil.JSONResponse(200,
		`{"artObject":{"objectNumber":"SK-A-0000","title":"t","principalOrFirstMaker":"m","dating":{},"physicalMedium":"oil","dimensions":[]}}`), nil)

	violation := requireViolation(t, v.checkDetail(context.Background()))
	assert.Equal(t, "artObject.objectNumber", violation.Property)
	assert.Equal(t, "SK-A-2344", violation.Expected)
	assert.Equal(t, "SK-A-0000", violation.Observed)
	api.AssertExpectations(t)
}

func TestDetail_MissingDescriptiveField(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, urlContains("/collection?")).Return(testutil.JSONResponse(200,
		`{"count":1,"artObjects":[{"objectNumber":"SK-A-2344"}]}`), nil)
	api.On("Get", mock.Anything, urlContains("/collection/SK-A-2344?")).Return(testutil.JSONResponse(200,
		`{"artObject":{"objectNumber":"SK-A-2344","title":"t","principalOrFirstMaker":"m","dating":{},"dimensions":[]}}`), nil)

	violation := requireViolation(t, v.checkDetail(context.Background()))
	assert.Equal(t, "artObject.physicalMedium", violation.Property)
	assert.Equal(t, "missing", violation.Observed)
}

func TestUnknownObject_MissingNullFields(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, urlContains("/collection/SK-A-999999?")).Return(testutil.JSONResponse(200,
		`{"artObject":null}`), nil)

	violation := requireViolation(t, v.checkUnknownObject(context.Background()))
	assert.Equal(t, "artObjectPage", violation.Property)
}

func TestStructure_UnparseableBody(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, mock.Anything).Return(testutil.JSONResponse(200, `<html>maintenance</html>`), nil)

	violation := requireViolation(t, v.checkStructure(context.Background()))
	assert.Equal(t, "body", violation.Property)
}

func TestStructure_NegativeCount(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, mock.Anything).Return(testutil.JSONResponse(200,
		`{"count":-1,"artObjects":[],"facets":[],"elapsedMilliseconds":0}`), nil)

	violation := requireViolation(t, v.checkStructure(context.Background()))
	assert.Equal(t, "count", violation.Property)
	assert.Equal(t, "non-negative integer", violation.Expected)
}

func TestStructure_EmptyResultSkipsObjectFields(t *testing.T) {
	v, api := setupMockVerifier(t)
	api.On("Get", mock.Anything, mock.Anything).Return(testutil.JSONResponse(200,
		`{"count":0,"artObjects":[],"facets":[],"elapsedMilliseconds":3}`), nil)

	assert.NoError(t, v.checkStructure(context.Background()))
}

// ============================================================================
// Transport and construction failures stay distinct from violations
// ============================================================================

func TestChecks_TransportErrorIsNotAViolation(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	root := srv.URL + "/api"
	srv.Close()

	b, err := NewURLBuilder(BuilderConfig{Root: root, APIKey: "abc"})
	require.NoError(t, err)
	v := NewVerifier(b, newHTTPClient(), DefaultVerifierSettings())

	err = checkByName(t, v, "structure").Run(context.Background())
	var transport *domain.TransportError
	require.ErrorAs(t, err, &transport)
	assert.NotContains(t, err.Error(), "abc", "credential must not leak into errors")

	status, kind := domain.Classify(err)
	assert.Equal(t, domain.CheckInconclusive, status)
	assert.Equal(t, domain.KindTransport, kind)
}

func TestChecks_ConstructionErrorSurfaces(t *testing.T) {
	v, api := setupMockVerifier(t)

	_, err := v.fetch(context.Background(), v.builder, v.builder.Locale(), domain.Request("collection/%zz"))

	var ce *domain.ConstructionError
	require.ErrorAs(t, err, &ce)
	status, kind := domain.Classify(err)
	assert.Equal(t, domain.CheckFailed, status)
	assert.Equal(t, domain.KindConstruction, kind)
	api.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// ============================================================================
// Page length rule
// ============================================================================

func TestPageLengthBounds(t *testing.T) {
	tests := []struct {
		name             string
		requested, total int
		wantLo, wantHi   int
	}{
		{name: "enough results", requested: 5, total: 100, wantLo: 5, wantHi: 5},
		{name: "fewer results than requested", requested: 5, total: 3, wantLo: 3, wantHi: 3},
		{name: "no results", requested: 5, total: 0, wantLo: 0, wantHi: 0},
		{name: "at ceiling", requested: 100, total: 5000, wantLo: 100, wantHi: 100},
		{name: "above ceiling", requested: 1000, total: 5000, wantLo: 0, wantHi: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := pageLengthBounds(tt.requested, tt.total, 100)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}
}

func TestIntersect(t *testing.T) {
	assert.Empty(t, intersect([]string{"a", "b"}, []string{"c"}))
	assert.Equal(t, []string{"b"}, intersect([]string{"a", "b"}, []string{"c", "b"}))
}
