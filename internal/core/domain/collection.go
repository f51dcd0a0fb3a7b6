package domain

import (
	"bytes"
	"encoding/json"
)

// ============================================================================
// Collection Search
// ============================================================================

// CollectionResponse is the body of GET /collection.
type CollectionResponse struct {
	Count               int                `json:"count"`
	ArtObjects          []ArtObjectSummary `json:"artObjects"`
	Facets              json.RawMessage    `json:"facets"`
	ElapsedMilliseconds int                `json:"elapsedMilliseconds"`
}

// ObjectNumbers returns the identifiers of the returned objects in order.
func (r *CollectionResponse) ObjectNumbers() []string {
	ids := make([]string, 0, len(r.ArtObjects))
	for _, obj := range r.ArtObjects {
		ids = append(ids, obj.ObjectNumber)
	}
	return ids
}

// ArtObjectSummary is one search hit. ObjectNumber is opaque and is not
// guaranteed stable across API versions.
type ArtObjectSummary struct {
	ObjectNumber          string          `json:"objectNumber"`
	Title                 string          `json:"title"`
	PrincipalOrFirstMaker string          `json:"principalOrFirstMaker"`
	Links                 ArtObjectLinks  `json:"links"`
	WebImage              json.RawMessage `json:"webImage"`
}

// ArtObjectLinks holds the API and website links of an object.
type ArtObjectLinks struct {
	Self string `json:"self"`
	Web  string `json:"web"`
}

// ============================================================================
// Object Detail
// ============================================================================

// ObjectDetailResponse is the body of GET /collection/{objectNumber}.
// ArtObject is nil for an unknown identifier; the API answers 200 in that
// case.
type ObjectDetailResponse struct {
	ArtObject     *ArtObjectDetail `json:"artObject"`
	ArtObjectPage json.RawMessage  `json:"artObjectPage"`
}

// HasPage reports whether artObjectPage carries a non-null value.
func (r *ObjectDetailResponse) HasPage() bool {
	return !IsNullJSON(r.ArtObjectPage)
}

// ArtObjectDetail extends the summary with descriptive fields.
type ArtObjectDetail struct {
	ArtObjectSummary
	Dating         json.RawMessage `json:"dating"`
	PhysicalMedium string          `json:"physicalMedium"`
	Dimensions     json.RawMessage `json:"dimensions"`
}

// IsNullJSON reports whether raw is absent or the JSON literal null.
func IsNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
