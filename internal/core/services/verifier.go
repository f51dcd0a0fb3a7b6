package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// VerifierSettings holds the query fixtures and status expectations used by
// the contract checks.
type VerifierSettings struct {
	SearchTerm          string
	ArtistFilter        string
	DetailSeedQuery     string
	PaginationQuery     string
	PageSize            int
	PageSizeCeiling     int
	UnknownObjectNumber string
	EmptyQuery          string
	AlternateLocale     string
	InvalidAPIKey       string

	// DocumentedUnauthorizedStatus is asserted exactly by
	// credential-missing-documented. RejectedStatuses is the generic set
	// accepted by the other credential probes.
	DocumentedUnauthorizedStatus int
	RejectedStatuses             []int
}

// DefaultVerifierSettings returns the fixtures known to hold against the
// live collection.
func DefaultVerifierSettings() VerifierSettings {
	return VerifierSettings{
		SearchTerm:                   "Rembrandt",
		ArtistFilter:                 "Rembrandt van Rijn",
		DetailSeedQuery:              "vermeer",
		PaginationQuery:              "portrait",
		PageSize:                     5,
		PageSizeCeiling:              100,
		UnknownObjectNumber:          "SK-A-999999",
		EmptyQuery:                   "xyz123nonexistent",
		AlternateLocale:              AlternateLocale,
		InvalidAPIKey:                "invalid-api-key",
		DocumentedUnauthorizedStatus: 401,
		RejectedStatuses:             []int{400, 401, 403},
	}
}

// Check is one independent contract scenario.
type Check struct {
	Name        string
	Description string
	// RequiresKey checks are skipped when no credential is configured.
	RequiresKey bool
	Run         func(ctx context.Context) error
}

// Verifier asserts documented properties of the collection API. Every check
// builds its own requests and shares nothing with the others.
type Verifier struct {
	builder  *URLBuilder
	api      ports.CollectionAPI
	settings VerifierSettings
}

// NewVerifier creates a verifier issuing requests built by builder via api.
func NewVerifier(builder *URLBuilder, api ports.CollectionAPI, settings VerifierSettings) *Verifier {
	return &Verifier{
		builder:  builder,
		api:      api,
		settings: settings,
	}
}

// HasAPIKey reports whether the underlying builder carries a credential.
func (v *Verifier) HasAPIKey() bool {
	return v.builder.HasAPIKey()
}

// Checks returns the full check catalogue in a stable order.
func (v *Verifier) Checks() []Check {
	return []Check{
		{Name: "structure", Description: "search response has the documented JSON shape", RequiresKey: true, Run: v.checkStructure},
		{Name: "detail", Description: "object number from a search resolves to a matching detail record", RequiresKey: true, Run: v.checkDetail},
		{Name: "pagination", Description: "pages 1 and 2 of the same query are non-empty and disjoint", RequiresKey: true, Run: v.checkPagination},
		{Name: "page-size", Description: "page size is honoured up to the server ceiling", RequiresKey: true, Run: v.checkPageSize},
		{Name: "page-size-ceiling", Description: "oversized page size is capped, never exceeded", RequiresKey: true, Run: v.checkPageSizeCeiling},
		{Name: "search-relevance", Description: "free-text search returns at least one matching title or maker", RequiresKey: true, Run: v.checkSearchRelevance},
		{Name: "artist-filter", Description: "involvedMaker filter returns only exact maker matches", RequiresKey: true, Run: v.checkArtistFilter},
		{Name: "credential-missing", Description: "request without key is rejected", Run: v.checkCredentialMissing},
		{Name: "credential-missing-documented", Description: "request without key gets the documented status", Run: v.checkCredentialMissingDocumented},
		{Name: "credential-invalid", Description: "request with an invalid key is rejected", Run: v.checkCredentialInvalid},
		{Name: "unknown-object", Description: "unknown object number answers 200 with null artObject", RequiresKey: true, Run: v.checkUnknownObject},
		{Name: "empty-result", Description: "query without matches answers count 0 and no objects", RequiresKey: true, Run: v.checkEmptyResult},
		{Name: "locale-variant", Description: "object resolves under the alternate locale", RequiresKey: true, Run: v.checkLocaleVariant},
	}
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func (v *Verifier) fetch(ctx context.Context, builder *URLBuilder, locale string, spec domain.RequestSpec) (*ports.APIResponse, error) {
	target, err := builder.BuildLocalized(locale, spec)
	if err != nil {
		return nil, err
	}
	return v.api.Get(ctx, target)
}

// fetchOK fetches spec and requires a 2xx answer.
func (v *Verifier) fetchOK(ctx context.Context, locale string, spec domain.RequestSpec) (*ports.APIResponse, error) {
	resp, err := v.fetch(ctx, v.builder, locale, spec)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, domain.Violation("status "+spec.Path, "2xx", resp.StatusCode)
	}
	return resp, nil
}

func (v *Verifier) search(ctx context.Context, params ...domain.Param) (*domain.CollectionResponse, error) {
	resp, err := v.fetchOK(ctx, v.builder.Locale(), domain.Request("collection", params...))
	if err != nil {
		return nil, err
	}
	var out domain.CollectionResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, domain.Violation("collection body", "collection response", fmt.Sprintf("unparseable (%v)", err))
	}
	return &out, nil
}

// firstObjectNumber runs a one-item search and returns the hit's identifier.
func (v *Verifier) firstObjectNumber(ctx context.Context, query string) (string, error) {
	res, err := v.search(ctx, domain.P("q", query), domain.IntParam("ps", 1))
	if err != nil {
		return "", err
	}
	if len(res.ArtObjects) == 0 {
		return "", domain.Violation("artObjects for q="+query, "at least 1 object", 0)
	}
	id := res.ArtObjects[0].ObjectNumber
	if id == "" {
		return "", domain.Violation("artObjects[0].objectNumber", "non-empty string", `""`)
	}
	return id, nil
}

func detailPath(objectNumber string) string {
	return "collection/" + url.PathEscape(objectNumber)
}
