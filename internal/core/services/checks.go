package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"rijks-verifier/internal/core/domain"
)

// ============================================================================
// Structure
// ============================================================================

func (v *Verifier) checkStructure(ctx context.Context) error {
	resp, err := v.fetchOK(ctx, v.builder.Locale(), domain.Request("collection"))
	if err != nil {
		return err
	}
	body, err := decodeObject(resp.Body)
	if err != nil {
		return err
	}

	if _, err := requireNonNegativeInt(body, "", "count"); err != nil {
		return err
	}
	objects, err := requireArray(body, "", "artObjects")
	if err != nil {
		return err
	}
	if _, err := requirePresent(body, "", "facets"); err != nil {
		return err
	}
	if _, err := requireNumber(body, "", "elapsedMilliseconds"); err != nil {
		return err
	}
	if len(objects) == 0 {
		return nil
	}

	first, ok := objects[0].(map[string]interface{})
	if !ok {
		return domain.Violation("artObjects[0]", "object", jsonType(objects[0]))
	}
	const prefix = "artObjects[0]"
	for _, key := range []string{"objectNumber", "title", "principalOrFirstMaker"} {
		if _, err := requireString(first, prefix, key); err != nil {
			return err
		}
	}
	links, err := requireObject(first, prefix, "links")
	if err != nil {
		return err
	}
	if err := requireFields(links, prefix+".links", "self", "web"); err != nil {
		return err
	}
	_, err = requirePresent(first, prefix, "webImage")
	return err
}

// ============================================================================
// Detail round trip
// ============================================================================

func (v *Verifier) checkDetail(ctx context.Context) error {
	id, err := v.firstObjectNumber(ctx, v.settings.DetailSeedQuery)
	if err != nil {
		return err
	}

	resp, err := v.fetchOK(ctx, v.builder.Locale(), domain.Request(detailPath(id)))
	if err != nil {
		return err
	}
	body, err := decodeObject(resp.Body)
	if err != nil {
		return err
	}
	art, err := requireObject(body, "", "artObject")
	if err != nil {
		return err
	}
	got, err := requireString(art, "artObject", "objectNumber")
	if err != nil {
		return err
	}
	if got != id {
		return domain.Violation("artObject.objectNumber", id, got)
	}
	return requireFields(art, "artObject", "title", "principalOrFirstMaker", "dating", "physicalMedium", "dimensions")
}

// ============================================================================
// Pagination
// ============================================================================

func (v *Verifier) checkPagination(ctx context.Context) error {
	ps := v.settings.PageSize
	pages := make([]*domain.CollectionResponse, 2)

	// The two pages are independent requests.
	g, gctx := errgroup.WithContext(ctx)
	for i := range pages {
		g.Go(func() error {
			res, err := v.search(gctx,
				domain.P("q", v.settings.PaginationQuery),
				domain.IntParam("ps", ps),
				domain.IntParam("p", i+1),
			)
			if err != nil {
				return err
			}
			pages[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, page := range pages {
		if len(page.ArtObjects) == 0 {
			return domain.Violation(fmt.Sprintf("page %d artObjects", i+1), "non-empty", 0)
		}
		if page.Count >= 2*ps && len(page.ArtObjects) != ps {
			return domain.Violation(fmt.Sprintf("page %d length", i+1), ps, len(page.ArtObjects))
		}
	}

	if overlap := intersect(pages[0].ObjectNumbers(), pages[1].ObjectNumbers()); len(overlap) > 0 {
		return domain.Violation("page 2 objectNumbers", "disjoint from page 1", "shared "+strings.Join(overlap, ","))
	}
	return nil
}

func intersect(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	var shared []string
	for _, id := range b {
		if _, ok := seen[id]; ok {
			shared = append(shared, id)
		}
	}
	return shared
}

// pageLengthBounds returns the accepted page length range for a request of
// size requested against a collection of total matches. Above the server
// ceiling the API may cap silently, so only the upper bound holds.
func pageLengthBounds(requested, total, ceiling int) (lo, hi int) {
	if requested > ceiling {
		return 0, requested
	}
	want := min(requested, total)
	return want, want
}

func (v *Verifier) checkPageSize(ctx context.Context) error {
	return v.assertPageSize(ctx, v.settings.PageSize)
}

func (v *Verifier) checkPageSizeCeiling(ctx context.Context) error {
	return v.assertPageSize(ctx, v.settings.PageSizeCeiling*10)
}

func (v *Verifier) assertPageSize(ctx context.Context, requested int) error {
	res, err := v.search(ctx, domain.IntParam("ps", requested))
	if err != nil {
		return err
	}
	got := len(res.ArtObjects)
	lo, hi := pageLengthBounds(requested, res.Count, v.settings.PageSizeCeiling)
	if lo == hi && got != lo {
		return domain.Violation(fmt.Sprintf("artObjects length for ps=%d", requested), lo, got)
	}
	if got > hi {
		return domain.Violation(fmt.Sprintf("artObjects length for ps=%d", requested), fmt.Sprintf("at most %d", hi), got)
	}
	if res.Count > 0 && got == 0 {
		return domain.Violation(fmt.Sprintf("artObjects length for ps=%d", requested), "non-empty", 0)
	}
	return nil
}

// ============================================================================
// Relevance
// ============================================================================

func (v *Verifier) checkSearchRelevance(ctx context.Context) error {
	term := v.settings.SearchTerm
	res, err := v.search(ctx, domain.P("q", term))
	if err != nil {
		return err
	}
	if len(res.ArtObjects) == 0 {
		return domain.Violation("artObjects for q="+term, "non-empty", 0)
	}

	needle := strings.ToLower(term)
	for _, obj := range res.ArtObjects {
		if strings.Contains(strings.ToLower(obj.Title), needle) ||
			strings.Contains(strings.ToLower(obj.PrincipalOrFirstMaker), needle) {
			return nil
		}
	}
	return domain.Violation("title or principalOrFirstMaker",
		fmt.Sprintf("at least one containing %q", term),
		fmt.Sprintf("none of %d objects", len(res.ArtObjects)))
}

// checkArtistFilter asserts exact equality on every result. This is stronger
// than the containment used for free-text relevance.
func (v *Verifier) checkArtistFilter(ctx context.Context) error {
	artist := v.settings.ArtistFilter
	res, err := v.search(ctx, domain.P("involvedMaker", artist))
	if err != nil {
		return err
	}
	if len(res.ArtObjects) == 0 {
		return domain.Violation("artObjects for involvedMaker="+artist, "non-empty", 0)
	}
	for i, obj := range res.ArtObjects {
		if obj.PrincipalOrFirstMaker != artist {
			return domain.Violation(fmt.Sprintf("artObjects[%d].principalOrFirstMaker", i), artist, obj.PrincipalOrFirstMaker)
		}
	}
	return nil
}

// ============================================================================
// Credentials
// ============================================================================

func (v *Verifier) credentialProbe() domain.RequestSpec {
	return domain.RequestSpec{
		Path:    "collection",
		Params:  domain.Params{domain.P("q", "still life"), domain.IntParam("ps", 1)},
		OmitKey: true,
	}
}

func (v *Verifier) checkCredentialMissing(ctx context.Context) error {
	resp, err := v.fetch(ctx, v.builder, v.builder.Locale(), v.credentialProbe())
	if err != nil {
		return err
	}
	return v.expectRejected("status without key", resp.StatusCode)
}

func (v *Verifier) checkCredentialMissingDocumented(ctx context.Context) error {
	resp, err := v.fetch(ctx, v.builder, v.builder.Locale(), v.credentialProbe())
	if err != nil {
		return err
	}
	if want := v.settings.DocumentedUnauthorizedStatus; resp.StatusCode != want {
		return domain.Violation("status without key", want, resp.StatusCode)
	}
	return nil
}

func (v *Verifier) checkCredentialInvalid(ctx context.Context) error {
	spec := v.credentialProbe()
	spec.OmitKey = false
	resp, err := v.fetch(ctx, v.builder.WithAPIKey(v.settings.InvalidAPIKey), v.builder.Locale(), spec)
	if err != nil {
		return err
	}
	return v.expectRejected("status with invalid key", resp.StatusCode)
}

func (v *Verifier) expectRejected(property string, status int) error {
	if slices.Contains(v.settings.RejectedStatuses, status) {
		return nil
	}
	return domain.Violation(property, fmt.Sprintf("one of %v", v.settings.RejectedStatuses), status)
}

// ============================================================================
// Documented quirks
// ============================================================================

// checkUnknownObject asserts the null-object answer for an identifier that
// does not resolve. A 404 here is a contract violation.
func (v *Verifier) checkUnknownObject(ctx context.Context) error {
	spec := domain.Request(detailPath(v.settings.UnknownObjectNumber))
	resp, err := v.fetch(ctx, v.builder, v.builder.Locale(), spec)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return domain.Violation("status for unknown object", 200, resp.StatusCode)
	}
	body, err := decodeObject(resp.Body)
	if err != nil {
		return err
	}
	if err := requireNull(body, "", "artObject"); err != nil {
		return err
	}
	return requireNull(body, "", "artObjectPage")
}

func (v *Verifier) checkEmptyResult(ctx context.Context) error {
	resp, err := v.fetchOK(ctx, v.builder.Locale(), domain.Request("collection", domain.P("q", v.settings.EmptyQuery)))
	if err != nil {
		return err
	}
	body, err := decodeObject(resp.Body)
	if err != nil {
		return err
	}
	count, err := requireNonNegativeInt(body, "", "count")
	if err != nil {
		return err
	}
	if count != 0 {
		return domain.Violation("count", 0, count)
	}
	objects, err := requireArray(body, "", "artObjects")
	if err != nil {
		return err
	}
	if len(objects) != 0 {
		return domain.Violation("artObjects length", 0, len(objects))
	}
	return nil
}

// ============================================================================
// Locale
// ============================================================================

func (v *Verifier) checkLocaleVariant(ctx context.Context) error {
	id, err := v.firstObjectNumber(ctx, v.settings.DetailSeedQuery)
	if err != nil {
		return err
	}

	locale := v.settings.AlternateLocale
	resp, err := v.fetchOK(ctx, locale, domain.Request(detailPath(id)))
	if err != nil {
		return err
	}
	var detail domain.ObjectDetailResponse
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return domain.Violation("detail body ("+locale+")", "object detail response", fmt.Sprintf("unparseable (%v)", err))
	}
	if detail.ArtObject == nil {
		return domain.Violation("artObject ("+locale+")", "non-null", "null")
	}
	if detail.ArtObject.ObjectNumber != id {
		return domain.Violation("artObject.objectNumber ("+locale+")", id, detail.ArtObject.ObjectNumber)
	}
	return nil
}
