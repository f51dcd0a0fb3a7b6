package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// FakeObject is one record served by FakeCollectionAPI.
type FakeObject struct {
	ObjectNumber string
	Title        string
	Maker        string
}

// DefaultObjects returns a small collection that satisfies every contract
// check: enough portraits for two pages of five, Vermeer seeds, and a
// workshop attribution that only loose maker matching would return.
func DefaultObjects() []FakeObject {
	objs := []FakeObject{
		{ObjectNumber: "SK-C-5", Title: "The Night Watch", Maker: "Rembrandt van Rijn"},
		{ObjectNumber: "SK-A-4050", Title: "Self-portrait", Maker: "Rembrandt van Rijn"},
		{ObjectNumber: "SK-A-3981", Title: "The Jewish Bride", Maker: "Rembrandt van Rijn"},
		{ObjectNumber: "SK-A-4118", Title: "Tobit and Anna", Maker: "Workshop of Rembrandt van Rijn"},
		{ObjectNumber: "SK-A-2344", Title: "The Milkmaid", Maker: "Johannes Vermeer"},
		{ObjectNumber: "SK-C-251", Title: "View of Houses in Delft", Maker: "Johannes Vermeer"},
	}
	for i := 1; i <= 14; i++ {
		objs = append(objs, FakeObject{
			ObjectNumber: fmt.Sprintf("SK-A-%d", 1000+i),
			Title:        fmt.Sprintf("Portrait of a Woman, no. %d", i),
			Maker:        "Frans Hals",
		})
	}
	return objs
}

// RecordedRequest is a request seen by the fake.
type RecordedRequest struct {
	Path   string
	Query  string
	Accept string
}

// FakeCollectionAPI emulates the collection API, including its documented
// quirks. The Break* switches make it violate one property at a time.
type FakeCollectionAPI struct {
	APIKey             string
	Objects            []FakeObject
	PageCeiling        int
	UnauthorizedStatus int
	Locales            []string

	BreakUnknownObject bool // 404 instead of the null object
	BreakPaging        bool // ignore p
	BreakMakerFilter   bool // substring instead of exact involvedMaker
	BreakPageSize      bool // return one item more than asked
	BreakStructure     bool // drop elapsedMilliseconds and links

	server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeCollectionAPI starts the fake; it is closed on test cleanup.
func NewFakeCollectionAPI(t *testing.T, apiKey string) *FakeCollectionAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeCollectionAPI{
		APIKey:             apiKey,
		Objects:            DefaultObjects(),
		PageCeiling:        100,
		UnauthorizedStatus: http.StatusUnauthorized,
		Locales:            []string{"en", "nl"},
	}
	f.server = httptest.NewServer(f.Router())
	t.Cleanup(f.server.Close)
	return f
}

// Root is the API root to configure the URL builder with.
func (f *FakeCollectionAPI) Root() string {
	return f.server.URL + "/api"
}

// Requests returns a copy of the recorded requests.
func (f *FakeCollectionAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

func (f *FakeCollectionAPI) Router() *gin.Engine {
	r := gin.New()
	r.Use(f.record, f.authorize)

	api := r.Group("/api/:locale")
	api.GET("/collection", f.search)
	api.GET("/collection/:objectNumber", f.detail)
	return r
}

func (f *FakeCollectionAPI) record(c *gin.Context) {
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Accept: c.GetHeader("Accept"),
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeCollectionAPI) authorize(c *gin.Context) {
	if key := c.Query("key"); key == "" || key != f.APIKey {
		c.AbortWithStatusJSON(f.UnauthorizedStatus, gin.H{"error": "Invalid key"})
		return
	}
	if !f.knownLocale(c.Param("locale")) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Next()
}

func (f *FakeCollectionAPI) knownLocale(locale string) bool {
	for _, l := range f.Locales {
		if l == locale {
			return true
		}
	}
	return false
}

func (f *FakeCollectionAPI) search(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))
	maker := c.Query("involvedMaker")

	var matches []FakeObject
	for _, obj := range f.Objects {
		if q != "" && !strings.Contains(strings.ToLower(obj.Title), q) && !strings.Contains(strings.ToLower(obj.Maker), q) {
			continue
		}
		if maker != "" {
			if f.BreakMakerFilter && !strings.Contains(obj.Maker, maker) {
				continue
			}
			if !f.BreakMakerFilter && obj.Maker != maker {
				continue
			}
		}
		matches = append(matches, obj)
	}

	ps := queryInt(c, "ps", 10)
	if ps > f.PageCeiling {
		ps = f.PageCeiling
	}
	if ps < 1 {
		ps = 1
	}
	p := queryInt(c, "p", 1)
	if p < 1 || f.BreakPaging {
		p = 1
	}
	if f.BreakPageSize {
		ps++
	}

	start := min((p-1)*ps, len(matches))
	end := min(start+ps, len(matches))

	items := make([]gin.H, 0, end-start)
	for _, obj := range matches[start:end] {
		items = append(items, f.summary(c, obj))
	}

	body := gin.H{
		"count":               len(matches),
		"artObjects":          items,
		"facets":              []gin.H{},
		"elapsedMilliseconds": 0,
	}
	if f.BreakStructure {
		delete(body, "elapsedMilliseconds")
	}
	c.JSON(http.StatusOK, body)
}

func (f *FakeCollectionAPI) detail(c *gin.Context) {
	id := c.Param("objectNumber")
	for _, obj := range f.Objects {
		if obj.ObjectNumber != id {
			continue
		}
		art := f.summary(c, obj)
		art["dating"] = gin.H{"presentingDate": "1642", "sortingDate": 1642}
		art["physicalMedium"] = "oil on canvas"
		art["dimensions"] = []gin.H{{"unit": "cm", "type": "height", "value": "379.5"}}
		c.JSON(http.StatusOK, gin.H{
			"elapsedMilliseconds": 0,
			"artObject":           art,
			"artObjectPage":       gin.H{"objectNumber": obj.ObjectNumber},
		})
		return
	}

	if f.BreakUnknownObject {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"elapsedMilliseconds": 0,
		"artObject":           nil,
		"artObjectPage":       nil,
	})
}

func (f *FakeCollectionAPI) summary(c *gin.Context, obj FakeObject) gin.H {
	locale := c.Param("locale")
	art := gin.H{
		"objectNumber":          obj.ObjectNumber,
		"title":                 obj.Title,
		"principalOrFirstMaker": obj.Maker,
		"links": gin.H{
			"self": fmt.Sprintf("%s/api/%s/collection/%s", f.server.URL, locale, obj.ObjectNumber),
			"web":  fmt.Sprintf("%s/%s/collection/%s", f.server.URL, locale, obj.ObjectNumber),
		},
		"webImage": gin.H{"url": "https://example.org/" + obj.ObjectNumber + ".jpg", "width": 100, "height": 100},
	}
	if f.BreakStructure {
		delete(art, "links")
	}
	return art
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
