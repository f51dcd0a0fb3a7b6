package ports

import (
	"context"
	"net/http"
)

// APIResponse is a fully read HTTP response from the collection API.
type APIResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// CollectionAPI issues GET requests against already built URLs.
// Implementations must return *domain.TransportError when no response was
// received; any received status, including 4xx and 5xx, is not an error.
type CollectionAPI interface {
	Get(ctx context.Context, url string) (*APIResponse, error)
}
