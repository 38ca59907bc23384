package recipebox

import "net/http"

// HTTPClient is the part of *http.Client the recipe API client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
