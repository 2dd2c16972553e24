package ports

import "net/http"

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface. Clients handed to the
// transport engine should return redirect responses instead of following them.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}
