package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fully read HTTP response. URL is the final location after
// redirects; Request.URL is what was asked for.
type Response struct {
	Request    *Request
	URL        string
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
