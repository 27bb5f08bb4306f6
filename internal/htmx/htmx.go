// Package htmx holds the request and response headers the HTMX client
// library exchanges with the server.
package htmx

import "net/http"

const (
	HeaderRequest  = "HX-Request"
	HeaderRedirect = "HX-Redirect"
	HeaderTarget   = "HX-Target"
)

// IsRequest reports whether r was issued by HTMX.
func IsRequest(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// Redirect tells HTMX to perform a full client-side navigation to url.
// The caller still writes the status code.
func Redirect(w http.ResponseWriter, url string) {
	w.Header().Set(HeaderRedirect, url)
}
