package rfc9111

import (
	"net/http"
	"net/url"
)

// §  4.4.  Invalidating Stored Responses
// §
// §     Because unsafe request methods (Section 9.2.1 of [HTTP]) such as PUT,
// §     POST, or DELETE have the potential for changing state on the origin
// §     server, intervening caches are required to invalidate stored
// §     responses to keep their contents up to date.
func UnsafeRequest(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	// methods whose safety is unknown are treated as unsafe
	return true
}

// GetInvalidateURIs returns the request URIs (path and query) that need to be
// invalidated after the given response to the given request.
// It returns nil for safe requests and error responses.
func GetInvalidateURIs(req *http.Request, status int, header http.Header) []string {
	if !UnsafeRequest(req) {
		return nil
	}
	// §     A "non-error response" is one with a 2xx (Successful) or 3xx
	// §     (Redirection) status code.
	if status < 200 || status > 399 {
		return nil
	}
	// §     A cache MUST invalidate the target URI (Section 7.1 of [HTTP]) when
	// §     it receives a non-error status code in response to an unsafe request
	// §     method (including methods whose safety is unknown).
	uris := []string{req.URL.RequestURI()}
	// §     [...] In particular, the URI(s) in the Location and
	// §     Content-Location response header fields (if present) are candidates
	// §     for invalidation [...]  However, a cache MUST NOT trigger an
	// §     invalidation under these conditions if the origin [...] of the URI
	// §     to be invalidated differs from that of the target URI
	for _, field := range []string{"Location", "Content-Location"} {
		if uri, ok := sameOriginURI(req, header.Get(field)); ok {
			uris = append(uris, uri)
		}
	}
	return uris
}

func sameOriginURI(req *http.Request, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.IsAbs() || u.Host != "" {
		host := req.Host
		if host == "" {
			host = req.URL.Host
		}
		if u.Host != host {
			return "", false
		}
		if req.URL.Scheme != "" && u.Scheme != "" && u.Scheme != req.URL.Scheme {
			return "", false
		}
	}
	return req.URL.ResolveReference(u).RequestURI(), true
}
