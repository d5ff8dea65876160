// Package rfc9211 renders the Cache-Status response header field (RFC 9211).
//
// Quoted passages of the RFC are marked with `§`.
package rfc9211

import (
	"fmt"
	"strings"
	"time"
)

// HeaderName is the name of the Cache-Status field.
const HeaderName = "Cache-Status"

type Status string

const (
	StatusHit Status = "hit"
	StatusFwd Status = "fwd"
)

// §  2.2.  The fwd Parameter
type FwdReason string

const (
	// The cache was configured to not handle this request.
	FwdBypass FwdReason = "bypass"

	// The request method's semantics require the request to be
	// forwarded.
	FwdMethod FwdReason = "method"

	// The cache did not contain any responses that matched the
	// request URI.
	FwdUriMiss FwdReason = "uri-miss"

	// The cache contained a response that matched the request
	// URI, but it could not select a response based upon this request's
	// header fields and stored Vary header fields.
	FwdVaryMiss FwdReason = "vary-miss"

	// The cache did not contain any responses that could be used to
	// satisfy this request.
	FwdMiss FwdReason = "miss"

	// The cache was able to select a fresh response for the
	// request, but the request's semantics did not allow its use.
	FwdRequest FwdReason = "request"

	// The cache was able to select a response for the request, but
	// it was stale.
	FwdStale FwdReason = "stale"

	// The cache was able to select a partial response for the
	// request, but it did not contain all of the requested ranges.
	FwdPartial FwdReason = "partial"
)

// CacheStatus collects the outcome of handling one request.
type CacheStatus struct {
	// Name identifies the cache, e.g. "respcache".
	Name      string
	Status    Status
	FwdReason FwdReason
	// Stored reports whether the forwarded response was stored.
	Stored bool
	// TimeToLive is only rendered for hits.
	TimeToLive time.Duration
	Detail     string
}

func (cs *CacheStatus) Hit(ttl time.Duration) {
	cs.Status = StatusHit
	cs.TimeToLive = ttl
}

func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.Status = StatusFwd
	cs.FwdReason = reason
}

// IsHit reports whether the response was served from the cache.
func (cs CacheStatus) IsHit() bool {
	return cs.Status == StatusHit
}

// String renders the field value, e.g. `respcache; hit; ttl=30`.
func (cs CacheStatus) String() string {
	var b strings.Builder
	b.WriteString(cs.Name)
	switch cs.Status {
	case StatusHit:
		b.WriteString("; hit")
		// §  2.4.  The ttl Parameter
		// §     [...] The value of this parameter is an Integer [...]
		// the value is negative for stale hits, so ToDeltaSeconds does not fit
		fmt.Fprintf(&b, "; ttl=%d", int64(cs.TimeToLive/time.Second))
	case StatusFwd:
		if cs.FwdReason != "" {
			b.WriteString("; fwd=" + string(cs.FwdReason))
		}
		if cs.Stored {
			b.WriteString("; stored")
		}
	}
	if cs.Detail != "" {
		b.WriteString("; detail=" + quote(cs.Detail))
	}
	return b.String()
}

// quote renders s as an sf-token when possible and as an sf-string otherwise.
func quote(s string) string {
	for i, c := range s {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '*' ||
			i > 0 && (c >= '0' && c <= '9' || strings.ContainsRune("!#$%&'+-.^_`|~:/", c))) {
			return fmt.Sprintf("%q", s)
		}
	}
	return s
}
