// Package rfc9111 implements the header semantics of HTTP Caching (RFC 9111)
// that a stored response needs: dates, ages, Cache-Control directives and
// freshness. Functions operate on plain http.Header values, so they can be
// composed into any response type.
//
// Quoted passages of the RFC are marked with `§`.
package rfc9111

import (
	"net/http"
	"time"
)

// GetDate returns the parsed "Date" header field,
// along with a boolean indicating whether a valid date was present.
func GetDate(header http.Header) (time.Time, bool) {
	if dateStr := header.Get("Date"); dateStr != "" {
		if date, err := HttpDate(dateStr); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// GetLastModified returns the parsed "Last-Modified" header field.
func GetLastModified(header http.Header) (time.Time, bool) {
	if lm := header.Get("Last-Modified"); lm != "" {
		if date, err := HttpDate(lm); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
