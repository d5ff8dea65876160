package rfc9111

import (
	"net/http"
	"time"
)

// §  5.3.  Expires
// §
// §     The "Expires" response header field gives the date/time after which
// §     the response is considered stale.
// §
// §     A cache recipient MUST interpret invalid date formats, especially the
// §     value "0", as representing a time in the past (i.e., "already
// §     expired").
//
// The boolean reports whether the field is present. An invalid value yields
// the zero time.
func getExpires(header http.Header) (time.Time, bool) {
	value := header.Get("Expires")
	if value == "" {
		return time.Time{}, false
	}
	if exp, err := HttpDate(value); err == nil {
		return exp, true
	}
	return time.Time{}, true
}
