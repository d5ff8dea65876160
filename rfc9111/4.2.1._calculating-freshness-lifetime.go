package rfc9111

import (
	"net/http"
	"time"
)

// GetExpiration returns the absolute time at which a response received at
// responseTime stops being fresh. The zero time means no explicit expiration.
func GetExpiration(header http.Header, responseTime time.Time) time.Time {
	if ttl := FreshnessLifetime(header); ttl > 0 {
		return responseTime.Add(ttl)
	}
	return time.Time{}
}

// §  4.2.1.  Calculating Freshness Lifetime
func FreshnessLifetime(header http.Header) time.Duration {
	cc := ParseCacheControl(header.Values("Cache-Control"))
	// §     A cache can calculate the freshness lifetime (denoted as
	// §     freshness_lifetime) of a response by evaluating the following rules
	// §     and using the first match:
	// §
	// §     *  If the cache is shared and the s-maxage response directive
	// §        (Section 5.2.2.10) is present, use its value, or
	if val, ok := cc.SMaxAge(); ok {
		return val
	}
	// §     *  If the max-age response directive (Section 5.2.2.1) is present,
	// §        use its value, or
	if val, ok := cc.MaxAge(); ok {
		return val
	}
	// §     *  If the Expires response header field (Section 5.3) is present, use
	// §        its value minus the value of the Date response header field [...]
	if expires, ok := getExpires(header); ok {
		if date, ok := GetDate(header); ok && expires.After(date) {
			return expires.Sub(date)
		}
		return 0
	}
	// §     *  Otherwise, no explicit expiration time is present in the response.
	// heuristic freshness is not implemented
	return 0
}
