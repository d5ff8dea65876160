package rfc9111

import (
	"net/http"
	"time"
)

// §  4.2.3.  Calculating Age
// §
// §     The Age header field is used to convey an estimated age of the
// §     response message when obtained from a cache.
//
// CurrentAge calculates current_age for a stored response.
// responseTime is the time the response was received by (or created in) this
// cache. There is no separate request_time, so response_delay is always zero.
func CurrentAge(header http.Header, responseTime, now time.Time) time.Duration {
	// §       apparent_age = max(0, response_time - date_value);
	apparentAge := time.Duration(0)
	if date, ok := GetDate(header); ok {
		apparentAge = durationMax(0, responseTime.Sub(date))
	}
	// §       corrected_age_value = age_value + response_delay;
	ageValue, _ := GetAge(header)
	// §       corrected_initial_age = max(apparent_age, corrected_age_value);
	correctedInitialAge := durationMax(apparentAge, ageValue)
	// §       resident_time = now - response_time;
	residentTime := durationMax(0, now.Sub(responseTime))
	// §       current_age = corrected_initial_age + resident_time;
	return correctedInitialAge + residentTime
}

// §     The calculation to determine if a response is fresh is:
// §
// §        response_is_fresh = (freshness_lifetime > current_age)
func IsFresh(header http.Header, responseTime, now time.Time) bool {
	return FreshnessLifetime(header) > CurrentAge(header, responseTime, now)
}

func durationMax(d1, d2 time.Duration) time.Duration {
	if d1 > d2 {
		return d1
	}
	return d2
}
