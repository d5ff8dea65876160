package rfc9111

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// §  1.2.2. Delta Seconds
// §
// §  The delta-seconds rule specifies a non-negative integer, representing time
// §  in seconds.
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  [...] If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations overflows,
// §  the cache MUST consider the value to be 2147483648 (2^31) or the greatest
// §  positive integer it can conveniently represent.
const maxDeltaSeconds = 2147483648

// DeltaSeconds parses a delta-seconds value.
// The boolean is false if the value is not a non-negative integer.
func DeltaSeconds(secondsStr string) (time.Duration, bool) {
	secondsStr = strings.TrimSpace(secondsStr)
	if secondsStr == "" {
		return 0, false
	}
	for _, c := range secondsStr {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	seconds, err := strconv.ParseUint(secondsStr, 10, 64)
	if err != nil || seconds > maxDeltaSeconds {
		// only digits, so the error is a range error
		seconds = maxDeltaSeconds
	}
	return time.Second * time.Duration(seconds), true
}

// ToDeltaSeconds formats a duration as delta-seconds.
// Fractions are truncated and negative durations become "0".
func ToDeltaSeconds(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	return strconv.FormatInt(int64(duration/time.Second), 10)
}

// This section is from the HTTP specification (RFC9110), not the cache specification
//
// §  5.6.7.  Date/Time Formats
// §
// §     [...] A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.  When a sender generates a field
// §     that contains one or more timestamps defined as HTTP-date, the sender
// §     MUST generate those timestamps in the IMF-fixdate format.
func HttpDate(dateStr string) (time.Time, error) {
	date, err := imfDate(dateStr)
	if err == nil {
		return date, nil
	}
	// try the obsolete formats before giving up
	if date, obsErr := obsDate(dateStr); obsErr == nil {
		return date, nil
	}
	return time.Time{}, err
}

// ToHttpDate formats the time as an IMF-fixdate, e.g.
// "Sun, 06 Nov 1994 08:49:37 GMT".
func ToHttpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// §       IMF-fixdate  = day-name "," SP date1 SP time-of-day SP GMT
const imfDateLayout = "Mon, 02 Jan 2006 15:04:05 MST"

func imfDate(dateStr string) (time.Time, error) {
	date, err := time.Parse(imfDateLayout, normalizeDateStr(dateStr))
	if err != nil {
		return date, err
	}
	if zone, _ := date.Zone(); zone != "GMT" {
		return date, fmt.Errorf("date %s is not in GMT, but %s", dateStr, zone)
	}
	return date.UTC(), nil
}

// §       obs-date     = rfc850-date / asctime-date
func obsDate(dateStr string) (time.Time, error) {
	str := normalizeDateStr(dateStr)
	if date, err := time.Parse(time.RFC850, str); err == nil {
		return date.UTC(), nil
	}
	return time.Parse(time.ANSIC, str)
}

// §     HTTP-date is case sensitive.  Note that Section 4.2 of [CACHING]
// §     relaxes this for cache recipients.
//
// Only the zone is normalized: day and month names must keep their case
// for time.Parse to accept them.
func normalizeDateStr(dateStr string) string {
	str := strings.TrimSpace(dateStr)
	if i := strings.LastIndex(str, " "); i != -1 && strings.EqualFold(str[i+1:], "GMT") {
		return str[:i+1] + "GMT"
	}
	return str
}
