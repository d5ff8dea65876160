package response

import (
	"net/http"
	"time"

	"github.com/always-cache/respcache/rfc9111"
)

// HeaderReader gives read access to a header mapping.
// Names are matched case-insensitively.
type HeaderReader interface {
	// Get returns the first value of the named field.
	// The boolean is false if the field is absent.
	Get(name string) (string, bool)
	// Values returns all values of the named field.
	Values(name string) []string
}

// HeaderAccessor is a HeaderReader that can also change the header.
// The mutators fail with ErrImmutable once the owner is frozen.
type HeaderAccessor interface {
	HeaderReader
	Set(name, value string) error
	Add(name, value string) error
	Del(name string) error
}

// ResponseHeaderAccessor derives caching-related information from a response
// header.
type ResponseHeaderAccessor interface {
	CacheControl() rfc9111.CacheControl
	Date() (time.Time, bool)
	Age() (time.Duration, bool)
	FreshnessLifetime() time.Duration
	ETag() (string, bool)
	LastModified() (time.Time, bool)
	// CurrentAge is the age of the response at the given time.
	CurrentAge(now time.Time) time.Duration
	IsFresh(now time.Time) bool
}

// view holds the state shared by Response and Sealed, and implements the
// read-only part of both.
type view struct {
	status    int
	header    http.Header
	body      Body
	createdAt time.Time
	clock     func() time.Time
}

func (v *view) Get(name string) (string, bool) {
	values := v.header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (v *view) Values(name string) []string {
	return v.header.Values(name)
}

func (v *view) CacheControl() rfc9111.CacheControl {
	return rfc9111.ParseCacheControl(v.header.Values("Cache-Control"))
}

func (v *view) Date() (time.Time, bool) {
	return rfc9111.GetDate(v.header)
}

func (v *view) Age() (time.Duration, bool) {
	return rfc9111.GetAge(v.header)
}

func (v *view) FreshnessLifetime() time.Duration {
	return rfc9111.FreshnessLifetime(v.header)
}

func (v *view) ETag() (string, bool) {
	return v.Get("ETag")
}

func (v *view) LastModified() (time.Time, bool) {
	return rfc9111.GetLastModified(v.header)
}

// CurrentAge uses the creation time as the response time of the response.
func (v *view) CurrentAge(now time.Time) time.Duration {
	return rfc9111.CurrentAge(v.header, v.createdAt, now)
}

func (v *view) IsFresh(now time.Time) bool {
	return rfc9111.IsFresh(v.header, v.createdAt, now)
}

func (v *view) Status() int {
	return v.status
}

func (v *view) Body() Body {
	return v.body
}

func (v *view) CreatedAt() time.Time {
	return v.createdAt
}

// Duplicate returns a live copy with its own header mapping.
// Status, body and creation time are shared with the original.
func (v *view) Duplicate() *Response {
	dup := *v
	dup.header = v.header.Clone()
	return &Response{view: dup}
}
