package rfc9111

import (
	"strings"
	"time"
)

// CacheControl implements parsing of the "Cache-Control" header (/field).
//
// §  5.2. Cache-Control
// §
// §  The "Cache-Control" header field is used to list directives for caches along
// §  the request/response chain. [...] Cache directives are identified by a
// §  token, to be compared case-insensitively, and have an optional argument
// §  that can use both token and quoted-string syntax.
// §
// §    Cache-Control   = #cache-directive
// §
// §    cache-directive = token [ "=" ( token / quoted-string ) ]
type CacheControl struct {
	directives map[string]string
}

// Get returns the value (/argument) of the specified directive,
// along with a boolean indicating whether this directive is present
func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[strings.ToLower(directive)]
	return val, ok
}

// HasDirective returns whether the specified directive is present
func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns an instance of `CacheControl`.
func ParseCacheControl(headers []string) CacheControl {
	m := make(map[string]string)
	// the first occurrence of a directive wins
	for _, header := range headers {
		for _, directive := range splitDirectives(header) {
			name, arg, _ := strings.Cut(directive, "=")
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if _, seen := m[name]; !seen {
				m[name] = strings.Trim(strings.TrimSpace(arg), "\"")
			}
		}
	}
	return CacheControl{m}
}

// splitDirectives splits on commas outside of quoted strings,
// e.g. `no-cache="Set-Cookie, X-Foo"` is a single directive.
func splitDirectives(header string) []string {
	var directives []string
	quoted := false
	start := 0
	for i, c := range header {
		switch c {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				directives = append(directives, strings.TrimSpace(header[start:i]))
				start = i + 1
			}
		}
	}
	return append(directives, strings.TrimSpace(header[start:]))
}

// §  5.2.2.1. max-age
// §
// §  The max-age response directive indicates that the response is to be considered
// §  stale after its age is greater than the specified number of seconds.
func (c CacheControl) MaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds("max-age")
}

// §  5.2.2.4.  no-cache
// §
// §     The no-cache response directive, in its unqualified form (without an
// §     argument), indicates that the response MUST NOT be used to satisfy
// §     any other request without forwarding it for validation [...]
//
// The qualified form is treated like the unqualified one.
func (c CacheControl) NoCache() bool {
	return c.HasDirective("no-cache")
}

// §  5.2.2.5.  no-store
func (c CacheControl) NoStore() bool {
	return c.HasDirective("no-store")
}

// §  5.2.2.7.  private
func (c CacheControl) Private() bool {
	return c.HasDirective("private")
}

// §  5.2.2.9.  public
func (c CacheControl) Public() bool {
	return c.HasDirective("public")
}

// §  5.2.2.10.  s-maxage
// §
// §     The s-maxage response directive indicates that, for a shared cache,
// §     the maximum age specified by this directive overrides the maximum age
// §     specified by either the max-age directive or the Expires header
// §     field.
func (c CacheControl) SMaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds("s-maxage")
}

// getDeltaSeconds returns the "delta-seconds" as `time.Duration`,
// as well as a boolean indicating whether the directive was set.
//
// Examples:
// directive    -> 0,  false
// directive=0  -> 0,  true
// directive=60 -> 60, true
// directive=x  -> 0,  false
func (c CacheControl) getDeltaSeconds(directive string) (time.Duration, bool) {
	if secondsStr, ok := c.Get(directive); ok && secondsStr != "" {
		return DeltaSeconds(secondsStr)
	}
	return 0, false
}

// §  5.2.3.  Extension Directives
// §
// §     [...] A cache MUST ignore unrecognized cache directives.
