// Package cachekey builds the storage keys of cached responses.
//
// A key consists of a prefix identifying the request
// (`origin:METHOD:requestURI\t`) followed by one line per Vary field of the
// stored response, holding the value the request had for that field.
package cachekey

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/always-cache/respcache/response"
)

var ErrMethodNotSupported = errors.New("cachekey: method not supported")

const (
	originSeparator = ":"
	methodSeparator = ":"
	varySeparator   = "\t"
	varyLineStart   = "\n"
	varyValueSep    = ": "
)

type CacheKeyer struct {
	// Unique identifier for the origin.
	// Usually this should be the origin - well - origin.
	OriginId string
	// Cache key prefix for this origin
	OriginPrefix string
}

func NewCacheKeyer(originId string) CacheKeyer {
	return CacheKeyer{
		OriginId:     originId,
		OriginPrefix: originId + originSeparator,
	}
}

// MethodPrefix gets the key prefix for the origin with the given method.
// E.g. prefix for all GET requests in the cache.
func (c CacheKeyer) MethodPrefix(method string) string {
	return c.OriginPrefix + method + methodSeparator
}

// URIPrefix returns the key prefix of all variants stored for the method and
// request URI.
func (c CacheKeyer) URIPrefix(method, requestURI string) string {
	return c.MethodPrefix(method) + requestURI + varySeparator
}

// GetKeyPrefix returns the cache key for a request without the vary headers (i.e. a key prefix).
// The returned key is suitable for finding all stored response variants for a particular request.
// If the request has a `Cache-Key` header, that value is included in the key prefix.
func (c CacheKeyer) GetKeyPrefix(r *http.Request) string {
	key := c.URIPrefix(r.Method, r.URL.RequestURI())
	if ck := r.Header.Get("Cache-Key"); ck != "" {
		key += ck
	}
	return key
}

// AddVaryKeys returns the full cache key (including vary headers) based on a previously generated
// cache key prefix and the request and response involved.
// The boolean is false if the response varies on "*" and can never be matched.
func (c CacheKeyer) AddVaryKeys(prefix string, req *http.Request, res response.HeaderReader) (string, bool) {
	key := prefix
	for _, value := range res.Values("Vary") {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "*" {
				return "", false
			}
			if name == "" {
				continue
			}
			// absent and empty fields do not match each other
			if values, ok := req.Header[http.CanonicalHeaderKey(name)]; ok {
				key += varyLineStart + strings.ToLower(name) + varyValueSep + strings.Join(values, ", ")
			}
		}
	}
	return key, true
}

// MatchesVary reports whether the request has the field values recorded in
// key. Only the fields present in the key are compared.
func (c CacheKeyer) MatchesVary(key string, req *http.Request) bool {
	_, varyPart, found := strings.Cut(key, varySeparator)
	if !found {
		return false
	}
	lines := strings.Split(varyPart, varyLineStart)
	stored := make(map[string]string, len(lines))
	for _, line := range lines[1:] {
		name, value, _ := strings.Cut(line, varyValueSep)
		stored[name] = value
	}
	for name, value := range stored {
		values, ok := req.Header[http.CanonicalHeaderKey(name)]
		if !ok || strings.Join(values, ", ") != value {
			return false
		}
	}
	return true
}

// Selects reports whether the response stored under key may be used for req:
// the request must produce the same key, so fields listed in Vary but absent
// from the key must also be absent from the request.
func (c CacheKeyer) Selects(key string, req *http.Request, res response.HeaderReader) bool {
	expected, ok := c.AddVaryKeys(c.GetKeyPrefix(req), req, res)
	return ok && expected == key
}

// GetRequestFromKey generates a caching-wise equal request than the request that resulted in the
// provided key. This means it takes vary headers into account.
// It returns an error if the request cannot for some reason be deducted.
func (c CacheKeyer) GetRequestFromKey(key string) (*http.Request, error) {
	if !strings.HasPrefix(key, c.OriginPrefix) {
		return nil, fmt.Errorf("key and origin do not match: %s", key)
	}
	keyNoOrigin := strings.TrimPrefix(key, c.OriginPrefix)
	keyNoVary, _, found := strings.Cut(keyNoOrigin, varySeparator)
	if !found {
		return nil, fmt.Errorf("malformed key: %s", key)
	}
	method, uri, found := strings.Cut(keyNoVary, methodSeparator)
	if !found {
		return nil, fmt.Errorf("malformed key: %s", key)
	}
	if method != http.MethodGet && method != http.MethodHead {
		return nil, fmt.Errorf("%s: %w", method, ErrMethodNotSupported)
	}
	req, err := http.NewRequest(method, uri, nil)
	if err != nil {
		return req, err
	}
	req.Header = c.GetVaryHeaders(key)
	return req, nil
}

// GetVaryHeaders creates a http.Header instance containing all the vary keys included in a key.
func (c CacheKeyer) GetVaryHeaders(key string) http.Header {
	header := make(http.Header)
	lines := strings.Split(key, varyLineStart)
	for i := 1; i < len(lines); i++ {
		name, value, _ := strings.Cut(lines[i], varyValueSep)
		header.Add(name, value)
	}
	return header
}
