// Package cacheupdate reads the `Cache-Update` response field, with which an
// origin asks the cache to refresh resources changed by an unsafe request.
//
//	Cache-Update: /list; delay=5
package cacheupdate

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/always-cache/respcache/response"
	"github.com/always-cache/respcache/rfc9111"
)

// HeaderName is the name of the field.
const HeaderName = "Cache-Update"

// CacheUpdate represents a single `Cache-Update` entry.
type CacheUpdate struct {
	// Fully resolved request URI of the resource.
	Path string
	// Update delay, i.e. delay update by this duration.
	Delay time.Duration
}

var delayDirective = regexp.MustCompile(`(?i)\bdelay=(\d+)`)

// GetCacheUpdates gets the updates specified by the response.
// The incoming request is used in order to resolve potentially relative update paths.
// Only unsafe requests may trigger updates.
func GetCacheUpdates(req *http.Request, res response.HeaderReader) []CacheUpdate {
	if !rfc9111.UnsafeRequest(req) {
		return nil
	}
	updates := make([]CacheUpdate, 0)
	for _, update := range res.Values(HeaderName) {
		path, _, _ := strings.Cut(update, ";")
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		u, err := url.Parse(path)
		if err != nil || u.IsAbs() || u.Host != "" {
			// updates are only allowed within the origin
			continue
		}
		updates = append(updates, CacheUpdate{
			Path:  req.URL.ResolveReference(u).RequestURI(),
			Delay: getDelay(update),
		})
	}
	return updates
}

// getDelay returns the delay to wait before updating the cache for from the `Cache-Update` header parameter.
// The delay directive syntax is `delay=N`, where N is the number of seconds to wait.
// Directives are separated by a semicolon.
// If no delay directive is found, it returns 0.
func getDelay(update string) time.Duration {
	if matches := delayDirective.FindStringSubmatch(update); matches != nil {
		if delay, ok := rfc9111.DeltaSeconds(matches[1]); ok {
			return delay
		}
	}
	return 0
}
