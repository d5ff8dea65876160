package respcache

import (
	"net/http"
	"time"

	cacheupdate "github.com/always-cache/respcache/pkg/cache-update"
	"github.com/always-cache/respcache/rfc9211"
)

// saveUpdates refreshes the stored responses named by `Cache-Update`.
// Updates without a delay are done before the write response is sent, so
// that the client sees its own changes on the next request.
func (a *ResponseCache) saveUpdates(req *request, next http.Handler, updates []cacheupdate.CacheUpdate) {
	for _, update := range updates {
		update := update
		req.log.Trace().Str("update", update.Path).Msg("Updating cache based on header")
		if update.Delay > 0 {
			time.AfterFunc(update.Delay, func() {
				a.updatePath(req, next, update.Path)
			})
		} else {
			a.updatePath(req, next, update.Path)
		}
	}
}

// updatePath replaces the stored responses for path with a fresh one from
// next. If the new response may not be stored, the old ones are still purged.
func (a *ResponseCache) updatePath(parent *request, next http.Handler, path string) {
	log := parent.log.With().Str("path", path).Logger()
	r, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		log.Error().Err(err).Msg("Could not create request for update")
		return
	}
	r.Host = parent.r.Host
	if err := a.PurgeURI(r.URL.RequestURI()); err != nil {
		log.Error().Err(err).Msg("Could not purge before update")
	}
	req := &request{
		r:           r,
		cacheStatus: rfc9211.CacheStatus{Name: a.name},
		log:         log,
	}
	res, err := a.fetch(req, next)
	if err != nil {
		log.Error().Err(err).Msg("Could not update cache entry")
		return
	}
	if _, err := a.store(req, res); err != nil {
		log.Error().Err(err).Msg("Could not update cache entry")
	}
}
