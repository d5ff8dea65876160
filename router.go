package respcache

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// AdminPrefix is the path under which the administrative routes are mounted.
const AdminPrefix = "/.respcache"

// Router returns a router that serves everything through the cache, with the
// administrative routes mounted under AdminPrefix:
//
//	DELETE /.respcache/entries/{uri}  purges the stored responses for uri
func (a *ResponseCache) Router() chi.Router {
	r := chi.NewRouter()
	r.Delete(AdminPrefix+"/entries/*", a.purgeHandler)
	r.Handle("/*", a)
	return r
}

func (a *ResponseCache) purgeHandler(w http.ResponseWriter, r *http.Request) {
	// keys hold escaped request URIs
	target := url.URL{Path: "/" + chi.URLParam(r, "*"), RawQuery: r.URL.RawQuery}
	uri := target.RequestURI()
	if err := a.PurgeURI(uri); err != nil {
		a.log.Error().Err(err).Str("uri", uri).Msg("Could not purge")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	a.log.Debug().Str("uri", uri).Msg("Purged stored responses")
	w.WriteHeader(http.StatusNoContent)
}
