// Package respcache is an HTTP caching layer. It serves stored responses while
// they are fresh and forwards everything else, either to an origin server
// (ServeHTTP) or to the next handler (Middleware).
package respcache

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/always-cache/respcache/cache"
	cachekey "github.com/always-cache/respcache/pkg/cache-key"
	cacheupdate "github.com/always-cache/respcache/pkg/cache-update"
	recorder "github.com/always-cache/respcache/pkg/response-recorder"
	serializer "github.com/always-cache/respcache/pkg/response-serializer"
	responsetransformer "github.com/always-cache/respcache/pkg/response-transformer"
	"github.com/always-cache/respcache/response"
	"github.com/always-cache/respcache/rfc9111"
	"github.com/always-cache/respcache/rfc9211"

	"github.com/google/uuid"
	"github.com/pquerna/cachecontrol/cacheobject"
	"github.com/rs/zerolog"
)

const defaultName = "respcache"

type Config struct {
	// Storage for cache entries. An in-memory cache is used if nil.
	Cache cache.CacheProvider
	// URL of the origin server.
	// Origins with paths are not supported.
	OriginURL url.URL
	// Hostname to use for HTTP requests and TLS negotiation.
	// Use if needed if e.g. the origin URL is just an IP address.
	OriginHost string
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Rules for adding caching headers to origin responses.
	Rules responsetransformer.Rules
	// Name of the cache in the Cache-Status field.
	Name string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type ResponseCache struct {
	cache        cache.CacheProvider
	keyer        cachekey.CacheKeyer
	log          zerolog.Logger
	rules        responsetransformer.Rules
	name         string
	clock        func() time.Time
	reverseproxy *httputil.ReverseProxy
}

// CreateCache initializes the cache instance.
func CreateCache(config Config) *ResponseCache {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	// create a child logger and add defaults
	logger = logger.With().
		Str("origin", config.OriginURL.String()).
		Logger()

	a := &ResponseCache{
		cache: config.Cache,
		keyer: cachekey.NewCacheKeyer(config.OriginURL.String()),
		log:   logger,
		rules: config.Rules,
		name:  config.Name,
		clock: config.Clock,
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	if a.name == "" {
		a.name = defaultName
	}
	if a.cache == nil {
		mem := cache.NewMemCache()
		mem.Clock = a.clock
		a.cache = mem
	}

	if config.OriginURL.Host != "" {
		host := config.OriginURL.Host
		hostHeader := host
		transport := http.DefaultTransport
		if config.OriginHost != "" {
			hostHeader = config.OriginHost
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					ServerName: config.OriginHost,
				},
			}
		}
		a.reverseproxy = &httputil.ReverseProxy{
			Director:  createDirector(config.OriginURL.Scheme, host, hostHeader),
			Transport: transport,
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				a.log.Error().Err(err).Str("url", r.URL.String()).Msg("Could not reach origin")
				w.WriteHeader(http.StatusBadGateway)
			},
		}
	}

	return a
}

type request struct {
	r           *http.Request
	cacheStatus rfc9211.CacheStatus
	log         zerolog.Logger
}

// ServeHTTP implements the http.Handler interface by forwarding to the origin.
func (a *ResponseCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.reverseproxy == nil {
		http.Error(w, "no origin configured", http.StatusBadGateway)
		return
	}
	a.handle(w, r, a.reverseproxy)
}

// Middleware returns a handler that caches the responses of next.
func (a *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.handle(w, r, next)
	})
}

func (a *ResponseCache) handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	req := &request{
		r:           r,
		cacheStatus: rfc9211.CacheStatus{Name: a.name},
		log:         a.log.With().Str("requestId", uuid.NewString()).Logger(),
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		a.writeThrough(w, req, next)
		return
	}
	fwdReason := a.serveStored(w, req)
	if fwdReason == "" {
		return
	}
	req.cacheStatus.Forward(fwdReason)
	a.forward(w, req, next)
}

// serveStored sends a fresh stored response if there is one.
// It returns the reason for forwarding otherwise, and "" if the response was sent.
func (a *ResponseCache) serveStored(w http.ResponseWriter, req *request) rfc9211.FwdReason {
	prefix := a.keyer.GetKeyPrefix(req.r)
	req.log.Trace().Str("key", prefix).Msg("Getting cached entries")
	entries, err := a.cache.All(prefix)
	if err != nil {
		req.log.Error().Err(err).Msg("Could not retrieve from cache")
		return rfc9211.FwdMiss
	}
	req.log.Trace().Str("key", prefix).Msgf("Found %v cache entries", len(entries))
	if len(entries) == 0 {
		return rfc9211.FwdUriMiss
	}
	fwdReason := rfc9211.FwdVaryMiss
	now := a.clock()
	for _, ce := range entries {
		stored, err := serializer.Unmarshal(ce.Bytes, response.WithClock(a.clock))
		if err != nil {
			req.log.Error().Err(err).Str("key", ce.Key).Msg("Could not read stored response")
			continue
		}
		if !a.keyer.Selects(ce.Key, req.r, stored) {
			continue
		}
		if !stored.IsFresh(now) {
			fwdReason = rfc9211.FwdStale
			continue
		}
		// every hit gets its own copy of the stored response
		res := stored.Duplicate()
		if err := res.Activate(); err != nil {
			a.fail(w, req, err)
			return ""
		}
		// whole seconds, like the Age field
		age := stored.CurrentAge(now).Truncate(time.Second)
		req.cacheStatus.Hit(stored.FreshnessLifetime() - age)
		a.send(w, req, res)
		return ""
	}
	return fwdReason
}

// forward gets the response from next, stores it if allowed and sends it.
func (a *ResponseCache) forward(w http.ResponseWriter, req *request, next http.Handler) {
	req.log.Trace().Msgf("Forwarding %s", req.r.URL.String())
	res, err := a.fetch(req, next)
	if err != nil {
		a.fail(w, req, err)
		return
	}
	stored, err := a.store(req, res)
	if err != nil {
		req.log.Error().Err(err).Msg("Could not store response")
		req.cacheStatus.Detail = "store-error"
	}
	req.cacheStatus.Stored = stored
	a.send(w, req, res)
}

// writeThrough forwards a request with a method that is never served from
// the cache, and invalidates and updates stored responses as needed.
func (a *ResponseCache) writeThrough(w http.ResponseWriter, req *request, next http.Handler) {
	req.cacheStatus.Forward(rfc9211.FwdMethod)
	rec := recorder.New(a.clock)
	next.ServeHTTP(rec, req.r)
	res := rec.Response()
	_, header, _ := res.ToTuple()
	for _, uri := range rfc9111.GetInvalidateURIs(req.r, res.Status(), header) {
		req.log.Trace().Str("uri", uri).Msg("Invalidating stored response")
		if err := a.PurgeURI(uri); err != nil {
			req.log.Error().Err(err).Str("uri", uri).Msg("Could not invalidate stored response")
		}
	}
	if res.Status() < http.StatusBadRequest {
		a.saveUpdates(req, next, cacheupdate.GetCacheUpdates(req.r, res))
	}
	a.send(w, req, res)
}

// fetch records the response of next and applies the rules to it.
func (a *ResponseCache) fetch(req *request, next http.Handler) (*response.Response, error) {
	r := req.r.WithContext(req.log.WithContext(req.r.Context()))
	rec := recorder.New(a.clock)
	next.ServeHTTP(rec, r)
	res := rec.Response()
	if err := a.rules.Apply(r, res); err != nil {
		return nil, fmt.Errorf("apply rules: %w", err)
	}
	return res, nil
}

// store writes a frozen duplicate of res to the cache if it may be stored.
func (a *ResponseCache) store(req *request, res *response.Response) (bool, error) {
	r := req.r
	_, header, _ := res.ToTuple()
	reasons, _, err := cacheobject.UsingRequestResponse(r, res.Status(), header, false)
	if err != nil {
		return false, fmt.Errorf("check storability: %w", err)
	}
	if len(reasons) > 0 {
		req.log.Trace().Msgf("Not storing response: %v", reasons)
		return false, nil
	}
	// stored responses are never revalidated, so no-cache means no storing
	if res.CacheControl().NoCache() {
		req.log.Trace().Msg("Not storing response with no-cache")
		return false, nil
	}
	// a partial response would be served for the full resource
	if res.Status() == http.StatusPartialContent || r.Header.Get("Range") != "" {
		req.log.Trace().Msg("Not storing partial response")
		return false, nil
	}
	lifetime := res.FreshnessLifetime()
	if lifetime <= 0 {
		req.log.Trace().Msg("Not storing response without freshness lifetime")
		return false, nil
	}
	key, ok := a.keyer.AddVaryKeys(a.keyer.GetKeyPrefix(r), r, res)
	if !ok {
		req.log.Trace().Msg("Not storing response with Vary: *")
		return false, nil
	}
	stored := res.Duplicate()
	for _, name := range rfc9111.HopByHopFields(header) {
		if err := stored.Del(name); err != nil {
			return false, err
		}
	}
	bts, err := serializer.Marshal(stored.Freeze())
	if err != nil {
		return false, err
	}
	exp := res.CreatedAt().Add(lifetime)
	req.log.Trace().Str("key", key).Time("expires", exp).Msg("Writing to cache")
	if err := a.cache.Put(cache.CacheEntry{Key: key, Expires: exp, Bytes: bts}); err != nil {
		return false, err
	}
	return true, nil
}

// send writes the response to the client and freezes it.
func (a *ResponseCache) send(w http.ResponseWriter, req *request, res *response.Response) {
	status, header, body := res.ToTuple()
	copyHeader(w.Header(), header)
	w.Header().Set(rfc9211.HeaderName, req.cacheStatus.String())
	w.WriteHeader(status)
	// nothing may change the response once it is on the wire
	res.Freeze()
	if body != nil && req.r.Method != http.MethodHead {
		bytesWritten, err := body.WriteTo(w)
		if err != nil {
			req.log.Error().Err(err).Msg("Could not write response body to client")
		}
		req.log.Trace().Msgf("Wrote body (%d bytes)", bytesWritten)
	}
	a.logRequest(req, status)
}

// fail answers with 500 for errors that indicate a bug, e.g. a mutated frozen
// response.
func (a *ResponseCache) fail(w http.ResponseWriter, req *request, err error) {
	if errors.Is(err, response.ErrImmutable) {
		req.log.Error().Err(err).Msg("Response mutated after freezing")
	} else {
		req.log.Error().Err(err).Msg("Could not handle request")
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// PurgeURI removes all stored responses for the request URI (path and query).
func (a *ResponseCache) PurgeURI(uri string) error {
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		if err := a.cache.Purge(a.keyer.URIPrefix(method, uri)); err != nil {
			return fmt.Errorf("purge %s %s: %w", method, uri, err)
		}
	}
	return nil
}

func createDirector(scheme, host, hostHeader string) func(req *http.Request) {
	return func(req *http.Request) {
		req.URL.Scheme = scheme
		req.URL.Host = host
		if hostHeader != "" {
			req.Host = hostHeader
		}
	}
}

func (a *ResponseCache) logRequest(req *request, status int) {
	isHit := 0
	if req.cacheStatus.IsHit() {
		isHit = 1
	}
	req.log.Debug().
		Str("method", req.r.Method).
		Str("url", req.r.URL.String()).
		Str("sourceIp", getRequestSourceIp(req.r)).
		Int("status", status).
		Str("fwd", string(req.cacheStatus.FwdReason)).
		Bool("stored", req.cacheStatus.Stored).
		Dur("ttl", req.cacheStatus.TimeToLive).
		Int("hit", isHit).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		// this is a workaround to remove default headers sent by an upstream proxy
		// some servers do not like the presence of these headers in the downstream request
		if k != "X-Forwarded-For" && k != "X-Forwarded-Proto" && k != "X-Forwarded-Host" {
			for _, v := range vv {
				dst.Add(k, v)
			}
		}
	}
}
