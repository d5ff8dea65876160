package cachekey

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/always-cache/respcache/response"
)

func TestRequestFromKey(t *testing.T) {
	keygen := NewCacheKeyer("this-is-the-origin")
	r, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	key := keygen.GetKeyPrefix(r)
	req, err := keygen.GetRequestFromKey(key)
	if err != nil {
		t.Fatalf("%s: %s", key, err)
	}
	if url := req.URL.String(); url != "/page" {
		t.Fatalf("Created request url for key %s is %s", key, url)
	}
}

func TestRequestFromKeyUnsupportedMethod(t *testing.T) {
	keygen := NewCacheKeyer("o")
	r, _ := http.NewRequest("POST", "http://dev.localhost/page", nil)
	if _, err := keygen.GetRequestFromKey(keygen.GetKeyPrefix(r)); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("Error is %v", err)
	}
}

func TestOriginPrefixIncludesOrigin(t *testing.T) {
	origin := "this-is-the-origin"
	keygen := NewCacheKeyer(origin)
	if !strings.Contains(keygen.OriginPrefix, origin) {
		t.Fatalf("OriginPrefix is %s", keygen.OriginPrefix)
	}
	if !strings.HasPrefix(keygen.MethodPrefix("GET"), keygen.OriginPrefix) {
		t.Fatalf("MethodPrefix is %s", keygen.MethodPrefix("GET"))
	}
}

func TestCacheKeyHeader(t *testing.T) {
	keygen := NewCacheKeyer("o")
	r, _ := http.NewRequest("GET", "http://dev.localhost/page?a=1", nil)
	r.Header.Set("Cache-Key", "tenant-1")
	if key := keygen.GetKeyPrefix(r); key != "o:GET:/page?a=1\ttenant-1" {
		t.Fatalf("Key is %q", key)
	}
}

func TestVaryKeys(t *testing.T) {
	keygen := NewCacheKeyer("o")
	req, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	res := response.New(http.StatusOK, http.Header{"Vary": {"Accept-Encoding, Accept-Language"}}, nil)

	key, ok := keygen.AddVaryKeys(keygen.GetKeyPrefix(req), req, res)
	if !ok {
		t.Fatal("Vary should be matchable")
	}
	if key != "o:GET:/page\t\naccept-encoding: gzip" {
		t.Fatalf("Key is %q", key)
	}
	if h := keygen.GetVaryHeaders(key); h.Get("Accept-Encoding") != "gzip" {
		t.Fatalf("Vary headers are %v", h)
	}
	if !keygen.Selects(key, req, res) {
		t.Fatal("Same request should match")
	}

	other, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	other.Header.Set("Accept-Encoding", "br")
	if keygen.MatchesVary(key, other) {
		t.Fatal("Different Accept-Encoding should not match")
	}
	// Accept-Language was absent when storing
	other.Header.Set("Accept-Encoding", "gzip")
	other.Header.Set("Accept-Language", "fi")
	if !keygen.MatchesVary(key, other) {
		t.Fatal("MatchesVary only compares recorded fields")
	}
	if keygen.Selects(key, other, res) {
		t.Fatal("Accept-Language should not match an absent value")
	}
}

func TestVaryStar(t *testing.T) {
	keygen := NewCacheKeyer("o")
	req, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	res := response.New(http.StatusOK, http.Header{"Vary": {"*"}}, nil)
	if _, ok := keygen.AddVaryKeys(keygen.GetKeyPrefix(req), req, res); ok {
		t.Fatal("Vary: * should never match")
	}
}

func TestSelectsCacheKey(t *testing.T) {
	keygen := NewCacheKeyer("o")
	tenant, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	tenant.Header.Set("Cache-Key", "tenant-1")
	res := response.New(http.StatusOK, nil, nil)
	key, _ := keygen.AddVaryKeys(keygen.GetKeyPrefix(tenant), tenant, res)

	anonymous, _ := http.NewRequest("GET", "http://dev.localhost/page", nil)
	// the prefix of the anonymous request is a prefix of the tenant key
	if !strings.HasPrefix(key, keygen.GetKeyPrefix(anonymous)) {
		t.Fatalf("Key is %q", key)
	}
	if keygen.Selects(key, anonymous, res) {
		t.Fatal("Anonymous request should not select the tenant response")
	}
	if !keygen.Selects(key, tenant, res) {
		t.Fatal("Tenant request should select the tenant response")
	}
}
