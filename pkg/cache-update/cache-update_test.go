package cacheupdate

import (
	"net/http"
	"testing"
	"time"

	"github.com/always-cache/respcache/response"
)

func TestGetCacheUpdates(t *testing.T) {
	req, _ := http.NewRequest("POST", "http://dev.localhost/items/add", nil)
	header := http.Header{}
	header.Add("Cache-Update", "/list; delay=5")
	header.Add("Cache-Update", "details?id=1")
	header.Add("Cache-Update", "https://other.example/list")
	res := response.New(http.StatusOK, header, nil)

	updates := GetCacheUpdates(req, res)
	if len(updates) != 2 {
		t.Fatalf("Updates are %+v", updates)
	}
	if updates[0].Path != "/list" || updates[0].Delay != 5*time.Second {
		t.Fatalf("First update is %+v", updates[0])
	}
	if updates[1].Path != "/items/details?id=1" || updates[1].Delay != 0 {
		t.Fatalf("Second update is %+v", updates[1])
	}
}

func TestSafeRequestHasNoUpdates(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://dev.localhost/", nil)
	res := response.New(http.StatusOK, http.Header{"Cache-Update": {"/list"}}, nil)
	if updates := GetCacheUpdates(req, res); updates != nil {
		t.Fatalf("Updates are %+v", updates)
	}
}

func TestDelayCase(t *testing.T) {
	if d := getDelay("/; DELAY=2"); d != 2*time.Second {
		t.Fatalf("Delay is %v", d)
	}
	if d := getDelay("/; nodelay=2"); d != 0 {
		t.Fatalf("Delay is %v", d)
	}
}
