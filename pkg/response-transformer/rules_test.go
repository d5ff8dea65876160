package responsetransformer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/always-cache/respcache/response"

	"github.com/rs/zerolog"
)

func TestRuleFinder(t *testing.T) {
	makeReq := func(method, path string) *http.Request {
		req, _ := http.NewRequest(method, path, nil)
		return req
	}

	rules := Rules{
		Rule{Prefix: "/wp-", Override: "no-cache"},
		Rule{Path: "/search", Query: map[string]string{"q": ""}, Override: "no-store"},
		Rule{Override: "default"},
	}
	log := zerolog.Nop()

	if rule := rules.find(makeReq("GET", "/"), &log); rule == nil || rule.Override != "default" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("GET", "/wp-admin"), &log); rule == nil || rule.Override != "no-cache" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("GET", "/search?q=go"), &log); rule == nil || rule.Override != "no-store" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("GET", "/search"), &log); rule == nil || rule.Override != "default" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("POST", "/wp-admin"), &log); rule != nil {
		t.Fatal("Incorrect rule")
	}
}

func TestApply(t *testing.T) {
	res := response.New(http.StatusOK, nil, nil)
	ruleDefault := Rule{Default: "default"}
	ruleOverride := Rule{Override: "override", Headers: map[string]string{"X-Rule": "1"}}
	log := zerolog.Nop()

	// try to apply default
	applyRuleToResponse(ruleDefault, res, &log)
	if cc, _ := res.Get("Cache-Control"); cc != "default" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}

	// change cc and check default is not set
	res.Set("Cache-Control", "no-cache")
	applyRuleToResponse(ruleDefault, res, &log)
	if cc, _ := res.Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}

	// check that override works
	applyRuleToResponse(ruleOverride, res, &log)
	if cc, _ := res.Get("Cache-Control"); cc != "override" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}
	if v, _ := res.Get("X-Rule"); v != "1" {
		t.Fatalf("X-Rule header wrong, is '%s'", v)
	}
}

func TestApplyOnlyOK(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	res := response.New(http.StatusNotFound, nil, nil)
	if err := (Rules{{Override: "max-age=60"}}).Apply(req, res); err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Get("Cache-Control"); ok {
		t.Fatal("Rule applied to a 404")
	}
}

func TestApplyFrozen(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	res := response.New(http.StatusOK, nil, nil)
	res.Freeze()
	if err := (Rules{{Override: "max-age=60"}}).Apply(req, res); !errors.Is(err, response.ErrImmutable) {
		t.Fatalf("Apply returned %v", err)
	}
}

func TestApplyLogsToRequestLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	req, _ := http.NewRequest("GET", "/nc", nil)
	req = req.WithContext(logger.WithContext(req.Context()))
	res := response.New(http.StatusOK, nil, nil)
	if err := (Rules{{Override: "max-age=60"}}).Apply(req, res); err != nil {
		t.Fatalf("Apply returned %v", err)
	}
	if !strings.Contains(buf.String(), "Finding rule for request GET:/nc") {
		t.Fatalf("Request logger got %q", buf.String())
	}
}
