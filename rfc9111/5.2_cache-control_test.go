package rfc9111

import (
	"testing"
	"time"
)

func TestMaxAge(t *testing.T) {
	cc := ParseCacheControl([]string{"max-age=60"})
	val, ok := cc.Get("max-age")
	if !ok {
		t.Fatal("Could not get directive")
	}
	if val != "60" {
		t.Fatalf("Value is %s", val)
	}
	if d, ok := cc.MaxAge(); !ok || d != time.Minute {
		t.Fatalf("max-age is %v", d)
	}
}

func TestReal(t *testing.T) {
	cc := ParseCacheControl([]string{"public, max-age=0, s-maxage=600"})
	if val, ok := cc.Get("public"); !ok || val != "" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("max-age"); !ok || val != "0" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("s-maxage"); !ok || val != "600" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if !cc.Public() || cc.Private() || cc.NoStore() || cc.NoCache() {
		t.Fatalf("Directives are %v", cc.directives)
	}
}

func TestCaseAndSpacing(t *testing.T) {
	cc := ParseCacheControl([]string{"No-Store,MAX-AGE=5", "private"})
	if !cc.NoStore() || !cc.Private() {
		t.Fatalf("Directives are %v", cc.directives)
	}
	if d, ok := cc.MaxAge(); !ok || d != 5*time.Second {
		t.Fatalf("max-age is %v", d)
	}
}

func TestQuotedList(t *testing.T) {
	cc := ParseCacheControl([]string{`no-cache="Set-Cookie, X-Foo", max-age=10`})
	if val, _ := cc.Get("no-cache"); val != "Set-Cookie, X-Foo" {
		t.Fatalf("no-cache is '%s'", val)
	}
	if d, ok := cc.MaxAge(); !ok || d != 10*time.Second {
		t.Fatalf("max-age is %v", d)
	}
}

func TestInvalidDeltaSeconds(t *testing.T) {
	cc := ParseCacheControl([]string{"max-age=abc"})
	if _, ok := cc.MaxAge(); ok {
		t.Fatal("Invalid max-age should be ignored")
	}
}
