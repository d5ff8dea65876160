package rfc9111

import (
	"testing"
	"time"
)

func TestToDeltaSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5"},
		{5*time.Second + 999*time.Millisecond, "5"},
		{0, "0"},
		{-3 * time.Second, "0"},
	}
	for _, tt := range tests {
		if s := ToDeltaSeconds(tt.in); s != tt.want {
			t.Fatalf("ToDeltaSeconds(%v) is %s, want %s", tt.in, s, tt.want)
		}
	}
}

func TestDeltaSecondsOverflow(t *testing.T) {
	d, ok := DeltaSeconds("99999999999999999999999")
	if !ok || d != maxDeltaSeconds*time.Second {
		t.Fatalf("Delta seconds is %v (%v)", d, ok)
	}
	if _, ok := DeltaSeconds("-1"); ok {
		t.Fatal("Negative delta seconds should be invalid")
	}
}

func TestHttpDateRFC850(t *testing.T) {
	_, err := HttpDate("Thursday, 18-Aug-50 02:01:18 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestHttpDateTZCase(t *testing.T) {
	_, err := HttpDate("Thu, 18 Aug 2050 02:01:18 gMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestHttpDateRoundTrip(t *testing.T) {
	now := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	s := ToHttpDate(now)
	if s != "Sun, 06 Nov 1994 08:49:37 GMT" {
		t.Fatalf("Date is %s", s)
	}
	parsed, err := HttpDate(s)
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
	if !parsed.Equal(now) {
		t.Fatalf("Parsed date is %v", parsed)
	}
}
