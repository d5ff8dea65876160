package rfc9111

import (
	"net/http"
	"testing"
	"time"
)

func TestAgeList(t *testing.T) {
	header := make(http.Header)
	header.Add("Age", "7200, 10")
	if age, ok := GetAge(header); !ok || age != time.Second*7200 {
		t.Fatalf("Age is %v", age)
	}
}

func TestAgeInvalid(t *testing.T) {
	header := make(http.Header)
	header.Add("Age", "abc")
	if age, ok := GetAge(header); ok {
		t.Fatalf("Invalid age should be ignored, got %v", age)
	}
	if _, ok := GetAge(http.Header{}); ok {
		t.Fatal("Missing age should not be present")
	}
}

func TestCurrentAge(t *testing.T) {
	date := time.Date(2022, time.October, 1, 12, 0, 0, 0, time.UTC)
	header := make(http.Header)
	header.Set("Date", ToHttpDate(date))
	header.Set("Age", "10")

	// received 5 seconds after Date, so apparent age (5s) < age value (10s)
	responseTime := date.Add(5 * time.Second)
	now := responseTime.Add(30 * time.Second)
	if age := CurrentAge(header, responseTime, now); age != 40*time.Second {
		t.Fatalf("Current age is %v", age)
	}
	// clock skew cannot make the age negative
	if age := CurrentAge(header, responseTime, responseTime.Add(-time.Hour)); age != 10*time.Second {
		t.Fatalf("Current age is %v", age)
	}
}

func TestIsFresh(t *testing.T) {
	created := time.Date(2022, time.October, 1, 12, 0, 0, 0, time.UTC)
	header := make(http.Header)
	header.Set("Date", ToHttpDate(created))
	header.Set("Cache-Control", "max-age=60")
	if !IsFresh(header, created, created.Add(59*time.Second)) {
		t.Fatal("Response should be fresh")
	}
	if IsFresh(header, created, created.Add(60*time.Second)) {
		t.Fatal("Response should be stale")
	}
}
