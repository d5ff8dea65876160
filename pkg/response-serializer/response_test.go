package serializer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/always-cache/respcache/response"
)

func TestSealedResponseSerialization(t *testing.T) {
	created := time.Date(2022, time.October, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return created }
	header := http.Header{}
	header.Add("Test", "-ing")
	header.Add("Set-Cookie", "a=1")
	header.Add("Set-Cookie", "b=2")
	res := response.New(201, header, response.Bytes("This is the body"), response.WithClock(clock))

	bts, err := Marshal(res.Freeze())
	if err != nil {
		t.Fatalf("Error creating bytes: %+v", err)
	}
	later := func() time.Time { return created.Add(30 * time.Second) }
	sealed, err := Unmarshal(bts, response.WithClock(later))
	if err != nil {
		t.Fatalf("Error creating response: %+v", err)
	}
	if sealed.Status() != 201 {
		t.Fatalf("Status is %d", sealed.Status())
	}
	if v, _ := sealed.Get("Test"); v != "-ing" {
		t.Fatalf("Test header wrong %+v", sealed.Values("Test"))
	}
	if v := sealed.Values("Set-Cookie"); len(v) != 2 || v[1] != "b=2" {
		t.Fatalf("Set-Cookie is %v", v)
	}
	if !sealed.CreatedAt().Equal(created) {
		t.Fatalf("Created at %v", sealed.CreatedAt())
	}
	buf := &bytes.Buffer{}
	sealed.Body().WriteTo(buf)
	if buf.String() != "This is the body" {
		t.Fatalf("Body: %s", buf.String())
	}

	dup := sealed.Duplicate()
	if err := dup.Activate(); err != nil {
		t.Fatal(err)
	}
	if age, _ := dup.Get("Age"); age != "30" {
		t.Fatalf("Age is %s", age)
	}
}

func TestStreamBodyNotSerialized(t *testing.T) {
	res := response.New(http.StatusOK, nil, response.Stream(strings.NewReader("x")))
	if _, err := Marshal(res.Freeze()); !errors.Is(err, ErrStreamBody) {
		t.Fatalf("Marshal returned %v", err)
	}
}

func TestEmptyBody(t *testing.T) {
	bts, err := Marshal(response.New(http.StatusNoContent, nil, nil).Freeze())
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := Unmarshal(bts)
	if err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if _, err := sealed.Body().WriteTo(buf); err != nil || buf.Len() != 0 {
		t.Fatalf("Body is %q (%v)", buf.String(), err)
	}
}

func TestGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("HTTP/1.1 200 OK")); err == nil {
		t.Fatal("Unmarshal should fail")
	}
}
