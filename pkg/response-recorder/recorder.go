// Package recorder captures what a handler writes into a response value.
package recorder

import (
	"bytes"
	"net/http"
	"time"

	"github.com/always-cache/respcache/response"
)

// Recorder is an http.ResponseWriter that buffers the response in memory.
// Nothing is written to the client until the recording is turned into a
// response and sent.
type Recorder struct {
	header       http.Header
	b            *bytes.Buffer
	status       int
	wroteHeaders bool
	// CreatedAt is the time the handler started writing the response.
	CreatedAt time.Time
	clock     func() time.Time
}

// New returns a Recorder. The clock stamps CreatedAt and defaults to
// time.Now.
func New(clock func() time.Time) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{
		header: make(http.Header),
		b:      &bytes.Buffer{},
		clock:  clock,
	}
}

// Implementation of http.ResponseWriter
func (r *Recorder) Header() http.Header {
	return r.header
}

// Implementation of http.ResponseWriter
func (r *Recorder) WriteHeader(statusCode int) {
	if r.wroteHeaders {
		return
	}
	r.wroteHeaders = true
	r.status = statusCode
	r.CreatedAt = r.clock()
}

// Implementation of http.ResponseWriter
func (r *Recorder) Write(b []byte) (int, error) {
	// write headers if not already written
	if !r.wroteHeaders {
		r.WriteHeader(http.StatusOK)
	}
	return r.b.Write(b)
}

// StatusCode returns the status code of the response.
func (r *Recorder) StatusCode() int {
	if !r.wroteHeaders {
		return http.StatusOK
	}
	return r.status
}

// Response turns the recording into a live response. The response takes
// ownership of the recorded header, so the recorder must not be written to
// afterwards.
func (r *Recorder) Response(opts ...response.Option) *response.Response {
	if !r.wroteHeaders {
		r.WriteHeader(http.StatusOK)
	}
	opts = append([]response.Option{response.CreatedAt(r.CreatedAt), response.WithClock(r.clock)}, opts...)
	return response.Wrap(r.status, r.header, response.Bytes(r.b.Bytes()), opts...)
}
