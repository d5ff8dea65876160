// Package response implements the response value that flows through the
// cache: status, header and body plus the time it was created.
//
// A Response is live until Freeze is called. Freeze returns a Sealed value,
// which offers no mutators at all, and leaves the Response itself frozen so
// that any remaining writer gets ErrImmutable.
//
// A Response is not safe for concurrent mutation. Sealed values are safe to
// share between goroutines, and each reader takes its own Duplicate.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/always-cache/respcache/rfc9111"
)

// ErrImmutable is returned when a frozen response is mutated.
var ErrImmutable = errors.New("response: immutable object")

// Response is a live cached response.
type Response struct {
	view
	frozen bool
	sealed *Sealed
}

// Sealed is a frozen response. It cannot be changed, only read or duplicated.
type Sealed struct {
	view
}

var (
	_ HeaderAccessor         = (*Response)(nil)
	_ ResponseHeaderAccessor = (*Response)(nil)
	_ HeaderReader           = (*Sealed)(nil)
	_ ResponseHeaderAccessor = (*Sealed)(nil)
)

type options struct {
	clock     func() time.Time
	createdAt time.Time
}

type Option func(*options)

// WithClock sets the clock used for the creation time and by Activate.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// CreatedAt restores the creation time of a response that was stored earlier.
func CreatedAt(t time.Time) Option {
	return func(o *options) {
		o.createdAt = t
	}
}

// New creates a response from a copy of header.
// Later changes to header are not seen by the response.
func New(status int, header http.Header, body Body, opts ...Option) *Response {
	return build(status, header.Clone(), body, opts)
}

// Wrap creates a response that takes ownership of header.
// The caller must not use header afterwards: it may receive a Date field and
// it is changed by every mutation of the response.
func Wrap(status int, header http.Header, body Body, opts ...Option) *Response {
	return build(status, header, body, opts)
}

func build(status int, header http.Header, body Body, opts []Option) *Response {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if header == nil {
		header = make(http.Header)
	}
	createdAt := o.createdAt
	if createdAt.IsZero() {
		createdAt = o.clock()
	}
	if len(header.Values("Date")) == 0 {
		header.Set("Date", rfc9111.ToHttpDate(createdAt))
	}
	return &Response{
		view: view{
			status:    status,
			header:    header,
			body:      body,
			createdAt: createdAt,
			clock:     o.clock,
		},
	}
}

func (r *Response) mutable(op string) error {
	if r.frozen {
		return fmt.Errorf("%s: %w", op, ErrImmutable)
	}
	return nil
}

// Set replaces all values of the named field.
func (r *Response) Set(name, value string) error {
	if err := r.mutable("set " + name); err != nil {
		return err
	}
	r.header.Set(name, value)
	return nil
}

func (r *Response) Add(name, value string) error {
	if err := r.mutable("add " + name); err != nil {
		return err
	}
	r.header.Add(name, value)
	return nil
}

func (r *Response) Del(name string) error {
	if err := r.mutable("delete " + name); err != nil {
		return err
	}
	r.header.Del(name)
	return nil
}

func (r *Response) SetStatus(status int) error {
	if err := r.mutable("set status"); err != nil {
		return err
	}
	r.status = status
	return nil
}

func (r *Response) SetBody(body Body) error {
	if err := r.mutable("set body"); err != nil {
		return err
	}
	r.body = body
	return nil
}

// Activate sets the Age field to the whole seconds elapsed since the
// response was created. Clock skew never yields a negative age.
func (r *Response) Activate() error {
	if err := r.mutable("activate"); err != nil {
		return err
	}
	r.header.Set("Age", rfc9111.ToDeltaSeconds(r.clock().Sub(r.createdAt)))
	return nil
}

// ToTuple returns the status, header and body as they are.
// The header of a live response is the owned mapping itself; a frozen
// response returns a copy.
func (r *Response) ToTuple() (int, http.Header, Body) {
	if r.frozen {
		return r.status, r.header.Clone(), r.body
	}
	return r.status, r.header, r.body
}

// Freeze makes the response immutable and returns its sealed form.
// Calling it again returns the same Sealed.
func (r *Response) Freeze() *Sealed {
	if !r.frozen {
		r.frozen = true
		r.sealed = &Sealed{view: r.view}
	}
	return r.sealed
}

func (r *Response) Frozen() bool {
	return r.frozen
}

// ToTuple returns the status, a copy of the header and the body.
func (s *Sealed) ToTuple() (int, http.Header, Body) {
	return s.status, s.header.Clone(), s.body
}
