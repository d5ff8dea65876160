package response

import (
	"bytes"
	"io"
)

// Body is the payload of a response. It is never inspected by Response.
type Body interface {
	// WriteTo writes the payload to w.
	WriteTo(w io.Writer) (int64, error)
}

// Bytes is an in-memory body. It can be written any number of times, so it
// may be shared between duplicates.
type Bytes []byte

func (b Bytes) WriteTo(w io.Writer) (int64, error) {
	return bytes.NewReader(b).WriteTo(w)
}

// Stream returns a body that copies r once. Later writes return io.EOF.
func Stream(r io.Reader) Body {
	return &stream{r: r}
}

type stream struct {
	r    io.Reader
	used bool
}

func (s *stream) WriteTo(w io.Writer) (int64, error) {
	if s.used {
		return 0, io.EOF
	}
	s.used = true
	if c, ok := s.r.(io.Closer); ok {
		defer c.Close()
	}
	return io.Copy(w, s.r)
}
