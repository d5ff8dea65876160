// Package serializer converts sealed responses to and from the bytes kept in
// a cache provider.
package serializer

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/always-cache/respcache/response"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrStreamBody is returned for responses whose body can only be read once.
var ErrStreamBody = errors.New("serializer: body is not replayable")

const formatVersion = 1

type storedResponse struct {
	Version   int         `msgpack:"v"`
	Status    int         `msgpack:"s"`
	Header    http.Header `msgpack:"h"`
	Body      []byte      `msgpack:"b"`
	CreatedAt time.Time   `msgpack:"c"`
}

// Marshal encodes a sealed response.
// The body must be nil or response.Bytes.
func Marshal(res *response.Sealed) ([]byte, error) {
	status, header, body := res.ToTuple()
	stored := storedResponse{
		Version:   formatVersion,
		Status:    status,
		Header:    header,
		CreatedAt: res.CreatedAt(),
	}
	switch b := body.(type) {
	case nil:
	case response.Bytes:
		stored.Body = b
	default:
		return nil, fmt.Errorf("marshal %T: %w", body, ErrStreamBody)
	}
	return msgpack.Marshal(&stored)
}

// Unmarshal decodes a response encoded by Marshal.
// The creation time is restored, so the returned value can be duplicated and
// activated to serve it.
func Unmarshal(b []byte, opts ...response.Option) (*response.Sealed, error) {
	var stored storedResponse
	if err := msgpack.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if stored.Version != formatVersion {
		return nil, fmt.Errorf("unmarshal response: unknown format version %d", stored.Version)
	}
	opts = append(opts, response.CreatedAt(stored.CreatedAt.UTC()))
	res := response.Wrap(stored.Status, stored.Header, response.Bytes(stored.Body), opts...)
	return res.Freeze(), nil
}
