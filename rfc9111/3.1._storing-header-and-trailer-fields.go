package rfc9111

import (
	"net/http"
	"strings"
)

// §  3.1.  Storing Header and Trailer Fields
// §
// §     Caches MUST include all received response header fields -- including
// §     unrecognized ones -- when storing a response; this assures that new
// §     HTTP header fields can be successfully deployed.  However, the
// §     following exceptions are made:
// §
// §     *  The Connection header field and fields whose names are listed in it
// §        are required by Section 7.6.1 of [HTTP] to be removed before
// §        forwarding the message.  This MAY be implemented by doing so
// §        before storage.
var hopByHopFields = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"TE",
	"Transfer-Encoding",
	"Upgrade",
}

// StorableHeader returns a copy of the header without the fields that must not
// be stored.
func StorableHeader(header http.Header) http.Header {
	if header == nil {
		return nil
	}
	h := header.Clone()
	for _, name := range HopByHopFields(header) {
		h.Del(name)
	}
	return h
}

// HopByHopFields returns the names of the fields removed by StorableHeader,
// including those nominated by the Connection field.
func HopByHopFields(header http.Header) []string {
	names := append([]string{}, hopByHopFields...)
	for _, name := range GetListHeader(header, "Connection") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GetListHeader returns the members of a comma-separated list field,
// across all field lines.
func GetListHeader(header http.Header, field string) []string {
	list := make([]string, 0)
	for _, hdr := range header.Values(field) {
		for _, item := range strings.Split(hdr, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}
	return list
}
