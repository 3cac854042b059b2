package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, which keeps outgoing Message-IDs ordered in mail logs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// MessageID builds an RFC 5322 Message-ID for mail sent through host.
func MessageID(host string) string {
	if host == "" {
		host = "localhost"
	}
	return "<" + New() + "@" + host + ">"
}
