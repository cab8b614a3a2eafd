// Package auth signs requests for the citybus API.
//
// Every request carries an App header, a Timestamp derived from the wall
// clock and the query string, and a Hash over the salted query string and
// that timestamp. The server recomputes both to validate the request.
package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
	"unicode/utf16"
)

const (
	DefaultAppID = "ukraine"
	DefaultSalt  = "ua.in.citybus.ukraine"
)

// Header names sent with every signed request.
const (
	HeaderApp       = "App"
	HeaderTimestamp = "Timestamp"
	HeaderHash      = "Hash"
)

// Signature is the set of authentication values for a single request.
type Signature struct {
	AppID     string
	Timestamp int64
	Hash      string
}

// Apply sets the signature headers on h.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderApp, s.AppID)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderHash, s.Hash)
}

// Signer produces signatures for query strings.
type Signer struct {
	AppID string
	Salt  string
	// Now defaults to time.Now when nil.
	Now func() time.Time
}

// NewSigner returns a Signer using the wall clock.
func NewSigner(appID, salt string) *Signer {
	return &Signer{AppID: appID, Salt: salt}
}

// Sign computes the signature for query. The query must be sent on the wire
// exactly as passed here.
func (s *Signer) Sign(query string) Signature {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := Timestamp(query, now())
	return Signature{
		AppID:     s.AppID,
		Timestamp: ts,
		Hash:      Hash(s.Salt, query, ts),
	}
}

// Timestamp returns ms*1000 + (ms+charSum(query)) mod 1000 where ms is the
// Unix time of now in milliseconds.
func Timestamp(query string, now time.Time) int64 {
	ms := now.UnixMilli()
	return ms*1000 + (ms+charSum(query))%1000
}

// Hash returns the lowercase hex SHA-512 of salt + query + "&" + ts.
func Hash(salt, query string, ts int64) string {
	sum := sha512.Sum512([]byte(salt + query + "&" + strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(sum[:])
}

// charSum adds up UTF-16 code units, so characters outside the BMP count
// as their two surrogate halves.
func charSum(s string) int64 {
	var sum int64
	for _, u := range utf16.Encode([]rune(s)) {
		sum += int64(u)
	}
	return sum
}
