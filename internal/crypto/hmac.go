// Package crypto provides request signing and secret management for the
// exchange adapters.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Params is an ordered list of request parameters. Exchange signatures are
// computed over the query string in insertion order (not sorted), so a plain
// url.Values cannot be used.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty ordered parameter list.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Add appends a parameter. Adding the same key twice overwrites the value
// but keeps the original position.
func (p *Params) Add(key, value string) *Params {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Encode renders the parameters as an unsorted query string, percent-encoded
// per application/x-www-form-urlencoded.
func (p *Params) Encode() string {
	var buf []byte
	for i, k := range p.keys {
		if i > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, url.QueryEscape(k)...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(p.values[k])...)
	}
	return string(buf)
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.keys) }

// RequestSigner signs exchange REST requests with HMAC-SHA256. Credentials
// are set once at construction and never mutated.
type RequestSigner struct {
	apiKey    string
	apiSecret string
}

// NewRequestSigner creates a signer for the given API credentials.
func NewRequestSigner(apiKey, apiSecret string) *RequestSigner {
	return &RequestSigner{apiKey: apiKey, apiSecret: apiSecret}
}

// APIKey returns the API key to send in the authentication header.
func (s *RequestSigner) APIKey() string { return s.apiKey }

// SignedQuery appends a fresh millisecond timestamp to the parameters,
// computes the hex-encoded HMAC-SHA256 of the insertion-ordered query string,
// appends it as the final "signature" parameter, and returns the full query
// string. A new timestamp/signature pair is produced per call; signed queries
// are single-use and never cached across retries.
func (s *RequestSigner) SignedQuery(p *Params) string {
	return s.SignedQueryAt(p, time.Now().UnixMilli())
}

// SignedQueryAt is like SignedQuery but lets the caller supply the
// millisecond timestamp (useful for deterministic testing).
func (s *RequestSigner) SignedQueryAt(p *Params, tsMillis int64) string {
	p.Add("timestamp", strconv.FormatInt(tsMillis, 10))
	sig := s.Signature(p.Encode())
	p.Add("signature", sig)
	return p.Encode()
}

// Signature computes the hex-encoded HMAC-SHA256 of payload using the API
// secret.
func (s *RequestSigner) Signature(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// String returns a redacted representation suitable for logging.
func (s *RequestSigner) String() string {
	redact := func(v string) string {
		if len(v) <= 4 {
			return "****"
		}
		return v[:4] + "****"
	}
	return fmt.Sprintf("RequestSigner{key=%s}", redact(s.apiKey))
}
