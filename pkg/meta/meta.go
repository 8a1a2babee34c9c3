// Package meta implements the provenance/freshness signature attached
// to every data response, and the predicates that decide whether a
// payload may be served under the active sourcing policy.
package meta

import (
	"time"

	"titandash/pkg/flags"
)

// Source identifies which tier produced a payload.
type Source string

const (
	// SourceReal means a live upstream call succeeded.
	SourceReal Source = "real"
	// SourceBFF means the payload came from a backend cache/aggregation layer.
	SourceBFF Source = "bff"
	// SourceMock means a synthetic fallback payload.
	SourceMock Source = "mock"
	// SourceNone means nothing could be produced.
	SourceNone Source = "none"
)

// Signature stamps a payload with provenance and freshness.
type Signature struct {
	Source Source `json:"source"`
	TS     int64  `json:"ts"`
	TTLMs  int64  `json:"ttlMs"`
	Stale  bool   `json:"stale"`
	Reason string `json:"reason,omitempty"`
}

// NoDataResponse is the canonical "nothing could be produced" sentinel,
// returned instead of an error once every fallback is exhausted.
type NoDataResponse struct {
	NoData bool      `json:"noData"`
	Meta   Signature `json:"meta"`
}

// now is swappable for tests.
var now = func() int64 { return time.Now().UnixMilli() }

// New creates a fresh signature for the given source. A non-positive
// ttlMs falls back to the policy default of 30s.
func New(source Source, ttlMs int64) Signature {
	if ttlMs <= 0 {
		ttlMs = flags.DefaultTTL.Milliseconds()
	}
	return Signature{
		Source: source,
		TS:     now(),
		TTLMs:  ttlMs,
		Stale:  false,
	}
}

// NoData builds the terminal sentinel. Its signature is always stale.
func NoData(reason string) NoDataResponse {
	return NoDataResponse{
		NoData: true,
		Meta: Signature{
			Source: SourceNone,
			TS:     now(),
			Stale:  true,
			Reason: reason,
		},
	}
}

// IsStaleData reports whether a timestamp has outlived its TTL.
// A missing or non-positive timestamp is always stale.
func IsStaleData(ts, ttlMs int64) bool {
	if ts <= 0 {
		return true
	}
	return now()-ts > ttlMs
}

// IsStale applies the full staleness judgment to a signature: TTL math,
// the explicit stale flag, and timestamp validity.
func IsStale(sig Signature) bool {
	if sig.Stale {
		return true
	}
	ttl := sig.TTLMs
	if ttl <= 0 {
		ttl = flags.DefaultTTL.Milliseconds()
	}
	return IsStaleData(sig.TS, ttl)
}

// IsValidSource reports whether the policy permits serving data of the
// given provenance. Under ForceReal only real/bff pass, no matter what
// UseMock says. Otherwise real/bff always pass and mock passes only
// when mock mode is enabled. "none" is never a servable source.
func IsValidSource(s Source, p flags.Policy) bool {
	switch s {
	case SourceReal, SourceBFF:
		return true
	case SourceMock:
		if p.ForceReal {
			return false
		}
		return p.UseMock
	default:
		return false
	}
}

// IsValidMetadata reports whether a signature identifies data that may
// be rendered as-is: required fields present, source allowed by policy,
// and not stale.
func IsValidMetadata(sig Signature, p flags.Policy) bool {
	if sig.Source == "" || sig.TS <= 0 {
		return false
	}
	if !IsValidSource(sig.Source, p) {
		return false
	}
	if sig.Stale {
		return false
	}
	ttl := sig.TTLMs
	if ttl <= 0 {
		ttl = p.DefaultTTL.Milliseconds()
	}
	return !IsStaleData(sig.TS, ttl)
}
