package types

import (
	"encoding/json"
	"time"
)

// Freshness describes the state of a value returned by the cache layer.
type Freshness int

const (
	// Missing means no entry exists for the key.
	Missing Freshness = iota
	// Stale means the entry is older than its TTL.
	Stale
	// Fresh means the entry is younger than its TTL.
	Fresh
)

// String returns the lowercase name of the freshness state.
func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "missing"
	}
}

// CacheEntry is a cached payload together with the time it was fetched.
//
// Fields:
// - Key: the cache key.
// - Payload: the JSON encoded value.
// - FetchedAt: when the payload was produced.
// - TTL: how long the payload stays fresh, zero means it never expires.
type CacheEntry struct {
	Key       string
	Payload   json.RawMessage
	FetchedAt time.Time
	TTL       time.Duration
}

// Fresh reports whether the entry is still fresh at the given time.
func (e CacheEntry) Fresh(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Sub(e.FetchedAt) < e.TTL
}

// Freshness returns Fresh or Stale for the entry at the given time.
func (e CacheEntry) Freshness(now time.Time) Freshness {
	if e.Fresh(now) {
		return Fresh
	}
	return Stale
}

type cacheEntryJSON struct {
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetchedAt"`
	TTLSeconds int64           `json:"ttlSeconds"`
}

// MarshalJSON encodes the entry as {key, payload, fetchedAt, ttlSeconds}.
func (e CacheEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(cacheEntryJSON{
		Key:        e.Key,
		Payload:    e.Payload,
		FetchedAt:  e.FetchedAt.UTC(),
		TTLSeconds: int64(e.TTL / time.Second),
	})
}

// UnmarshalJSON decodes an entry written by MarshalJSON.
func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	var raw cacheEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = CacheEntry{
		Key:       raw.Key,
		Payload:   raw.Payload,
		FetchedAt: raw.FetchedAt,
		TTL:       time.Duration(raw.TTLSeconds) * time.Second,
	}
	return nil
}
