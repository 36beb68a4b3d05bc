package models

import "time"

type CacheEntry struct {
	Key        string
	Payload    []byte
	FetchedAt  time.Time
	TTLSeconds int64
	UpdatedAt  time.Time
}
