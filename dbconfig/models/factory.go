package models

import "time"

type Factory struct {
	ID        int64
	ChainID   uint64
	Address   string
	Type      string
	Active    bool
	CreatedAt time.Time
}
