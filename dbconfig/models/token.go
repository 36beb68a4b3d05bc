package models

type Token struct {
	ID       int64
	ChainID  uint64
	Address  string
	Symbol   string
	Decimals int
	Native   bool
}
