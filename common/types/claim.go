package types

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/pkg/errors"
)

// SourceKind identifies where a claim record was read from.
type SourceKind string

const (
	// SourceStorage is the legacy cross-chain storage contract.
	SourceStorage SourceKind = "storage"
	// SourceFactory is the transaction log of a factory contract.
	SourceFactory SourceKind = "factory"
)

// Priority orders sources at merge time. Lower values are merged first.
func (k SourceKind) Priority() int {
	switch k {
	case SourceStorage:
		return 0
	case SourceFactory:
		return 1
	default:
		return 2
	}
}

// ClaimRecord represents one successful distribution from a faucet.
//
// Fields:
// - Claimer: the address that received the distribution.
// - Faucet: the faucet contract address.
// - Amount: the distributed amount in base units.
// - TxHash: the transaction hash, empty when the source does not record it.
// - NetworkName: the display name of the network.
// - ChainID: the unique identifier for the chain.
// - Timestamp: unix timestamp of the claim.
// - TokenSymbol: the symbol of the distributed token.
// - TokenDecimals: the decimals of the distributed token.
// - Native: true if the faucet distributes the native asset.
// - FaucetName: the resolved display name of the faucet.
// - Source: the source the record was read from.
type ClaimRecord struct {
	Claimer       string
	Faucet        string
	Amount        *big.Int
	TxHash        string
	NetworkName   string
	ChainID       uint64
	Timestamp     uint64
	TokenSymbol   string
	TokenDecimals uint8
	Native        bool
	FaucetName    string
	Source        SourceKind
}

// Validate checks the record for the shape every source must produce.
// It returns ErrMalformedRecord wrapped with the reason.
func (c ClaimRecord) Validate() error {
	switch {
	case utils.NormalizeAddress(c.Claimer) == "":
		return errors.Wrap(commonerrors.ErrMalformedRecord, "invalid claimer address")
	case utils.IsZeroAddress(c.Faucet):
		return errors.Wrap(commonerrors.ErrMalformedRecord, "invalid faucet address")
	case c.Amount == nil || c.Amount.Sign() < 0:
		return errors.Wrap(commonerrors.ErrMalformedRecord, "invalid amount")
	case c.Timestamp == 0:
		return errors.Wrap(commonerrors.ErrMalformedRecord, "missing timestamp")
	case c.ChainID == 0:
		return errors.Wrap(commonerrors.ErrMalformedRecord, "missing chain id")
	case !utils.ValidDecimals(int(c.TokenDecimals)):
		return errors.Wrap(commonerrors.ErrMalformedRecord, "token decimals out of range")
	}
	return nil
}

// CompositeKey returns the weak identity (claimer, faucet, timestamp) of the record.
func (c ClaimRecord) CompositeKey() string {
	return strings.ToLower(strings.TrimSpace(c.Claimer)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Faucet)) + "|" +
		strconv.FormatUint(c.Timestamp, 10)
}

// IdentityKey returns the normalized transaction hash when the record carries a
// well-formed one, otherwise the composite key. The boolean is true for hash identities.
func (c ClaimRecord) IdentityKey() (string, bool) {
	if h, ok := utils.NormalizeTxHash(c.TxHash); ok {
		return h, true
	}
	return c.CompositeKey(), false
}

// WithMetadata returns a copy of the record annotated with resolved faucet metadata.
// The receiver is never modified.
func (c ClaimRecord) WithMetadata(meta FaucetMetadata) ClaimRecord {
	out := c
	if c.Amount != nil {
		out.Amount = new(big.Int).Set(c.Amount)
	}
	out.FaucetName = meta.Name
	out.TokenSymbol = meta.TokenSymbol
	out.TokenDecimals = meta.TokenDecimals
	out.Native = c.Native || meta.Native
	return out
}

type claimRecordJSON struct {
	Claimer       string     `json:"claimer"`
	Faucet        string     `json:"faucet"`
	Amount        string     `json:"amount"`
	TxHash        string     `json:"txHash,omitempty"`
	NetworkName   string     `json:"networkName"`
	ChainID       uint64     `json:"chainId"`
	Timestamp     uint64     `json:"timestamp"`
	TokenSymbol   string     `json:"tokenSymbol"`
	TokenDecimals uint8      `json:"tokenDecimals"`
	Native        bool       `json:"isEther"`
	FaucetName    string     `json:"faucetName,omitempty"`
	Source        SourceKind `json:"source,omitempty"`
}

// MarshalJSON encodes the amount as a decimal string so no precision is lost.
func (c ClaimRecord) MarshalJSON() ([]byte, error) {
	amount := "0"
	if c.Amount != nil {
		amount = c.Amount.String()
	}
	return json.Marshal(claimRecordJSON{
		Claimer:       c.Claimer,
		Faucet:        c.Faucet,
		Amount:        amount,
		TxHash:        c.TxHash,
		NetworkName:   c.NetworkName,
		ChainID:       c.ChainID,
		Timestamp:     c.Timestamp,
		TokenSymbol:   c.TokenSymbol,
		TokenDecimals: c.TokenDecimals,
		Native:        c.Native,
		FaucetName:    c.FaucetName,
		Source:        c.Source,
	})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (c *ClaimRecord) UnmarshalJSON(data []byte) error {
	var raw claimRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, ok := new(big.Int).SetString(raw.Amount, 10)
	if !ok {
		return errors.Wrapf(commonerrors.ErrMalformedRecord, "invalid amount %q", raw.Amount)
	}

	*c = ClaimRecord{
		Claimer:       raw.Claimer,
		Faucet:        raw.Faucet,
		Amount:        amount,
		TxHash:        raw.TxHash,
		NetworkName:   raw.NetworkName,
		ChainID:       raw.ChainID,
		Timestamp:     raw.Timestamp,
		TokenSymbol:   raw.TokenSymbol,
		TokenDecimals: raw.TokenDecimals,
		Native:        raw.Native,
		FaucetName:    raw.FaucetName,
		Source:        raw.Source,
	}
	return nil
}

// SourceBatch is the result of reading one contract. Each concurrent unit of work
// produces exactly one batch, successful or not, so failures never cross task boundaries.
//
// Fields:
// - Source: the kind of source that produced the batch.
// - ChainID: the chain the contract lives on.
// - Origin: the contract address that was read.
// - Records: the validated records.
// - Dropped: how many rows failed validation.
// - Err: set when the contract could not be read.
type SourceBatch struct {
	Source  SourceKind
	ChainID uint64
	Origin  string
	Records []ClaimRecord
	Dropped int
	Err     error
}

// Failed reports whether the batch carries an error.
func (b SourceBatch) Failed() bool {
	return b.Err != nil
}
