package contracts

import (
	"context"
	"strings"

	"github.com/ClipFinance/faucet-lib/chains/evm/abis"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// FaucetIdentity is what can be read from a faucet contract about itself.
// Token and Native are only meaningful when TokenKnown is set.
type FaucetIdentity struct {
	Variant    string
	Name       string
	Token      common.Address
	Native     bool
	TokenKnown bool
}

// FaucetVariant reads the identity of one historical faucet contract shape.
type FaucetVariant interface {
	// Name identifies the contract shape.
	Name() string
	// ReadIdentity reads the faucet identity. It fails with ErrMethodUnsupported when
	// the contract does not implement this shape or reports an empty name.
	ReadIdentity(ctx context.Context, reader types.ContractReader, address string) (FaucetIdentity, error)
}

// methodVariant reads name, token and native flag through three separate getters.
type methodVariant struct {
	name         string
	contract     *abi.ABI
	nameMethod   string
	tokenMethod  string
	nativeMethod string
}

func (v methodVariant) Name() string {
	return v.name
}

func (v methodVariant) ReadIdentity(ctx context.Context, reader types.ContractReader, address string) (FaucetIdentity, error) {
	out, err := call(ctx, reader, v.contract, address, v.nameMethod)
	if err != nil {
		return FaucetIdentity{}, err
	}
	name, err := convert[string](out[0])
	if err != nil {
		return FaucetIdentity{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return FaucetIdentity{}, errors.Wrapf(commonerrors.ErrMethodUnsupported, "%s: empty name", v.name)
	}

	identity := FaucetIdentity{Variant: v.name, Name: name}

	// Token and native flag are best effort, a faucet with a readable name is already a match.
	tokenOut, tokenErr := call(ctx, reader, v.contract, address, v.tokenMethod)
	nativeOut, nativeErr := call(ctx, reader, v.contract, address, v.nativeMethod)
	if tokenErr == nil && nativeErr == nil {
		token, tErr := convert[common.Address](tokenOut[0])
		native, nErr := convert[bool](nativeOut[0])
		if tErr == nil && nErr == nil {
			identity.Token = token
			identity.Native = native
			identity.TokenKnown = true
		}
	}

	return identity, nil
}

// metadataVariant reads everything through a single multi-output getter.
type metadataVariant struct{}

func (metadataVariant) Name() string {
	return "metadata"
}

func (v metadataVariant) ReadIdentity(ctx context.Context, reader types.ContractReader, address string) (FaucetIdentity, error) {
	out, err := call(ctx, reader, abis.MetadataFaucet, address, "getFaucetMetadata")
	if err != nil {
		return FaucetIdentity{}, err
	}
	if len(out) != 3 {
		return FaucetIdentity{}, errors.Wrapf(commonerrors.ErrMethodUnsupported, "getFaucetMetadata returned %d values", len(out))
	}

	name, err := convert[string](out[0])
	if err != nil {
		return FaucetIdentity{}, err
	}
	token, err := convert[common.Address](out[1])
	if err != nil {
		return FaucetIdentity{}, err
	}
	native, err := convert[bool](out[2])
	if err != nil {
		return FaucetIdentity{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return FaucetIdentity{}, errors.Wrapf(commonerrors.ErrMethodUnsupported, "%s: empty name", v.Name())
	}

	return FaucetIdentity{
		Variant:    v.Name(),
		Name:       name,
		Token:      token,
		Native:     native,
		TokenKnown: true,
	}, nil
}

// FaucetVariants lists every known faucet contract shape.
var FaucetVariants = []FaucetVariant{
	methodVariant{
		name:         "faucet",
		contract:     abis.Faucet,
		nameMethod:   "name",
		tokenMethod:  "token",
		nativeMethod: "isEther",
	},
	methodVariant{
		name:         "legacy",
		contract:     abis.LegacyFaucet,
		nameMethod:   "faucetName",
		tokenMethod:  "tokenAddress",
		nativeMethod: "isNativeToken",
	},
	metadataVariant{},
}
