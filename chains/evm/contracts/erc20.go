package contracts

import (
	"bytes"
	"context"
	"strings"

	"github.com/ClipFinance/faucet-lib/chains/evm/abis"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/pkg/errors"
)

// TokenSymbol reads an ERC-20 symbol. Tokens returning bytes32 instead of string are supported.
func TokenSymbol(ctx context.Context, reader types.ContractReader, token string) (string, error) {
	data, err := abis.ERC20.Pack("symbol")
	if err != nil {
		return "", errors.Wrap(err, "failed to pack symbol")
	}

	raw, err := reader.CallContract(ctx, token, data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to call symbol on %s", token)
	}

	var symbol string
	if out, err := unpack(abis.ERC20, "symbol", raw); err == nil {
		symbol, err = convert[string](out[0])
		if err != nil {
			return "", err
		}
	} else {
		out, err := unpack(abis.ERC20Bytes32, "symbol", raw)
		if err != nil {
			return "", err
		}
		b, err := convert[[32]byte](out[0])
		if err != nil {
			return "", err
		}
		symbol = string(bytes.TrimRight(b[:], "\x00"))
	}

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", errors.Wrapf(commonerrors.ErrMethodUnsupported, "empty symbol for %s", token)
	}
	return symbol, nil
}

// TokenDecimals reads ERC-20 decimals and validates the supported range.
func TokenDecimals(ctx context.Context, reader types.ContractReader, token string) (uint8, error) {
	out, err := call(ctx, reader, abis.ERC20, token, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, err := convert[uint8](out[0])
	if err != nil {
		return 0, err
	}
	if !utils.ValidDecimals(int(decimals)) {
		return 0, errors.Wrapf(commonerrors.ErrMalformedRecord, "decimals %d out of range for %s", decimals, token)
	}
	return decimals, nil
}
