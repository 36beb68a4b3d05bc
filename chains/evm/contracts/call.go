// Package contracts binds the faucet, factory, storage and token ABIs to typed Go results.
// Every value leaving this package has been decoded and validated against the ABI.
package contracts

import (
	"context"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// call packs the method call, executes it and unpacks the outputs.
// A response that does not decode against the ABI is reported as ErrMethodUnsupported.
func call(
	ctx context.Context,
	reader types.ContractReader,
	contract *abi.ABI,
	address string,
	method string,
	args ...interface{},
) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	raw, err := reader.CallContract(ctx, address, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s on %s", method, address)
	}

	return unpack(contract, method, raw)
}

// unpack decodes the return data of method.
func unpack(contract *abi.ABI, method string, raw []byte) ([]interface{}, error) {
	out, err := contract.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrMethodUnsupported, "failed to unpack %s: %v", method, err)
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(commonerrors.ErrMethodUnsupported, "no outputs for %s", method)
	}
	return out, nil
}

// convert copies an ABI output into a typed value. ConvertType panics on a shape
// mismatch, which is turned into ErrMethodUnsupported.
func convert[T any](value interface{}) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(commonerrors.ErrMethodUnsupported, "unexpected output shape: %v", r)
		}
	}()

	converted, ok := abi.ConvertType(value, new(T)).(*T)
	if !ok {
		return result, errors.Wrapf(commonerrors.ErrMethodUnsupported, "unexpected output type %T", value)
	}
	return *converted, nil
}
