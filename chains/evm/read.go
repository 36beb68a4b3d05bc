package evm

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/big"
	"strings"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// revertErrorCode is the JSON-RPC error code nodes use for reverted calls.
const revertErrorCode = 3

// callFunc performs one RPC interaction against a single endpoint.
type callFunc func(ctx context.Context, rpcClient *rpc.Client, client *ethclient.Client) error

// CodeExists reports whether contract bytecode is deployed at the address.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the contract address to probe.
//
// Returns:
// - bool: true if bytecode exists at the address.
// - error: ErrEndpointUnavailable if no endpoint answered.
func (e *evm) CodeExists(ctx context.Context, address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, errors.Wrapf(commonerrors.ErrInvalidConfig, "invalid address %q", address)
	}

	var code []byte
	err := e.do(ctx, "eth_getCode", func(ctx context.Context, _ *rpc.Client, client *ethclient.Client) error {
		var err error
		code, err = client.CodeAt(ctx, common.HexToAddress(address), nil)
		return err
	})
	if err != nil {
		return false, err
	}

	return len(code) > 0, nil
}

// CallContract executes a read-only call against the latest block.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the contract address.
// - data: ABI encoded call data.
//
// Returns:
// - []byte: the raw return data.
// - error: ErrMethodUnsupported if the call reverted or returned nothing,
// ErrEndpointUnavailable if no endpoint answered.
func (e *evm) CallContract(ctx context.Context, address string, data []byte) ([]byte, error) {
	to := common.HexToAddress(address)

	var result []byte
	err := e.do(ctx, "eth_call", func(ctx context.Context, _ *rpc.Client, client *ethclient.Client) error {
		var err error
		result, err = client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, errors.Wrapf(commonerrors.ErrMethodUnsupported, "empty result from %s", address)
	}

	return result, nil
}

// BatchCall executes several read-only calls in one JSON-RPC batch.
// A failure of a single call is reported in its CallResult, the batch only fails
// as a whole when no endpoint accepted it.
//
// Parameters:
// - ctx: the context for managing the request.
// - calls: the calls to execute.
//
// Returns:
// - []types.CallResult: one result per call, in order.
// - error: ErrEndpointUnavailable if no endpoint answered.
func (e *evm) BatchCall(ctx context.Context, calls []types.CallRequest) ([]types.CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	results := make([]hexutil.Bytes, len(calls))
	elems := make([]rpc.BatchElem, len(calls))

	err := e.do(ctx, "eth_call batch", func(ctx context.Context, rpcClient *rpc.Client, _ *ethclient.Client) error {
		for i, call := range calls {
			results[i] = nil
			elems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{
					map[string]interface{}{
						"to":   common.HexToAddress(call.To),
						"data": hexutil.Bytes(call.Data),
					},
					"latest",
				},
				Result: &results[i],
			}
		}
		return rpcClient.BatchCallContext(ctx, elems)
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.CallResult, len(calls))
	for i := range elems {
		switch {
		case elems[i].Error != nil:
			out[i].Err = errors.Wrapf(commonerrors.ErrMethodUnsupported, "%s: %v", calls[i].To, elems[i].Error)
		case len(results[i]) == 0:
			out[i].Err = errors.Wrapf(commonerrors.ErrMethodUnsupported, "empty result from %s", calls[i].To)
		default:
			out[i].Data = results[i]
		}
	}

	return out, nil
}

// BlockNumber returns the latest block number.
func (e *evm) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := e.do(ctx, "eth_blockNumber", func(ctx context.Context, _ *rpc.Client, client *ethclient.Client) error {
		var err error
		number, err = client.BlockNumber(ctx)
		return err
	})
	return number, err
}

// BlockTimestamp returns the unix timestamp of the given block.
func (e *evm) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	var timestamp uint64
	err := e.do(ctx, "eth_getBlockByNumber", func(ctx context.Context, _ *rpc.Client, client *ethclient.Client) error {
		header, err := client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return err
		}
		timestamp = header.Time
		return nil
	})
	return timestamp, err
}

// do runs fn against the preferred endpoint and fails over to the next ones in order.
// Reverted calls are not endpoint failures and are returned immediately.
func (e *evm) do(ctx context.Context, op string, fn callFunc) error {
	start := e.activeIndex()
	var errs []error

	for i := 0; i < len(e.endpoints); i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(commonerrors.ErrEndpointUnavailable, "%s: %v", op, err)
		}

		idx := (start + i) % len(e.endpoints)
		ep := e.endpoints[idx]

		err := e.callEndpoint(ctx, ep, fn)
		if err == nil {
			if idx != start {
				e.setActive(idx)
				e.logger.WithFields(logrus.Fields{
					"chain":    e.descriptor.Name,
					"endpoint": ep.url,
				}).Info("Switched to fallback RPC endpoint")
			}
			return nil
		}

		if isCallError(err) {
			return errors.Wrapf(commonerrors.ErrMethodUnsupported, "%s: %v", op, err)
		}

		e.logger.WithFields(logrus.Fields{
			"chain":    e.descriptor.Name,
			"endpoint": ep.url,
			"method":   op,
		}).WithError(err).Debug("RPC call failed")

		errs = append(errs, fmt.Errorf("%s: %w", ep.url, err))
	}

	return errors.Wrapf(commonerrors.ErrEndpointUnavailable, "%s on %s: %v", op, e.descriptor.Name, stderrors.Join(errs...))
}

// callEndpoint applies the rate limit and the per-call timeout around fn.
func (e *evm) callEndpoint(ctx context.Context, ep *endpoint, fn callFunc) error {
	if ep.limiter != nil {
		if err := ep.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.options.CallTimeout)
	defer cancel()

	rpcClient, client, err := ep.clients(callCtx)
	if err != nil {
		return err
	}

	return fn(callCtx, rpcClient, client)
}

// isCallError reports whether err was produced by the contract rather than the endpoint.
func isCallError(err error) bool {
	var rpcErr rpc.Error
	if stderrors.As(err, &rpcErr) {
		if rpcErr.ErrorCode() == revertErrorCode {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") ||
		strings.Contains(msg, "invalid opcode") ||
		strings.Contains(msg, "abi: attempting to unmarshall an empty string")
}
