// Package evmtest provides an in-memory contract reader that answers calls with
// real ABI encoded data. It is shared by the tests of every package reading contracts.
package evmtest

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/ClipFinance/faucet-lib/chainmanager"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type response struct {
	data []byte
	err  error
}

// Reader is a scripted types.ContractReader and types.BlockReader.
type Reader struct {
	mu        sync.Mutex
	code      map[string]bool
	codeErr   map[string]error
	responses map[string]response
	failAll   error
	calls     map[string]int
	batches   []int
	block     uint64
}

// NewReader creates an empty reader. Unscripted calls revert.
func NewReader() *Reader {
	return &Reader{
		code:      make(map[string]bool),
		codeErr:   make(map[string]error),
		responses: make(map[string]response),
		calls:     make(map[string]int),
		block:     1,
	}
}

func key(address string, data []byte) string {
	return strings.ToLower(address) + "|" + hex.EncodeToString(data)
}

// WithCode marks contract bytecode as deployed at the addresses.
func (r *Reader) WithCode(addresses ...string) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range addresses {
		r.code[strings.ToLower(a)] = true
	}
	return r
}

// FailCode makes the code probe of address fail with err.
func (r *Reader) FailCode(address string, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codeErr[strings.ToLower(address)] = err
	return r
}

// FailAll makes every call fail with err, as an unreachable endpoint would.
func (r *Reader) FailAll(err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAll = err
	return r
}

// Respond scripts the answer of method called with args on address. Outputs are
// ABI encoded with the method's output arguments.
func (r *Reader) Respond(address string, contract *abi.ABI, method string, args []interface{}, outputs ...interface{}) *Reader {
	input, err := contract.Pack(method, args...)
	if err != nil {
		panic(err)
	}
	data, err := contract.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[key(address, input)] = response{data: data}
	return r
}

// RespondRaw scripts raw return data for method called with args on address.
func (r *Reader) RespondRaw(address string, contract *abi.ABI, method string, args []interface{}, data []byte) *Reader {
	input, err := contract.Pack(method, args...)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[key(address, input)] = response{data: data}
	return r
}

// Fail scripts an error for method called with args on address.
func (r *Reader) Fail(address string, contract *abi.ABI, method string, args []interface{}, err error) *Reader {
	input, packErr := contract.Pack(method, args...)
	if packErr != nil {
		panic(packErr)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[key(address, input)] = response{err: err}
	return r
}

// Calls returns how many times method was called on address with args.
func (r *Reader) Calls(address string, contract *abi.ABI, method string, args ...interface{}) int {
	input, err := contract.Pack(method, args...)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key(address, input)]
}

// BatchSizes returns the size of every batch sent, in order.
func (r *Reader) BatchSizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.batches...)
}

// CodeExists implements types.ContractReader.
func (r *Reader) CodeExists(ctx context.Context, address string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(commonerrors.ErrEndpointUnavailable, err.Error())
	}
	if r.failAll != nil {
		return false, errors.Wrap(commonerrors.ErrEndpointUnavailable, r.failAll.Error())
	}
	if err, ok := r.codeErr[strings.ToLower(address)]; ok {
		return false, err
	}
	return r.code[strings.ToLower(address)], nil
}

// CallContract implements types.ContractReader.
func (r *Reader) CallContract(ctx context.Context, address string, data []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callLocked(ctx, address, data)
}

func (r *Reader) callLocked(ctx context.Context, address string, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(commonerrors.ErrEndpointUnavailable, err.Error())
	}
	if r.failAll != nil {
		return nil, errors.Wrap(commonerrors.ErrEndpointUnavailable, r.failAll.Error())
	}

	k := key(address, data)
	r.calls[k]++

	resp, ok := r.responses[k]
	if !ok {
		return nil, errors.Wrap(commonerrors.ErrMethodUnsupported, "execution reverted")
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return append([]byte(nil), resp.data...), nil
}

// BatchCall implements types.ContractReader.
func (r *Reader) BatchCall(ctx context.Context, calls []types.CallRequest) ([]types.CallResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAll != nil {
		return nil, errors.Wrap(commonerrors.ErrEndpointUnavailable, r.failAll.Error())
	}

	r.batches = append(r.batches, len(calls))

	out := make([]types.CallResult, len(calls))
	for i, c := range calls {
		out[i].Data, out[i].Err = r.callLocked(ctx, c.To, c.Data)
	}
	return out, nil
}

// SetBlock sets the block number reported by BlockNumber.
func (r *Reader) SetBlock(number uint64) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = number
	return r
}

// BlockNumber implements types.BlockReader.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, errors.Wrap(commonerrors.ErrEndpointUnavailable, r.failAll.Error())
	}
	return r.block, nil
}

// BlockTimestamp implements types.BlockReader. Blocks are twelve seconds apart.
func (r *Reader) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, errors.Wrap(commonerrors.ErrEndpointUnavailable, r.failAll.Error())
	}
	return number * 12, nil
}

// NewChain wraps a reader into a types.Chain for the descriptor.
func NewChain(descriptor *types.NetworkDescriptor, reader *Reader) types.Chain {
	return chainmanager.NewChainBuilder(descriptor).
		WithContractReader(reader).
		WithBlockReader(reader).
		Build()
}

// Factory creates chains backed by scripted readers, keyed by chain ID.
type Factory struct {
	Readers map[uint64]*Reader
}

// CreateChain implements chainmanager.ChainCreator.
func (f *Factory) CreateChain(_ context.Context, descriptor *types.NetworkDescriptor, _ *logrus.Logger) (types.Chain, error) {
	reader, ok := f.Readers[descriptor.ChainID]
	if !ok {
		reader = NewReader()
	}
	return NewChain(descriptor, reader), nil
}

// NewRegistry builds a registry whose chains use the given readers.
func NewRegistry(logger *logrus.Logger, readers map[uint64]*Reader, descriptors ...types.NetworkDescriptor) types.ChainRegistry {
	return chainmanager.NewChainRegistryFromDescriptors(context.Background(), &Factory{Readers: readers}, descriptors, logger)
}

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(discard{})
	return logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
