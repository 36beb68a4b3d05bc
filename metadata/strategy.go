package metadata

import (
	"context"

	"github.com/ClipFinance/faucet-lib/cache"
	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/pkg/errors"
)

// Request identifies the faucet to resolve.
//
// Fields:
// - Chain: the chain the faucet lives on.
// - Faucet: the faucet contract address.
// - Native: true if a claim already showed the faucet distributes the native asset.
type Request struct {
	Chain  types.Chain
	Faucet string
	Native bool
}

// Strategy is one link of the resolution chain. A strategy either returns a complete
// value or an error, in which case the next strategy is tried.
type Strategy interface {
	Name() types.ResolutionSource
	Resolve(ctx context.Context, req Request) (types.FaucetMetadata, error)
}

// liveStrategy reads the faucet contract with every known contract shape at once.
type liveStrategy struct {
	variants []contracts.FaucetVariant
	tokens   *TokenResolver
}

func (s *liveStrategy) Name() types.ResolutionSource {
	return types.ResolvedLive
}

type variantResult struct {
	identity contracts.FaucetIdentity
	err      error
}

func (s *liveStrategy) Resolve(ctx context.Context, req Request) (types.FaucetMetadata, error) {
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan variantResult, len(s.variants))
	for _, variant := range s.variants {
		go func(variant contracts.FaucetVariant) {
			identity, err := variant.ReadIdentity(readCtx, req.Chain, req.Faucet)
			results <- variantResult{identity: identity, err: err}
		}(variant)
	}

	var identity contracts.FaucetIdentity
	found := false
	var lastErr error
	for range s.variants {
		res := <-results
		if res.err != nil {
			lastErr = res.err
			continue
		}
		identity, found = res.identity, true
		break
	}
	if !found {
		if lastErr == nil {
			lastErr = commonerrors.ErrMethodUnsupported
		}
		return types.FaucetMetadata{}, errors.Wrapf(lastErr, "no faucet variant matched %s", req.Faucet)
	}
	cancel()

	descriptor := req.Chain.Descriptor()
	meta := types.FaucetMetadata{
		ChainID: descriptor.ChainID,
		Faucet:  utils.NormalizeAddress(req.Faucet),
		Name:    identity.Name,
		Variant: identity.Variant,
		Native:  req.Native,
		Source:  types.ResolvedLive,
	}

	token := types.TokenDescriptor{Symbol: types.PlaceholderTokenSymbol, Decimals: types.PlaceholderTokenDecimals}
	switch {
	case identity.TokenKnown && (identity.Native || utils.IsZeroAddress(identity.Token.Hex())):
		meta.Native = true
		token = descriptor.NativeToken
	case identity.TokenKnown:
		meta.TokenAddress = utils.NormalizeAddress(identity.Token.Hex())
		resolved, err := s.tokens.Resolve(ctx, req.Chain, meta.TokenAddress)
		switch {
		case err == nil:
			token = resolved
		case !permanentTokenError(err):
			return types.FaucetMetadata{}, errors.Wrapf(err, "failed to resolve token %s", meta.TokenAddress)
		}
	case req.Native:
		token = descriptor.NativeToken
	}

	meta.TokenSymbol = token.Symbol
	meta.TokenDecimals = token.Decimals
	return meta, nil
}

// permanentTokenError reports whether the token contract itself is unreadable, in
// which case the placeholder token is part of the live answer.
func permanentTokenError(err error) bool {
	return errors.Is(err, commonerrors.ErrMethodUnsupported) || errors.Is(err, commonerrors.ErrMalformedRecord)
}

// cacheStrategy serves a value persisted by an earlier live read.
type cacheStrategy struct {
	layer *cache.Layer
}

func (s *cacheStrategy) Name() types.ResolutionSource {
	return types.ResolvedCache
}

func (s *cacheStrategy) Resolve(ctx context.Context, req Request) (types.FaucetMetadata, error) {
	key := Key(req.Chain.Descriptor().ChainID, req.Faucet)
	if s.layer == nil {
		return types.FaucetMetadata{}, errors.Wrap(commonerrors.ErrCacheMiss, key)
	}

	var meta types.FaucetMetadata
	freshness, err := s.layer.Get(ctx, key, &meta)
	if err != nil {
		return types.FaucetMetadata{}, err
	}
	if freshness == types.Missing || meta.Name == "" {
		return types.FaucetMetadata{}, errors.Wrap(commonerrors.ErrCacheMiss, key)
	}
	if !utils.ValidDecimals(int(meta.TokenDecimals)) {
		return types.FaucetMetadata{}, errors.Wrapf(commonerrors.ErrMalformedRecord, "cached decimals %d", meta.TokenDecimals)
	}

	meta.Source = types.ResolvedCache
	return meta, nil
}

// nativeStrategy applies to faucets known to distribute the network's native asset.
type nativeStrategy struct{}

func (nativeStrategy) Name() types.ResolutionSource {
	return types.ResolvedNative
}

func (nativeStrategy) Resolve(_ context.Context, req Request) (types.FaucetMetadata, error) {
	if !req.Native {
		return types.FaucetMetadata{}, errors.Wrap(commonerrors.ErrMetadataUnresolved, "faucet does not distribute the native asset")
	}

	descriptor := req.Chain.Descriptor()
	if descriptor.NativeToken.Symbol == "" {
		return types.FaucetMetadata{}, errors.Wrapf(commonerrors.ErrMetadataUnresolved, "no native token for %s", descriptor.Name)
	}

	return types.FaucetMetadata{
		ChainID:       descriptor.ChainID,
		Faucet:        utils.NormalizeAddress(req.Faucet),
		Name:          PlaceholderName(req.Faucet),
		TokenSymbol:   descriptor.NativeToken.Symbol,
		TokenDecimals: descriptor.NativeToken.Decimals,
		Native:        true,
		Source:        types.ResolvedNative,
	}, nil
}

// placeholderStrategy always succeeds.
type placeholderStrategy struct{}

func (placeholderStrategy) Name() types.ResolutionSource {
	return types.ResolvedPlaceholder
}

func (placeholderStrategy) Resolve(_ context.Context, req Request) (types.FaucetMetadata, error) {
	return Placeholder(req.Chain.Descriptor().ChainID, req.Faucet), nil
}

// Placeholder synthesizes metadata for a faucet nothing is known about.
func Placeholder(chainID uint64, faucet string) types.FaucetMetadata {
	normalized := utils.NormalizeAddress(faucet)
	if normalized == "" {
		normalized = faucet
	}
	return types.FaucetMetadata{
		ChainID:       chainID,
		Faucet:        normalized,
		Name:          PlaceholderName(faucet),
		TokenSymbol:   types.PlaceholderTokenSymbol,
		TokenDecimals: types.PlaceholderTokenDecimals,
		Source:        types.ResolvedPlaceholder,
	}
}

// PlaceholderName returns "Faucet 0x1234…abcd" for the address.
func PlaceholderName(faucet string) string {
	return "Faucet " + utils.ShortAddress(faucet)
}
