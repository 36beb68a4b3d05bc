package dbconfig

import (
	"context"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/ClipFinance/faucet-lib/dbconfig/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GetNetworks loads the descriptors of every active chain together with its RPCs,
// factories and tokens.
//
// Parameters:
// - ctx: the context for managing the request.
// - logger: the logger instance.
//
// Returns:
// - []types.NetworkDescriptor: one descriptor per active chain.
// - error: an error if the chains could not be listed.
func (r *DBConfig) GetNetworks(ctx context.Context, logger *logrus.Logger) ([]types.NetworkDescriptor, error) {
	chains, err := r.GetChains(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chains")
	}

	descriptors := make([]types.NetworkDescriptor, 0, len(chains))
	for _, chain := range chains {
		rpcs, err := r.GetRPCsByChainID(ctx, chain.ChainID, true)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load rpcs of chain %d", chain.ChainID)
		}
		factories, err := r.GetFactoriesByChainID(ctx, chain.ChainID, true)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load factories of chain %d", chain.ChainID)
		}
		tokens, err := r.GetTokensByChainID(ctx, chain.ChainID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load tokens of chain %d", chain.ChainID)
		}

		descriptor, dropped := BuildDescriptor(chain, rpcs, factories, tokens)
		if dropped > 0 {
			logger.WithFields(logrus.Fields{
				"chain":   chain.Name,
				"chainID": chain.ChainID,
				"dropped": dropped,
			}).Warn("Ignoring invalid rows of network")
		}
		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}

// BuildDescriptor assembles a network descriptor from its rows. Rows with invalid
// addresses or decimals are skipped and counted.
func BuildDescriptor(
	chain models.Chain,
	rpcs []models.RPC,
	factories []models.Factory,
	tokens []models.Token,
) (types.NetworkDescriptor, int) {
	dropped := 0
	descriptor := types.NetworkDescriptor{
		ChainID:   chain.ChainID,
		Name:      chain.Name,
		ChainType: types.ParseChainType(chain.Type),
		Color:     chain.Color,
	}

	if chain.StorageAddress != "" {
		if address := utils.NormalizeAddress(chain.StorageAddress); address != "" {
			descriptor.StorageAddress = address
		} else {
			dropped++
		}
	}

	for _, rpc := range rpcs {
		descriptor.RPCURLs = append(descriptor.RPCURLs, rpc.URL)
	}

	for _, factory := range factories {
		address := utils.NormalizeAddress(factory.Address)
		if address == "" {
			dropped++
			continue
		}
		descriptor.Factories = append(descriptor.Factories, types.FactoryDescriptor{
			Address: address,
			Type:    types.ParseFactoryType(factory.Type),
		})
	}

	for _, token := range tokens {
		if !utils.ValidDecimals(token.Decimals) {
			dropped++
			continue
		}
		td := types.TokenDescriptor{Symbol: token.Symbol, Decimals: uint8(token.Decimals)}
		if token.Native {
			descriptor.NativeToken = td
			continue
		}
		if td.Address = utils.NormalizeAddress(token.Address); td.Address == "" {
			dropped++
			continue
		}
		descriptor.KnownTokens = append(descriptor.KnownTokens, td)
	}

	return descriptor, dropped
}
