package main

import (
	"context"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/spf13/cobra"
)

func newRefreshCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run an aggregation cycle and print the resulting view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := parseChainIDs(flags.networks)
			if err != nil {
				return err
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				view, err := e.aggregator.Refresh(ctx, ids)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}

type viewOutput struct {
	Freshness string           `json:"freshness"`
	View      *types.ClaimView `json:"view"`
}

func newViewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the cached view, refreshing it when missing or stale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := parseChainIDs(flags.networks)
			if err != nil {
				return err
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				view, freshness, err := e.aggregator.View(ctx, ids)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), viewOutput{Freshness: freshness.String(), View: view})
			})
		},
	}
}

func newCheckNameCmd(flags *globalFlags) *cobra.Command {
	var chainID uint64

	cmd := &cobra.Command{
		Use:   "check-name NAME",
		Short: "Check whether a faucet with the given name exists on a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChain(chainID); err != nil {
				return err
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				result, err := e.aggregator.CheckNameExists(ctx, chainID, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().Uint64Var(&chainID, "chain", 0, "chain id of the network to search")
	return cmd
}

type networkOutput struct {
	ChainID     uint64                    `json:"chainId"`
	Name        string                    `json:"name"`
	Color       string                    `json:"color,omitempty"`
	Storage     string                    `json:"storageAddress,omitempty"`
	Factories   []types.FactoryDescriptor `json:"factories"`
	NativeToken types.TokenDescriptor     `json:"nativeToken"`
	Endpoints   int                       `json:"endpoints"`
}

func newNetworksCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, flags, func(_ context.Context, e *engine) error {
				var out []networkOutput
				for _, chain := range e.registry.All() {
					d := chain.Descriptor()
					out = append(out, networkOutput{
						ChainID:     d.ChainID,
						Name:        d.Name,
						Color:       d.Color,
						Storage:     d.StorageAddress,
						Factories:   d.Factories,
						NativeToken: d.NativeToken,
						Endpoints:   len(d.RPCURLs),
					})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}
