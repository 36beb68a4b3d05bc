package main

import (
	"context"

	"github.com/ClipFinance/faucet-lib/backend"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/ClipFinance/faucet-lib/metadata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMetadataCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Resolve, invalidate or register faucet metadata",
	}
	cmd.AddCommand(
		newMetadataResolveCmd(flags),
		newMetadataInvalidateCmd(flags),
		newMetadataRegisterCmd(flags),
	)
	return cmd
}

func faucetArg(arg string) (string, error) {
	faucet := utils.NormalizeAddress(arg)
	if faucet == "" {
		return "", errors.Errorf("invalid faucet address %q", arg)
	}
	return faucet, nil
}

func newMetadataResolveCmd(flags *globalFlags) *cobra.Command {
	var (
		chainID uint64
		native  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve FAUCET",
		Short: "Resolve the name and token of a faucet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChain(chainID); err != nil {
				return err
			}
			faucet, err := faucetArg(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				chain, err := e.chain(chainID)
				if err != nil {
					return err
				}
				meta := e.resolver.Resolve(ctx, metadata.Request{Chain: chain, Faucet: faucet, Native: native})
				return writeJSON(cmd.OutOrStdout(), meta)
			})
		},
	}
	cmd.Flags().Uint64Var(&chainID, "chain", 0, "chain id of the faucet's network")
	cmd.Flags().BoolVar(&native, "native", false, "the faucet distributes the native asset")
	return cmd
}

func newMetadataInvalidateCmd(flags *globalFlags) *cobra.Command {
	var chainID uint64

	cmd := &cobra.Command{
		Use:   "invalidate FAUCET",
		Short: "Drop the cached metadata of a faucet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChain(chainID); err != nil {
				return err
			}
			faucet, err := faucetArg(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				e.resolver.Invalidate(ctx, chainID, faucet)
				return writeJSON(cmd.OutOrStdout(), map[string]string{"invalidated": metadata.Key(chainID, faucet)})
			})
		},
	}
	cmd.Flags().Uint64Var(&chainID, "chain", 0, "chain id of the faucet's network")
	return cmd
}

func newMetadataRegisterCmd(flags *globalFlags) *cobra.Command {
	var registration backend.FaucetRegistration

	cmd := &cobra.Command{
		Use:   "register FAUCET",
		Short: "Save faucet metadata to the registration service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChain(registration.ChainID); err != nil {
				return err
			}
			faucet, err := faucetArg(args[0])
			if err != nil {
				return err
			}
			registration.FaucetAddress = faucet
			if registration.OwnerAddress = utils.NormalizeAddress(registration.OwnerAddress); registration.OwnerAddress == "" {
				return errors.New("--owner must be a valid address")
			}

			return withEngine(cmd, flags, func(ctx context.Context, e *engine) error {
				if e.backend == nil {
					return errors.New("no backend configured")
				}
				if err := e.backend.SaveFaucetMetadata(ctx, registration); err != nil {
					return err
				}
				e.resolver.Invalidate(ctx, registration.ChainID, faucet)
				return writeJSON(cmd.OutOrStdout(), registration)
			})
		},
	}
	cmd.Flags().Uint64Var(&registration.ChainID, "chain", 0, "chain id of the faucet's network")
	cmd.Flags().StringVar(&registration.OwnerAddress, "owner", "", "faucet owner address")
	cmd.Flags().StringVar(&registration.FaucetType, "type", "dropcode", "faucet type: dropcode, droplist or custom")
	cmd.Flags().StringVar(&registration.Name, "name", "", "faucet display name")
	cmd.Flags().StringVar(&registration.Description, "description", "", "faucet description")
	cmd.Flags().StringVar(&registration.ImageURL, "image-url", "", "faucet image url")
	return cmd
}
