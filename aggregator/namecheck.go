package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NameChecker looks for an existing faucet with a given name on every factory of a network.
type NameChecker struct {
	options NameCheckOptions
	logger  *logrus.Logger
	wait    func(ctx context.Context, d time.Duration) error
}

// NewNameChecker creates a name checker.
func NewNameChecker(options NameCheckOptions, logger *logrus.Logger) *NameChecker {
	return &NameChecker{
		options: options.withDefaults(),
		logger:  logger,
		wait:    sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// factoryScan is the outcome of checking one factory.
type factoryScan struct {
	match    *contracts.FaucetDetails
	partial  bool
	warnings []string
}

// Check reports whether a faucet named name exists on the chain. The comparison
// ignores case and surrounding whitespace. Factories that can not be read, or are
// only sampled, make the result partial instead of failing it.
func (n *NameChecker) Check(ctx context.Context, chain types.Chain, name string) (*types.NameCheckResult, error) {
	wanted := normalizeName(name)
	if wanted == "" {
		return nil, errors.New("faucet name is empty")
	}

	descriptor := chain.Descriptor()
	result := &types.NameCheckResult{ChainID: descriptor.ChainID}

	for _, factory := range descriptor.Factories {
		logger := n.logger.WithFields(logrus.Fields{
			"chain":   descriptor.Name,
			"factory": factory.Address,
		})

		scan := n.checkFactory(ctx, chain, factory.Address, wanted, logger)
		result.Warnings = append(result.Warnings, scan.warnings...)
		result.Partial = result.Partial || scan.partial

		if scan.match != nil {
			result.Exists = true
			result.Factory = factory.Address
			result.Faucet = strings.ToLower(scan.match.FaucetAddress.Hex())
			result.ExistingName = scan.match.Name
			return result, nil
		}
	}

	return result, nil
}

func (n *NameChecker) checkFactory(
	ctx context.Context,
	chain types.Chain,
	address string,
	wanted string,
	logger *logrus.Entry,
) factoryScan {
	exists, err := chain.CodeExists(ctx, address)
	if err != nil {
		logger.WithError(err).Warn("Failed to probe factory")
		return factoryScan{partial: true, warnings: []string{fmt.Sprintf("factory %s could not be read", address)}}
	}
	if !exists {
		logger.Debug("Factory not deployed, skipping")
		return factoryScan{}
	}

	factory := contracts.NewFactory(chain, address)

	// Bulk read, supported by recent factories.
	all, err := factory.GetAllFaucetDetails(ctx)
	if err == nil {
		return factoryScan{match: findName(all, wanted)}
	}
	logger.WithError(err).Debug("Bulk faucet details unavailable, enumerating faucets")

	faucets, err := factory.GetAllFaucets(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to list factory faucets")
		return factoryScan{partial: true, warnings: []string{fmt.Sprintf("factory %s could not be read", address)}}
	}

	scan := factoryScan{}
	addresses := make([]string, 0, len(faucets))
	for _, f := range faucets {
		addresses = append(addresses, f.Hex())
	}

	if len(addresses) > n.options.SampleThreshold {
		scan.partial = true
		scan.warnings = append(scan.warnings, fmt.Sprintf(
			"partial validation: factory %s holds %d faucets, only the first %d were checked",
			address, len(addresses), n.options.SampleSize,
		))
		addresses = addresses[:n.options.SampleSize]
	}

	failed := 0
	for start := 0; start < len(addresses); start += n.options.BatchSize {
		if start > 0 {
			if err := n.wait(ctx, n.options.BatchDelay); err != nil {
				scan.partial = true
				scan.warnings = append(scan.warnings, fmt.Sprintf("factory %s check interrupted: %v", address, err))
				return scan
			}
		}

		end := start + n.options.BatchSize
		if end > len(addresses) {
			end = len(addresses)
		}

		results, err := factory.BatchFaucetDetails(ctx, addresses[start:end])
		if err != nil {
			logger.WithError(err).Warn("Failed to read faucet details batch")
			failed += end - start
			continue
		}

		details := make([]contracts.FaucetDetails, 0, len(results))
		for _, res := range results {
			if res.Err != nil {
				failed++
				continue
			}
			details = append(details, res.Details)
		}
		if match := findName(details, wanted); match != nil {
			scan.match = match
			return scan
		}
	}

	if failed > 0 {
		scan.partial = true
		scan.warnings = append(scan.warnings, fmt.Sprintf("partial validation: %d faucets of factory %s could not be read", failed, address))
	}
	return scan
}

func findName(details []contracts.FaucetDetails, wanted string) *contracts.FaucetDetails {
	for i := range details {
		if normalizeName(details[i].Name) == wanted {
			return &details[i]
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
