package errors

import "github.com/pkg/errors"

var (
	ErrNetworkNotFound      = errors.New("network not found")
	ErrInvalidChainID       = errors.New("invalid chain id")
	ErrDatabaseConnect      = errors.New("failed to connect to database")
	ErrInvalidConfig        = errors.New("invalid network configuration")
	ErrNetworkExists        = errors.New("network already exists in registry")
	ErrFactoryNotProvided   = errors.New("chain factory not provided")
	ErrInvalidChainType     = errors.New("invalid chain type")
	ErrNotImplemented       = errors.New("functionality not implemented")
	ErrEndpointUnavailable  = errors.New("rpc endpoint unavailable")
	ErrContractNotDeployed  = errors.New("contract not deployed")
	ErrMethodUnsupported    = errors.New("contract method unsupported or reverted")
	ErrMalformedRecord      = errors.New("malformed record")
	ErrCacheMiss            = errors.New("cache miss")
	ErrMetadataUnresolved   = errors.New("metadata could not be resolved")
	ErrNoEndpointsAvailable = errors.New("no rpc endpoints configured")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
