package chainmanager

import commonerrors "github.com/ClipFinance/faucet-lib/common/errors"

var (
	ErrNotImplemented = commonerrors.ErrNotImplemented
	ErrNetworkExists  = commonerrors.ErrNetworkExists
	ErrInvalidConfig  = commonerrors.ErrInvalidConfig
)
