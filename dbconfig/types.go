package dbconfig

import (
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/pkg/errors"
)

var (
	ErrChainNotFound   = errors.New("chain not found")
	ErrInvalidChainID  = commonerrors.ErrInvalidChainID
	ErrDatabaseConnect = commonerrors.ErrDatabaseConnect
)
