package dbconfig

import (
	"context"

	"github.com/ClipFinance/faucet-lib/dbconfig/models"
	"github.com/pkg/errors"
)

// GetTokensByChainID returns the well-known tokens of a chain, including the native
// asset row flagged with native = true.
func (r *DBConfig) GetTokensByChainID(ctx context.Context, chainID uint64) ([]models.Token, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, chain_id, address, symbol, decimals, native
        FROM chain_tokens 
        WHERE chain_id = $1
        ORDER BY native DESC, symbol ASC
    `, chainID)
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}
	defer rows.Close()

	var tokens []models.Token
	for rows.Next() {
		var token models.Token
		if err := rows.Scan(
			&token.ID,
			&token.ChainID,
			&token.Address,
			&token.Symbol,
			&token.Decimals,
			&token.Native,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}

	return tokens, nil
}
