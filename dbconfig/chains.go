package dbconfig

import (
	"context"
	"database/sql"

	"github.com/ClipFinance/faucet-lib/dbconfig/models"
	"github.com/pkg/errors"
)

const chainColumns = `
          id,
          chain_id,
          name,
          chain_type,
          storage_address,
          color,
          active,
          created_at,
          updated_at
      FROM chains`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChain(row rowScanner) (models.Chain, error) {
	var chain models.Chain
	var chainType sql.NullString
	var storageAddress sql.NullString
	var color sql.NullString

	err := row.Scan(
		&chain.ID,
		&chain.ChainID,
		&chain.Name,
		&chainType,
		&storageAddress,
		&color,
		&chain.Active,
		&chain.CreatedAt,
		&chain.UpdatedAt,
	)
	if err != nil {
		return chain, err
	}

	if chainType.Valid {
		chain.Type = chainType.String
	}
	if storageAddress.Valid {
		chain.StorageAddress = storageAddress.String
	}
	if color.Valid {
		chain.Color = color.String
	}
	return chain, nil
}

// GetChains returns all chains from the database, optionally filtering by active status.
func (r *DBConfig) GetChains(ctx context.Context, activeOnly bool) ([]models.Chain, error) {
	query := "SELECT" + chainColumns

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY chain_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}
	defer rows.Close()

	var chains []models.Chain
	for rows.Next() {
		chain, err := scanChain(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan chain")
		}
		chains = append(chains, chain)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}

	return chains, nil
}

// GetChainByID returns a single chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier for the chain.
//
// Returns:
// - *models.Chain: the chain row.
// - error: ErrChainNotFound if no row matches, or an error if the query fails.
func (r *DBConfig) GetChainByID(ctx context.Context, chainID uint64) (*models.Chain, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	chain, err := scanChain(r.db.QueryRowContext(ctx, "SELECT"+chainColumns+" WHERE chain_id = $1", chainID))
	if err == sql.ErrNoRows {
		return nil, ErrChainNotFound
	}
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}

	return &chain, nil
}
