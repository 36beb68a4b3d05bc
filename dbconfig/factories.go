package dbconfig

import (
	"context"

	"github.com/ClipFinance/faucet-lib/dbconfig/models"
	"github.com/pkg/errors"
)

// GetFactoriesByChainID returns the factory contracts deployed on a chain.
func (r *DBConfig) GetFactoriesByChainID(ctx context.Context, chainID uint64, activeOnly bool) ([]models.Factory, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	query := `
        SELECT id, chain_id, address, factory_type, active, created_at
        FROM factories
        WHERE chain_id = $1
    `

	args := []interface{}{chainID}
	if activeOnly {
		query += " AND active = $2"
		args = append(args, true)
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}
	defer rows.Close()

	var factories []models.Factory
	for rows.Next() {
		var factory models.Factory
		if err := rows.Scan(
			&factory.ID,
			&factory.ChainID,
			&factory.Address,
			&factory.Type,
			&factory.Active,
			&factory.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan factory")
		}
		factories = append(factories, factory)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}

	return factories, nil
}
