package dbconfig

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DBConfig reads the network directory and stores shared cache entries in Postgres.
type DBConfig struct {
	db *sql.DB
}

// NewDBConfig creates a new DBConfig instance with the provided connection string.
// The connection is established lazily by the first query.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *DBConfig: a pointer to the newly created DBConfig instance.
// - error: an error if the connection string is rejected by the driver.
func NewDBConfig(connStr string) (*DBConfig, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseConnect, err.Error())
	}
	return NewDBConfigFromDB(db), nil
}

// NewDBConfigFromDB wraps an already opened database handle.
func NewDBConfigFromDB(db *sql.DB) *DBConfig {
	return &DBConfig{db: db}
}

// Close releases the database handle.
func (r *DBConfig) Close() error {
	return r.db.Close()
}
