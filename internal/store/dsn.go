package store

import "strings"

// DSNType identifies the storage backend a DSN refers to.
type DSNType string

const (
	// DSNTypePostgres indicates a PostgreSQL connection string.
	DSNTypePostgres DSNType = "postgres"
	// DSNTypeSQLite indicates a SQLite file path.
	DSNTypeSQLite DSNType = "sqlite"
)

// DetectDSNType classifies a DSN. PostgreSQL URLs and key-value DSNs are
// recognized by shape; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) DSNType {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DSNTypePostgres
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return DSNTypePostgres
	}
	return DSNTypeSQLite
}
