// Package catalog defines the contract between the introspection engine
// and a ClickHouse server. A Catalog answers the four questions the
// engine asks: which tables exist, what columns a table has, what its
// CREATE statement looks like, and which server settings are known.
//
// Three interchangeable drivers implement the contract, one per wire
// protocol ClickHouse speaks: catalog/native (the native TCP protocol),
// catalog/mysql (the MySQL compatibility port), and catalog/postgres
// (the PostgreSQL compatibility port). All layers above this package
// talk only to the Catalog interface and never import a driver
// package directly.
package catalog

import "context"

// Catalog is the read-only window into a ClickHouse server's schema.
// Implementations are safe for concurrent use by multiple goroutines.
type Catalog interface {
	// ListTables returns the base tables and views of the connected
	// database, sorted by name.
	ListTables(ctx context.Context) ([]TableRow, error)

	// DescribeColumns returns the columns of one table in ordinal
	// position order. The compact type string arrives unparsed in
	// ColumnRow.RawType.
	DescribeColumns(ctx context.Context, table string) ([]ColumnRow, error)

	// ShowCreate returns the full CREATE statement for one table,
	// as rendered by SHOW CREATE TABLE.
	ShowCreate(ctx context.Context, table string) (string, error)

	// ListSettingNames returns the names of every setting the server
	// exposes in system.settings.
	ListSettingNames(ctx context.Context) ([]string, error)

	// Ping verifies the server is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()
}
