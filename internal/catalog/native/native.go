// Package native implements the catalog contract over ClickHouse's
// native TCP protocol.
package native

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
)

// defaultPort is the native protocol port.
const defaultPort = 9000

// Driver is a catalog.Catalog backed by clickhouse-go over the native
// TCP protocol. It is safe for concurrent use by multiple goroutines.
type Driver struct {
	conn         driver.Conn
	queryTimeout time.Duration
}

// New connects to ClickHouse using the provided Config and returns a
// Driver. It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *catalog.Config) (*Driver, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr(defaultPort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout:     cfg.ConnectTimeout,
		MaxOpenConns:    int(cfg.MaxConns),
		MaxIdleConns:    int(cfg.MinConns),
		ConnMaxLifetime: cfg.MaxConnLifetime,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to open native connection", err)
	}

	d := &Driver{conn: conn, queryTimeout: cfg.QueryTimeout}

	if err := d.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return d, nil
}

// qctx applies the configured per-query deadline, if any.
func (d *Driver) qctx(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.queryTimeout)
}

// --- catalog.Catalog implementation ---

// Ping verifies the server is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.conn.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool. Call when the application shuts down.
func (d *Driver) Close() {
	_ = d.conn.Close()
}

// ListTables returns the base tables and views of the connected database.
func (d *Driver) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	const q = `
		SELECT table_name,
		       CASE table_type WHEN 2 THEN 'v' ELSE 't' END
		FROM INFORMATION_SCHEMA.TABLES
		WHERE table_catalog = currentDatabase()
		  AND table_type IN (1, 2)
		ORDER BY table_name`

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	rows, err := d.conn.Query(ctx, q)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []catalog.TableRow
	for rows.Next() {
		var name, code string
		if err := rows.Scan(&name, &code); err != nil {
			return nil, mapError(err, "failed to scan table row")
		}
		tables = append(tables, catalog.TableRow{Name: name, Kind: catalog.KindFromCode(code)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return tables, nil
}

// DescribeColumns returns the columns of one table in ordinal position
// order. The CAST / nullIf wrappers pin the result column types so the
// scan targets stay valid across server versions.
func (d *Driver) DescribeColumns(ctx context.Context, table string) ([]catalog.ColumnRow, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       CAST(character_maximum_length AS Nullable(Int64)),
		       CAST(coalesce(numeric_precision, datetime_precision) AS Nullable(Int64)),
		       CAST(numeric_scale AS Nullable(Int64)),
		       toUInt8(is_nullable),
		       nullIf(toString(column_default), ''),
		       nullIf(toString(column_comment), '')
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE table_catalog = currentDatabase()
		  AND table_name = ?
		ORDER BY ordinal_position`

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	rows, err := d.conn.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to describe columns")
	}
	defer rows.Close()

	var cols []catalog.ColumnRow
	for rows.Next() {
		var c catalog.ColumnRow
		var nullable uint8
		err := rows.Scan(
			&c.Name, &c.RawType,
			&c.MaxLength, &c.Precision, &c.Scale,
			&nullable, &c.Default, &c.Comment,
		)
		if err != nil {
			return nil, mapError(err, "failed to scan column row")
		}
		c.Nullable = nullable != 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return cols, nil
}

// ShowCreate returns the CREATE statement for one table.
func (d *Driver) ShowCreate(ctx context.Context, table string) (string, error) {
	q := "SHOW CREATE TABLE " + catalog.QuoteIdent(table)

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	var stmt string
	if err := d.conn.QueryRow(ctx, q).Scan(&stmt); err != nil {
		return "", mapError(err, "failed to fetch create statement")
	}
	return stmt, nil
}

// ListSettingNames returns the names of every server setting.
func (d *Driver) ListSettingNames(ctx context.Context) ([]string, error) {
	const q = `SELECT name FROM system.settings`

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	rows, err := d.conn.Query(ctx, q)
	if err != nil {
		return nil, mapError(err, "failed to list settings")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan setting name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating settings")
	}
	return names, nil
}
