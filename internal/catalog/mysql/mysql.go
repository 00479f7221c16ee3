// Package mysql implements the catalog contract over ClickHouse's
// MySQL compatibility port.
package mysql

import (
	"context"
	"time"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// defaultPort is ClickHouse's MySQL compatibility port.
const defaultPort = 9004

// Driver is a catalog.Catalog backed by database/sql + sqlx over the
// MySQL wire protocol. It is safe for concurrent use by multiple
// goroutines.
type Driver struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// New opens a connection pool against the MySQL compatibility port and
// returns a Driver. It calls Ping to validate the connection before
// returning.
func New(ctx context.Context, cfg *catalog.Config) (*Driver, error) {
	mcfg := mysql.NewConfig()
	mcfg.Net = "tcp"
	mcfg.Addr = cfg.Addr(defaultPort)
	mcfg.User = cfg.Username
	mcfg.Passwd = cfg.Password
	mcfg.DBName = cfg.Database
	mcfg.Timeout = cfg.ConnectTimeout
	// ClickHouse's MySQL endpoint does not implement server-side
	// prepared statements; parameters must be interpolated client-side.
	mcfg.InterpolateParams = true

	db, err := sqlx.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := &Driver{db: db, queryTimeout: cfg.QueryTimeout}

	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
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
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool. Call when the application shuts down.
func (d *Driver) Close() {
	_ = d.db.Close()
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

	rows, err := d.db.QueryxContext(ctx, q)
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

	rows, err := d.db.QueryxContext(ctx, q, table)
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

// ShowCreate returns the CREATE statement for one table. ClickHouse
// parses the statement itself, so the result is its usual single
// statement column rather than MySQL's two-column form.
func (d *Driver) ShowCreate(ctx context.Context, table string) (string, error) {
	q := "SHOW CREATE TABLE " + catalog.QuoteIdent(table)

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	var stmt string
	if err := d.db.GetContext(ctx, &stmt, q); err != nil {
		return "", mapError(err, "failed to fetch create statement")
	}
	return stmt, nil
}

// ListSettingNames returns the names of every server setting.
func (d *Driver) ListSettingNames(ctx context.Context) ([]string, error) {
	const q = `SELECT name FROM system.settings`

	ctx, cancel := d.qctx(ctx)
	defer cancel()

	var names []string
	if err := d.db.SelectContext(ctx, &names, q); err != nil {
		return nil, mapError(err, "failed to list settings")
	}
	return names, nil
}
