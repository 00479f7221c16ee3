// Package inspect orchestrates a full schema read: it walks the
// catalog, decodes every column's type string, scans CREATE statements
// for constraints and indexes, and collects the lot into table
// descriptors.
//
// Failures are isolated at two levels. A table whose catalog reads fail
// is recorded and skipped; a column whose type string will not decode
// is recorded and kept, marked unresolved. Only the initial table
// listing is fatal: with nothing to iterate there is no run.
package inspect

import (
	"context"
	"strings"
	"sync"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/chtype"
	"github.com/chinspect/chinspect/internal/ddl"
	"github.com/chinspect/chinspect/internal/logger"
)

// Options controls which tables a run visits.
type Options struct {
	// Tables names tables to inspect explicitly. When set, the listing
	// and its view filter are bypassed: every named table is visited,
	// view or not, in the given order.
	Tables []string

	// IncludeViews admits views when Tables is empty.
	IncludeViews bool

	// Ignore drops tables by exact name, in either selection mode.
	Ignore []string

	// Filter, when non-nil, keeps only table names it reports true for.
	Filter func(name string) bool
}

// Introspector reads a whole schema through a Catalog.
type Introspector struct {
	cat catalog.Catalog
	log *logger.Logger
	opt Options

	mu           sync.Mutex
	settingNames []string
	settingsOK   bool
}

// New returns an Introspector over cat. A nil log falls back to the
// default logger.
func New(cat catalog.Catalog, log *logger.Logger, opt Options) *Introspector {
	if log == nil {
		log = logger.New(nil)
	}
	return &Introspector{cat: cat, log: log, opt: opt}
}

// Run inspects every selected table and returns the collected result.
// It fails only when the table listing itself cannot be fetched.
func (in *Introspector) Run(ctx context.Context) (*Result, error) {
	tables, err := in.selectTables(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, t := range tables {
		desc, colErrs, err := in.inspectTable(ctx, t)
		if err != nil {
			in.log.With().Str("table", t.Name).Err(err).Logger().
				Warn("table introspection failed, skipping")
			res.Problems = append(res.Problems, err)
			continue
		}
		res.Problems = append(res.Problems, colErrs...)
		res.Tables = append(res.Tables, *desc)
	}
	return res, nil
}

// selectTables resolves Options into the list of tables to visit.
func (in *Introspector) selectTables(ctx context.Context) ([]catalog.TableRow, error) {
	if len(in.opt.Tables) > 0 {
		rows := make([]catalog.TableRow, 0, len(in.opt.Tables))
		for _, name := range in.opt.Tables {
			if in.skip(name) {
				continue
			}
			// Kind is recovered from the CREATE statement later.
			rows = append(rows, catalog.TableRow{Name: name})
		}
		return rows, nil
	}

	listed, err := in.cat.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var rows []catalog.TableRow
	for _, row := range listed {
		if row.Kind == catalog.KindView && !in.opt.IncludeViews {
			continue
		}
		if in.skip(row.Name) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (in *Introspector) skip(name string) bool {
	for _, ig := range in.opt.Ignore {
		if name == ig {
			return true
		}
	}
	if in.opt.Filter != nil && !in.opt.Filter(name) {
		return true
	}
	return false
}

// inspectTable resolves one table. The returned error is a *TableError;
// the error slice holds *ColumnError values for unresolved columns.
func (in *Introspector) inspectTable(ctx context.Context, row catalog.TableRow) (*TableDescriptor, []error, error) {
	stmt, err := in.cat.ShowCreate(ctx, row.Name)
	if err != nil {
		return nil, nil, &TableError{Table: row.Name, Op: "fetch create statement", Err: err}
	}

	kind := row.Kind
	if kind == "" {
		kind = kindFromCreate(stmt)
	}

	cols, err := in.cat.DescribeColumns(ctx, row.Name)
	if err != nil {
		return nil, nil, &TableError{Table: row.Name, Op: "describe columns", Err: err}
	}

	desc := &TableDescriptor{
		Name:        row.Name,
		Kind:        kind,
		Constraints: ddl.Extract(stmt),
	}

	var problems []error
	for _, cr := range cols {
		col, cerr := in.resolveColumn(row.Name, cr)
		if cerr != nil {
			in.log.With().Str("table", row.Name).Str("column", cr.Name).Err(cerr.Err).Logger().
				Debug("type string did not decode, column kept unresolved")
			problems = append(problems, cerr)
		}
		desc.Columns = append(desc.Columns, col)
	}
	return desc, problems, nil
}

// resolveColumn decodes one column's type string. The catalog's
// is_nullable flag is advisory only: once the type tree exists, its
// Nullable wrapper is authoritative.
func (in *Introspector) resolveColumn(table string, row catalog.ColumnRow) (ColumnDescriptor, *ColumnError) {
	col := ColumnDescriptor{
		Name:      row.Name,
		RawType:   row.RawType,
		Nullable:  row.Nullable,
		MaxLength: row.MaxLength,
		Precision: row.Precision,
		Scale:     row.Scale,
		Default:   row.Default,
		Comment:   row.Comment,
	}

	node, err := chtype.Parse(row.RawType)
	if err != nil {
		col.Unresolved = true
		return col, &ColumnError{Table: table, Column: row.Name, RawType: row.RawType, Err: err}
	}

	if node.Nullable != row.Nullable {
		in.log.With().
			Str("table", table).
			Str("column", row.Name).
			Bool("catalog_nullable", row.Nullable).
			Bool("type_nullable", node.Nullable).
			Logger().
			Debug("nullability disagreement, trusting the type wrapper")
	}

	col.Type = node
	col.Nullable = node.Nullable
	return col, nil
}

// kindFromCreate recovers the table kind from the opening words of its
// CREATE statement, for tables named explicitly rather than listed.
func kindFromCreate(stmt string) catalog.TableKind {
	switch {
	case strings.HasPrefix(stmt, "CREATE VIEW"),
		strings.HasPrefix(stmt, "CREATE MATERIALIZED VIEW"),
		strings.HasPrefix(stmt, "CREATE LIVE VIEW"):
		return catalog.KindView
	default:
		return catalog.KindTable
	}
}
