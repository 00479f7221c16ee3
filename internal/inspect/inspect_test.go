package inspect

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/chtype"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves canned rows and failures.
type fakeCatalog struct {
	tables   []catalog.TableRow
	columns  map[string][]catalog.ColumnRow
	creates  map[string]string
	settings []string

	listErr     error
	createErr   map[string]error
	describeErr map[string]error
	settingsErr error

	settingsCalls int
}

func (f *fakeCatalog) ListTables(_ context.Context) ([]catalog.TableRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tables, nil
}

func (f *fakeCatalog) DescribeColumns(_ context.Context, table string) ([]catalog.ColumnRow, error) {
	if err := f.describeErr[table]; err != nil {
		return nil, err
	}
	cols, ok := f.columns[table]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "unknown table")
	}
	return cols, nil
}

func (f *fakeCatalog) ShowCreate(_ context.Context, table string) (string, error) {
	if err := f.createErr[table]; err != nil {
		return "", err
	}
	stmt, ok := f.creates[table]
	if !ok {
		return "", errs.New(errs.ErrKindNotFound, "unknown table")
	}
	return stmt, nil
}

func (f *fakeCatalog) ListSettingNames(_ context.Context) ([]string, error) {
	f.settingsCalls++
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeCatalog) Ping(_ context.Context) error { return nil }

func (f *fakeCatalog) Close() {}

const eventsDDL = "CREATE TABLE db.events\n" +
	"(\n" +
	"    `id` UInt64,\n" +
	"    `payload` Nullable(String),\n" +
	"    `tags` Array(String),\n" +
	"    CONSTRAINT positive_id CHECK id > 0,\n" +
	"    INDEX idx_tags tags TYPE bloom_filter(0.01) GRANULARITY 4\n" +
	")\n" +
	"ENGINE = MergeTree\n" +
	"ORDER BY id\n"

func newFixture() *fakeCatalog {
	return &fakeCatalog{
		tables: []catalog.TableRow{
			{Name: "daily_view", Kind: catalog.KindView},
			{Name: "events", Kind: catalog.KindTable},
			{Name: "metrics", Kind: catalog.KindTable},
		},
		columns: map[string][]catalog.ColumnRow{
			"events": {
				{Name: "id", RawType: "UInt64"},
				{Name: "payload", RawType: "Nullable(String)", Nullable: true},
				{Name: "tags", RawType: "Array(String)"},
			},
			"metrics": {
				{Name: "name", RawType: "LowCardinality(String)"},
				{Name: "value", RawType: "Float64"},
			},
			"daily_view": {
				{Name: "day", RawType: "Date"},
			},
		},
		creates: map[string]string{
			"events":     eventsDDL,
			"metrics":    "CREATE TABLE db.metrics (`name` LowCardinality(String), `value` Float64) ENGINE = MergeTree ORDER BY name",
			"daily_view": "CREATE VIEW db.daily_view AS SELECT toDate(ts) AS day FROM db.events",
		},
		settings: []string{"max_threads", "readonly"},
	}
}

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

func TestRun(t *testing.T) {
	in := New(newFixture(), quietLogger(), Options{})

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Problems)

	// The view is filtered out by default.
	require.Len(t, res.Tables, 2)
	assert.Equal(t, "events", res.Tables[0].Name)
	assert.Equal(t, "metrics", res.Tables[1].Name)

	events := res.Table("events")
	require.NotNil(t, events)
	assert.Equal(t, catalog.KindTable, events.Kind)

	require.Len(t, events.Columns, 3)
	id := events.Columns[0]
	assert.Equal(t, chtype.Simple("UInt64"), id.Type)
	assert.False(t, id.Nullable)

	payload := events.Columns[1]
	require.NotNil(t, payload.Type)
	assert.Equal(t, "String", payload.Type.Name)
	assert.True(t, payload.Nullable)

	tags := events.Columns[2]
	require.NotNil(t, tags.Type)
	assert.Equal(t, chtype.KindArray, tags.Type.Kind)

	require.Len(t, events.Constraints, 2)
	assert.Contains(t, events.Constraints, "positive_id")
	assert.Contains(t, events.Constraints, "idx_tags")

	assert.Nil(t, res.Table("daily_view"))
}

func TestRunIncludesViews(t *testing.T) {
	in := New(newFixture(), quietLogger(), Options{IncludeViews: true})

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 3)

	view := res.Table("daily_view")
	require.NotNil(t, view)
	assert.Equal(t, catalog.KindView, view.Kind)
}

func TestRunExplicitTablesBypassViewFilter(t *testing.T) {
	fc := newFixture()
	// The listing is never consulted in explicit mode.
	fc.listErr = errs.New(errs.ErrKindConnectionFailed, "listing must not be called")

	in := New(fc, quietLogger(), Options{Tables: []string{"daily_view", "events"}})

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 2)

	// Explicit order is preserved, and the view's kind is recovered
	// from its CREATE statement.
	assert.Equal(t, "daily_view", res.Tables[0].Name)
	assert.Equal(t, catalog.KindView, res.Tables[0].Kind)
	assert.Equal(t, "events", res.Tables[1].Name)
	assert.Equal(t, catalog.KindTable, res.Tables[1].Kind)
}

func TestRunTableFailureIsolated(t *testing.T) {
	fc := newFixture()
	fc.createErr = map[string]error{
		"metrics": errs.New(errs.ErrKindQueryFailed, "boom"),
	}

	in := New(fc, quietLogger(), Options{})

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, "events", res.Tables[0].Name)

	require.Len(t, res.Problems, 1)
	var te *TableError
	require.ErrorAs(t, res.Problems[0], &te)
	assert.Equal(t, "metrics", te.Table)
	assert.Equal(t, "fetch create statement", te.Op)
	assert.Equal(t, errs.ErrKindQueryFailed, errs.KindOf(te))
}

func TestRunDescribeFailureIsolated(t *testing.T) {
	fc := newFixture()
	fc.describeErr = map[string]error{
		"events": errs.New(errs.ErrKindTimeout, "too slow"),
	}

	in := New(fc, quietLogger(), Options{})

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, "metrics", res.Tables[0].Name)

	require.Len(t, res.Problems, 1)
	var te *TableError
	require.ErrorAs(t, res.Problems[0], &te)
	assert.Equal(t, "describe columns", te.Op)
}

func TestRunColumnFailureKeptUnresolved(t *testing.T) {
	fc := newFixture()
	fc.columns["metrics"] = []catalog.ColumnRow{
		{Name: "name", RawType: "LowCardinality(String)"},
		{Name: "state", RawType: "Enum8('a' = )"},
	}

	in := New(fc, quietLogger(), Options{})

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	metrics := res.Table("metrics")
	require.NotNil(t, metrics)
	require.Len(t, metrics.Columns, 2)

	good := metrics.Columns[0]
	assert.False(t, good.Unresolved)
	require.NotNil(t, good.Type)
	assert.True(t, good.Type.LowCardinality)

	bad := metrics.Columns[1]
	assert.True(t, bad.Unresolved)
	assert.Nil(t, bad.Type)
	assert.Equal(t, "Enum8('a' = )", bad.RawType)

	require.Len(t, res.Problems, 1)
	var ce *ColumnError
	require.ErrorAs(t, res.Problems[0], &ce)
	assert.Equal(t, "metrics", ce.Table)
	assert.Equal(t, "state", ce.Column)

	var perr *chtype.ParseError
	require.ErrorAs(t, ce, &perr)
	assert.Equal(t, chtype.ErrMalformedEnumLiteral, perr.Kind)
}

func TestRunNullabilityWrapperWins(t *testing.T) {
	fc := newFixture()
	fc.columns["metrics"] = []catalog.ColumnRow{
		// Catalog flag says plain, wrapper says nullable.
		{Name: "a", RawType: "Nullable(Int64)", Nullable: false},
		// Catalog flag says nullable, wrapper says plain.
		{Name: "b", RawType: "Int64", Nullable: true},
	}

	in := New(fc, quietLogger(), Options{})

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	metrics := res.Table("metrics")
	require.NotNil(t, metrics)
	assert.True(t, metrics.Columns[0].Nullable)
	assert.False(t, metrics.Columns[1].Nullable)
}

func TestRunIgnoreAndFilter(t *testing.T) {
	in := New(newFixture(), quietLogger(), Options{
		IncludeViews: true,
		Ignore:       []string{"daily_view"},
		Filter:       func(name string) bool { return strings.HasPrefix(name, "ev") },
	})

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "events", res.Tables[0].Name)
}

func TestRunExplicitTablesHonorIgnore(t *testing.T) {
	in := New(newFixture(), quietLogger(), Options{
		Tables: []string{"events", "metrics"},
		Ignore: []string{"metrics"},
	})

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "events", res.Tables[0].Name)
}

func TestRunListFailureAborts(t *testing.T) {
	fc := newFixture()
	fc.listErr = errs.New(errs.ErrKindConnectionFailed, "server gone")

	in := New(fc, quietLogger(), Options{})

	res, err := in.Run(context.Background())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fc.listErr))
}

func TestSettingNamesCached(t *testing.T) {
	fc := newFixture()
	in := New(fc, quietLogger(), Options{})

	names, err := in.SettingNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"max_threads", "readonly"}, names)
	assert.Equal(t, 1, fc.settingsCalls)

	again, err := in.SettingNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, names, again)
	assert.Equal(t, 1, fc.settingsCalls, "second call must hit the cache")
}

func TestSettingNamesRetriesAfterFailure(t *testing.T) {
	fc := newFixture()
	fc.settingsErr = errs.New(errs.ErrKindTimeout, "slow fetch")
	in := New(fc, quietLogger(), Options{})

	_, err := in.SettingNames(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, fc.settingsCalls)

	fc.settingsErr = nil
	names, err := in.SettingNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"max_threads", "readonly"}, names)
	assert.Equal(t, 2, fc.settingsCalls, "failure must not be cached")

	_, err = in.SettingNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fc.settingsCalls)
}
