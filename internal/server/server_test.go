package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/inspect"
	"github.com/chinspect/chinspect/internal/logger"
)

type fakeCatalog struct {
	tables   []catalog.TableRow
	columns  map[string][]catalog.ColumnRow
	creates  map[string]string
	settings []string

	pingErr error
	listErr error
}

func (f *fakeCatalog) ListTables(context.Context) ([]catalog.TableRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tables, nil
}

func (f *fakeCatalog) DescribeColumns(_ context.Context, table string) ([]catalog.ColumnRow, error) {
	cols, ok := f.columns[table]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "unknown table "+table)
	}
	return cols, nil
}

func (f *fakeCatalog) ShowCreate(_ context.Context, table string) (string, error) {
	stmt, ok := f.creates[table]
	if !ok {
		return "", errs.New(errs.ErrKindNotFound, "unknown table "+table)
	}
	return stmt, nil
}

func (f *fakeCatalog) ListSettingNames(context.Context) ([]string, error) {
	return f.settings, nil
}

func (f *fakeCatalog) Ping(context.Context) error { return f.pingErr }
func (f *fakeCatalog) Close()                     {}

const eventsDDL = `CREATE TABLE default.events
(
    id UInt64,
    name Nullable(String),
    CONSTRAINT positive_id CHECK id > 0
)
ENGINE = MergeTree
ORDER BY id`

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tables: []catalog.TableRow{
			{Name: "events", Kind: catalog.KindTable},
		},
		columns: map[string][]catalog.ColumnRow{
			"events": {
				{Name: "id", RawType: "UInt64"},
				{Name: "name", RawType: "Nullable(String)", Nullable: true},
			},
		},
		creates: map[string]string{
			"events": eventsDDL,
		},
		settings: []string{"max_threads", "readonly"},
	}
}

func newTestServer(t *testing.T, fc *fakeCatalog) *httptest.Server {
	t.Helper()
	cfg := &Config{
		Addr:            ":0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
	quiet := logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
	srv := New(cfg, quiet, fc, inspect.Options{})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHealthFailing(t *testing.T) {
	fc := newFakeCatalog()
	fc.pingErr = errs.New(errs.ErrKindConnectionFailed, "server unreachable")
	ts := newTestServer(t, fc)

	status, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusBadGateway, status)

	var e apiError
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "connection_failed", e.Kind)
}

func TestListTables(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/tables")
	assert.Equal(t, http.StatusOK, status)

	var entries []tableEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "events", entries[0].Name)
	assert.Equal(t, "table", entries[0].Kind)
}

func TestListTablesError(t *testing.T) {
	fc := newFakeCatalog()
	fc.listErr = errs.New(errs.ErrKindQueryFailed, "catalog query failed")
	ts := newTestServer(t, fc)

	status, _ := get(t, ts, "/v1/tables")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestTableDescriptor(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/tables/events")
	assert.Equal(t, http.StatusOK, status)

	var desc struct {
		Name    string `json:"name"`
		Kind    string `json:"kind"`
		Columns []struct {
			Name     string `json:"name"`
			RawType  string `json:"raw_type"`
			Nullable bool   `json:"nullable"`
		} `json:"columns"`
		Constraints map[string]struct {
			Expression string `json:"expression"`
		} `json:"constraints"`
	}
	require.NoError(t, json.Unmarshal(body, &desc))

	assert.Equal(t, "events", desc.Name)
	assert.Equal(t, "table", desc.Kind)
	require.Len(t, desc.Columns, 2)
	assert.Equal(t, "UInt64", desc.Columns[0].RawType)
	assert.True(t, desc.Columns[1].Nullable)
	assert.Contains(t, desc.Constraints, "positive_id")
}

func TestTableNotFound(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/tables/missing")
	assert.Equal(t, http.StatusNotFound, status)

	var e apiError
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "not_found", e.Kind)
}

func TestModels(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/models")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "package models")
	assert.Contains(t, string(body), "type Events struct")
}

func TestModelsPackageParam(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/models?package=schema")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "package schema")
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t, newFakeCatalog())

	status, body := get(t, ts, "/v1/settings")
	assert.Equal(t, http.StatusOK, status)

	var payload struct {
		Count    int      `json:"count"`
		Settings []string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Equal(t, []string{"max_threads", "readonly"}, payload.Settings)
}
