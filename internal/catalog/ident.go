package catalog

import "strings"

// QuoteIdent wraps an identifier in double quotes for interpolation
// into ClickHouse SQL, doubling any quote characters inside the name.
// SHOW CREATE TABLE does not accept bound parameters, so the drivers
// must splice the table name into the statement themselves.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
