package catalog

// TableKind distinguishes base tables from views.
type TableKind string

const (
	KindTable TableKind = "table"
	KindView  TableKind = "view"
)

// KindFromCode maps the single-letter kind emitted by the catalog
// queries ('t' for base tables, 'v' for views) to a TableKind.
func KindFromCode(code string) TableKind {
	if code == "v" {
		return KindView
	}
	return KindTable
}

// TableRow is one row of the table listing.
type TableRow struct {
	Name string
	Kind TableKind
}

// ColumnRow is one row of the column listing for a table. RawType holds
// the compact ClickHouse type string exactly as the server reports it;
// decoding it is the caller's job. Nullable reflects the catalog's
// is_nullable flag only; once the type string is decoded, the Nullable
// wrapper in the type tree is authoritative.
type ColumnRow struct {
	Name      string
	RawType   string
	Nullable  bool
	MaxLength *int64  // character_maximum_length, nil when not applicable
	Precision *int64  // numeric or datetime precision, nil when not applicable
	Scale     *int64  // numeric_scale, nil when not applicable
	Default   *string // default expression, nil when none is declared
	Comment   *string // column comment, nil when empty
}
