package inspect

import "fmt"

// TableError records a table whose introspection failed entirely. The
// table is absent from the result; the run carries on with the rest.
type TableError struct {
	Table string
	Op    string // the catalog call that failed
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %q: %s: %v", e.Table, e.Op, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// ColumnError records a column whose type string failed to decode. The
// column stays in its table's descriptor with Unresolved set.
type ColumnError struct {
	Table   string
	Column  string
	RawType string
	Err     error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %s.%s: cannot decode type %q: %v", e.Table, e.Column, e.RawType, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }
