package inspect

import (
	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/chtype"
	"github.com/chinspect/chinspect/internal/ddl"
)

// TableDescriptor is the fully resolved description of one table:
// its columns with decoded type trees, plus the CHECK constraints and
// data-skipping indexes recovered from its CREATE statement.
type TableDescriptor struct {
	Name        string                    `json:"name"`
	Kind        catalog.TableKind         `json:"kind"`
	Columns     []ColumnDescriptor        `json:"columns"`
	Constraints map[string]ddl.Constraint `json:"constraints,omitempty"`
}

// ColumnDescriptor is one resolved column. Type is nil and Unresolved
// is true when the raw type string failed to decode; the column is
// still listed so callers see the complete shape of the table.
type ColumnDescriptor struct {
	Name       string       `json:"name"`
	RawType    string       `json:"raw_type"`
	Type       *chtype.Node `json:"type,omitempty"`
	Nullable   bool         `json:"nullable"`
	Unresolved bool         `json:"unresolved,omitempty"`
	MaxLength  *int64       `json:"max_length,omitempty"`
	Precision  *int64       `json:"precision,omitempty"`
	Scale      *int64       `json:"scale,omitempty"`
	Default    *string      `json:"default,omitempty"`
	Comment    *string      `json:"comment,omitempty"`
}

// Result is what a Run produces: every table that resolved, plus the
// problems recorded along the way (*TableError for skipped tables,
// *ColumnError for columns kept with Unresolved set).
type Result struct {
	Tables   []TableDescriptor `json:"tables"`
	Problems []error           `json:"-"`
}

// Table returns the descriptor with the given name, or nil.
func (r *Result) Table(name string) *TableDescriptor {
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i]
		}
	}
	return nil
}
