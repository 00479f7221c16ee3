package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/chinspect/chinspect/internal/ddl"
	"github.com/chinspect/chinspect/internal/inspect"
)

// Options controls rendering.
type Options struct {
	// Package is the package clause of the generated file; "models"
	// when empty.
	Package string
}

// Render emits one Go source file with a struct per table descriptor.
// The output is gofmt-formatted and deterministic: tables keep their
// result order, imports and constraint names are sorted.
func Render(res *inspect.Result, opt Options) ([]byte, error) {
	pkg := opt.Package
	if pkg == "" {
		pkg = "models"
	}

	var body bytes.Buffer
	imports := make(map[string]bool)
	structNames := newIdentSet()

	for i := range res.Tables {
		writeStruct(&body, &res.Tables[i], structNames, imports)
	}

	var out bytes.Buffer
	out.WriteString("// Code generated by chinspect. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", pkg)

	if len(imports) > 0 {
		paths := make([]string, 0, len(imports))
		for p := range imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		out.WriteString("import (\n")
		for _, p := range paths {
			fmt.Fprintf(&out, "\t%q\n", p)
		}
		out.WriteString(")\n\n")
	}

	out.Write(body.Bytes())

	src, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated models: %w", err)
	}
	return src, nil
}

func writeStruct(buf *bytes.Buffer, t *inspect.TableDescriptor, names *identSet, imports map[string]bool) {
	structName := names.claim(exportedIdent(t.Name))

	fmt.Fprintf(buf, "// %s maps %s %q.\n", structName, t.Kind, t.Name)
	for _, line := range constraintLines(t.Constraints) {
		fmt.Fprintf(buf, "// %s\n", line)
	}
	fmt.Fprintf(buf, "type %s struct {\n", structName)

	// TableName is reserved so no column can collide with the method.
	fields := newIdentSet("TableName")
	for _, col := range t.Columns {
		m := typeExpr(col.Type)
		for _, imp := range m.imports {
			imports[imp] = true
		}

		field := fields.claim(exportedIdent(col.Name))
		fmt.Fprintf(buf, "\t%s %s `ch:%q json:%q`", field, m.expr, col.Name, col.Name)
		if c := fieldComment(col, m.lossy); c != "" {
			fmt.Fprintf(buf, " // %s", c)
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// TableName returns the ClickHouse table %s maps to.\n", structName)
	fmt.Fprintf(buf, "func (%s) TableName() string { return %q }\n\n", structName, t.Name)
}

// constraintLines renders the table's constraints for its doc comment,
// sorted by name so output stays stable.
func constraintLines(cons map[string]ddl.Constraint) []string {
	if len(cons) == 0 {
		return nil
	}
	names := make([]string, 0, len(cons))
	for name := range cons {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	lines = append(lines, "Declared constraints and indexes:")
	for _, name := range names {
		c := cons[name]
		if c.Kind == ddl.ConstraintIndex {
			lines = append(lines, fmt.Sprintf("  - index %s: %s", name, c.Definition))
		} else {
			lines = append(lines, fmt.Sprintf("  - constraint %s: %s", name, c.Expression))
		}
	}
	return lines
}

// fieldComment builds the trailing comment for one field: the raw type
// when the mapping is lossy or the column unresolved, plus any comment
// the column carries in the catalog.
func fieldComment(col inspect.ColumnDescriptor, lossy bool) string {
	var parts []string
	if col.Unresolved {
		parts = append(parts, "unresolved: "+col.RawType)
	} else if lossy {
		parts = append(parts, col.RawType)
	}
	if col.Comment != nil && *col.Comment != "" {
		parts = append(parts, *col.Comment)
	}
	// Newlines would break out of the comment.
	return strings.ReplaceAll(strings.Join(parts, "; "), "\n", " ")
}
