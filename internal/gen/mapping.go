// Package gen renders introspection results as Go source: one struct
// per table, fields typed by walking each column's decoded type tree.
package gen

import (
	"strings"

	"github.com/chinspect/chinspect/internal/chtype"
)

// mapped is a rendered Go type expression, the imports it needs, and
// whether the mapping drops information the raw type carried.
type mapped struct {
	expr    string
	imports []string
	lossy   bool
}

// simpleTypes maps plain ClickHouse type names to Go types. Anything
// absent falls back to any.
var simpleTypes = map[string]mapped{
	"String":  {expr: "string"},
	"Int8":    {expr: "int8"},
	"Int16":   {expr: "int16"},
	"Int32":   {expr: "int32"},
	"Int64":   {expr: "int64"},
	"UInt8":   {expr: "uint8"},
	"UInt16":  {expr: "uint16"},
	"UInt32":  {expr: "uint32"},
	"UInt64":  {expr: "uint64"},
	"Float32": {expr: "float32"},
	"Float64": {expr: "float64"},
	"Bool":    {expr: "bool"},
	"Date":    {expr: "time.Time", imports: []string{"time"}},
	"Date32":  {expr: "time.Time", imports: []string{"time"}},
	"UUID":    {expr: "string"},
	"IPv4":    {expr: "net.IP", imports: []string{"net"}},
	"IPv6":    {expr: "net.IP", imports: []string{"net"}},
	"Int128":  {expr: "*big.Int", imports: []string{"math/big"}},
	"Int256":  {expr: "*big.Int", imports: []string{"math/big"}},
	"UInt128": {expr: "*big.Int", imports: []string{"math/big"}},
	"UInt256": {expr: "*big.Int", imports: []string{"math/big"}},
	"JSON":    {expr: "json.RawMessage", imports: []string{"encoding/json"}},
}

// typeExpr renders the Go type for a decoded column type. A nil node
// (an unresolved column) renders as any.
func typeExpr(n *chtype.Node) mapped {
	if n == nil {
		return mapped{expr: "any", lossy: true}
	}
	m := baseExpr(n)
	if n.Nullable {
		m.expr = "*" + m.expr
	}
	return m
}

func baseExpr(n *chtype.Node) mapped {
	switch n.Kind {
	case chtype.KindSimple:
		if m, ok := simpleTypes[n.Name]; ok {
			return m
		}
		return mapped{expr: "any", lossy: true}

	case chtype.KindParameterized:
		// Decimal32(s) .. Decimal256(s) take the same road as Decimal.
		if strings.HasPrefix(n.Name, "Decimal") {
			return mapped{expr: "string", lossy: true}
		}
		return mapped{expr: "any", lossy: true}

	case chtype.KindFixedString:
		return mapped{expr: "string"}

	case chtype.KindDecimal:
		return mapped{expr: "string", lossy: true}

	case chtype.KindDateTime, chtype.KindDateTime64:
		return mapped{expr: "time.Time", imports: []string{"time"}}

	case chtype.KindEnum:
		return mapped{expr: "string", lossy: true}

	case chtype.KindArray:
		el := typeExpr(n.Elem)
		return mapped{expr: "[]" + el.expr, imports: el.imports, lossy: el.lossy}

	case chtype.KindTuple:
		return mapped{expr: "[]any", lossy: true}

	case chtype.KindMap:
		k := typeExpr(n.Key)
		v := typeExpr(n.Value)
		keyExpr := k.expr
		lossy := k.lossy || v.lossy
		imports := append(append([]string{}, k.imports...), v.imports...)
		if !validMapKey(keyExpr) {
			keyExpr = "string"
			lossy = true
			imports = v.imports
		}
		return mapped{expr: "map[" + keyExpr + "]" + v.expr, imports: imports, lossy: lossy}

	case chtype.KindJSON:
		return mapped{expr: "json.RawMessage", imports: []string{"encoding/json"}}

	default:
		return mapped{expr: "any", lossy: true}
	}
}

// validMapKey reports whether expr is usable as a Go map key. Slices
// and pointers are not comparable, and interface keys defeat the point
// of a typed model, so those fall back to string.
func validMapKey(expr string) bool {
	if strings.HasPrefix(expr, "[]") || strings.HasPrefix(expr, "map[") || strings.HasPrefix(expr, "*") {
		return false
	}
	switch expr {
	case "any", "json.RawMessage", "net.IP":
		return false
	}
	return true
}
