// Package chtype decodes ClickHouse column type strings into structured
// type trees.
//
// ClickHouse reports column types in a compact textual grammar:
//
//	Array(Tuple(String, Enum8('a' = 1, 'b' = 2)))
//	LowCardinality(Nullable(FixedString(16)))
//	Map(String, DateTime64(3, 'UTC'))
//
// Parse walks that grammar in a single left-to-right pass and returns a
// *Node tree. Wrapper types (Nullable, LowCardinality) are not nodes of
// their own: they set flags on the node they wrap, so a column's
// nullability and dictionary encoding read as properties of its type.
package chtype

// Kind discriminates the variants of a type tree node.
type Kind string

const (
	KindSimple        Kind = "simple"
	KindParameterized Kind = "parameterized"
	KindFixedString   Kind = "fixed_string"
	KindDecimal       Kind = "decimal"
	KindDateTime      Kind = "datetime"
	KindDateTime64    Kind = "datetime64"
	KindEnum          Kind = "enum"
	KindArray         Kind = "array"
	KindTuple         Kind = "tuple"
	KindMap           Kind = "map"
	KindJSON          Kind = "json"
)

// Node is a single node of a decoded type tree. Only the fields relevant
// to its Kind are set; the rest stay at their zero values.
type Node struct {
	Kind Kind `json:"kind"`

	// Name is set for simple and parameterized types (Int64, IPv4,
	// AggregateFunction, ...). Params holds the raw parameter strings of
	// a parameterized type, split on top-level commas and otherwise
	// untouched.
	Name   string   `json:"name,omitempty"`
	Params []string `json:"params,omitempty"`

	// Length is the byte length of a FixedString.
	Length int `json:"length,omitempty"`

	// Precision is set for Decimal and DateTime64; Scale for Decimal only.
	Precision int `json:"precision,omitempty"`
	Scale     int `json:"scale,omitempty"`

	// Timezone is set when a DateTime or DateTime64 carries an explicit
	// timezone argument; nil means server default.
	Timezone *string `json:"timezone,omitempty"`

	// Width (8 or 16) and Variants describe an enum.
	Width    int           `json:"width,omitempty"`
	Variants []EnumVariant `json:"variants,omitempty"`

	// Children: Elem for Array, Elems for Tuple, Key/Value for Map.
	Elem  *Node   `json:"elem,omitempty"`
	Elems []*Node `json:"elems,omitempty"`
	Key   *Node   `json:"key,omitempty"`
	Value *Node   `json:"value,omitempty"`

	// Wrapper flags. A LowCardinality(Nullable(String)) column yields one
	// KindSimple node with both flags set.
	Nullable       bool `json:"nullable,omitempty"`
	LowCardinality bool `json:"low_cardinality,omitempty"`
}

// EnumVariant is one label/value pair of an Enum8 or Enum16.
type EnumVariant struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// --- constructors ---
//
// These build the same trees Parse produces; they keep tests and
// downstream code free of struct-literal noise.

// Simple returns a plain named type node.
func Simple(name string) *Node {
	return &Node{Kind: KindSimple, Name: name}
}

// Parameterized returns a named type with opaque parameter strings.
func Parameterized(name string, params ...string) *Node {
	return &Node{Kind: KindParameterized, Name: name, Params: params}
}

// FixedString returns a FixedString(n) node.
func FixedString(n int) *Node {
	return &Node{Kind: KindFixedString, Length: n}
}

// Decimal returns a Decimal(precision, scale) node.
func Decimal(precision, scale int) *Node {
	return &Node{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// DateTime returns a DateTime node; tz == "" means no explicit timezone.
func DateTime(tz string) *Node {
	n := &Node{Kind: KindDateTime}
	if tz != "" {
		n.Timezone = &tz
	}
	return n
}

// DateTime64 returns a DateTime64(precision) node; tz == "" means no
// explicit timezone.
func DateTime64(precision int, tz string) *Node {
	n := &Node{Kind: KindDateTime64, Precision: precision}
	if tz != "" {
		n.Timezone = &tz
	}
	return n
}

// Enum returns an enum node of the given width (8 or 16).
func Enum(width int, variants ...EnumVariant) *Node {
	return &Node{Kind: KindEnum, Width: width, Variants: variants}
}

// ArrayOf returns an Array(elem) node.
func ArrayOf(elem *Node) *Node {
	return &Node{Kind: KindArray, Elem: elem}
}

// TupleOf returns a Tuple(...) node.
func TupleOf(elems ...*Node) *Node {
	return &Node{Kind: KindTuple, Elems: elems}
}

// MapOf returns a Map(key, value) node.
func MapOf(key, value *Node) *Node {
	return &Node{Kind: KindMap, Key: key, Value: value}
}

// JSONObject returns the node for Object('json').
func JSONObject() *Node {
	return &Node{Kind: KindJSON}
}

// NullableOf marks n as Nullable and returns it.
func NullableOf(n *Node) *Node {
	n.Nullable = true
	return n
}

// LowCardinalityOf marks n as LowCardinality and returns it.
func LowCardinalityOf(n *Node) *Node {
	n.LowCardinality = true
	return n
}
