package chtype

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse decodes a complete ClickHouse type string. The input must be
// consumed in full; trailing characters fail the parse. Errors are
// always *ParseError.
//
// The parser is a single-pass recursive descent: every production
// recognizes its keyword by literal prefix, threads an explicit byte
// offset through recursive calls, and never backtracks.
func Parse(input string) (*Node, error) {
	node, i, err := parseNode(input, 0)
	if err != nil {
		return nil, err
	}
	if i != len(input) {
		return nil, errUnknown(input, i)
	}
	return node, nil
}

// parseNode parses one type expression starting at offset i and returns
// the node together with the offset of the first unconsumed byte.
func parseNode(s string, i int) (*Node, int, error) {
	switch {
	case hasAt(s, i, "LowCardinality("):
		inner, j, err := parseWrapped(s, i+len("LowCardinality("))
		if err != nil {
			return nil, 0, err
		}
		inner.LowCardinality = true
		return inner, j, nil

	case hasAt(s, i, "Nullable("):
		inner, j, err := parseWrapped(s, i+len("Nullable("))
		if err != nil {
			return nil, 0, err
		}
		inner.Nullable = true
		return inner, j, nil

	case hasAt(s, i, "FixedString("):
		length, j, err := scanInt(s, i+len("FixedString("))
		if err != nil {
			return nil, 0, err
		}
		j, err = expectLit(s, j, ")")
		if err != nil {
			return nil, 0, err
		}
		return &Node{Kind: KindFixedString, Length: length}, j, nil

	case hasAt(s, i, "DateTime64("):
		return parseDateTime64(s, i+len("DateTime64("))

	case hasAt(s, i, "DateTime"):
		return parseDateTime(s, i+len("DateTime"))

	case hasAt(s, i, "Decimal("):
		return parseDecimal(s, i+len("Decimal("))

	case hasAt(s, i, "Enum8("):
		return parseEnum(s, i+len("Enum8("), 8)

	case hasAt(s, i, "Enum16("):
		return parseEnum(s, i+len("Enum16("), 16)

	case hasAt(s, i, "Array("):
		elem, j, err := parseWrapped(s, i+len("Array("))
		if err != nil {
			return nil, 0, err
		}
		return &Node{Kind: KindArray, Elem: elem}, j, nil

	case hasAt(s, i, "Tuple("):
		return parseTuple(s, i+len("Tuple("))

	case hasAt(s, i, "Map("):
		return parseMap(s, i+len("Map("))

	case hasAt(s, i, "Object('json')"):
		return &Node{Kind: KindJSON}, i + len("Object('json')"), nil

	default:
		return parseGeneric(s, i)
	}
}

// parseWrapped parses an inner type expression followed by a closing
// parenthesis, shared by the Array production and both wrappers.
func parseWrapped(s string, i int) (*Node, int, error) {
	inner, j, err := parseNode(s, i)
	if err != nil {
		return nil, 0, err
	}
	j, err = expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return inner, j, nil
}

// parseDateTime handles both bare DateTime and DateTime('Europe/Berlin');
// i points just past the keyword.
func parseDateTime(s string, i int) (*Node, int, error) {
	node := &Node{Kind: KindDateTime}
	if !hasAt(s, i, "('") {
		return node, i, nil
	}
	tz, j, err := scanQuoted(s, i+2)
	if err != nil {
		return nil, 0, err
	}
	node.Timezone = &tz
	j, err = expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return node, j, nil
}

// parseDateTime64 handles DateTime64(p) and DateTime64(p, 'tz'); the
// precision is a single digit. i points just past the opening paren.
func parseDateTime64(s string, i int) (*Node, int, error) {
	if i >= len(s) {
		return nil, 0, errEnd(s)
	}
	if !isDigit(s[i]) {
		return nil, 0, errUnknown(s, i)
	}
	node := &Node{Kind: KindDateTime64, Precision: int(s[i] - '0')}
	j := i + 1
	if j < len(s) && s[j] == ',' {
		j2, err := expectLit(s, j, ", '")
		if err != nil {
			return nil, 0, err
		}
		tz, j3, err := scanQuoted(s, j2)
		if err != nil {
			return nil, 0, err
		}
		node.Timezone = &tz
		j = j3
	}
	j, err := expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return node, j, nil
}

// parseDecimal handles Decimal(precision, scale); i points just past the
// opening paren.
func parseDecimal(s string, i int) (*Node, int, error) {
	precision, j, err := scanInt(s, i)
	if err != nil {
		return nil, 0, err
	}
	j, err = expectLit(s, j, ", ")
	if err != nil {
		return nil, 0, err
	}
	scale, j, err := scanInt(s, j)
	if err != nil {
		return nil, 0, err
	}
	j, err = expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return &Node{Kind: KindDecimal, Precision: precision, Scale: scale}, j, nil
}

// parseTuple parses the element list of a Tuple; i points just past the
// opening paren. Elements are separated by ", " exactly, as ClickHouse
// renders them.
func parseTuple(s string, i int) (*Node, int, error) {
	first, j, err := parseNode(s, i)
	if err != nil {
		return nil, 0, err
	}
	elems := []*Node{first}
	for j < len(s) && s[j] == ',' {
		j2, err := expectLit(s, j, ", ")
		if err != nil {
			return nil, 0, err
		}
		elem, j3, err := parseNode(s, j2)
		if err != nil {
			return nil, 0, err
		}
		elems = append(elems, elem)
		j = j3
	}
	j, err = expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return &Node{Kind: KindTuple, Elems: elems}, j, nil
}

// parseMap parses Map(key, value); i points just past the opening paren.
func parseMap(s string, i int) (*Node, int, error) {
	key, j, err := parseNode(s, i)
	if err != nil {
		return nil, 0, err
	}
	j, err = expectLit(s, j, ", ")
	if err != nil {
		return nil, 0, err
	}
	value, j, err := parseNode(s, j)
	if err != nil {
		return nil, 0, err
	}
	j, err = expectLit(s, j, ")")
	if err != nil {
		return nil, 0, err
	}
	return &Node{Kind: KindMap, Key: key, Value: value}, j, nil
}

// parseEnum parses the variant list of an Enum8/Enum16; i points just
// past the opening paren.
func parseEnum(s string, i int, width int) (*Node, int, error) {
	node := &Node{Kind: KindEnum, Width: width}
	j := i
	for {
		if j >= len(s) {
			return nil, 0, errEnd(s)
		}
		if s[j] != '\'' {
			return nil, 0, errEnum(j)
		}
		label, j2, err := parseEnumLabel(s, j)
		if err != nil {
			return nil, 0, err
		}
		j, err = expectEnumLit(s, j2, " = ")
		if err != nil {
			return nil, 0, err
		}

		neg := false
		if j < len(s) && s[j] == '-' {
			neg = true
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j == start {
			if j >= len(s) {
				return nil, 0, errEnd(s)
			}
			return nil, 0, errEnum(j)
		}
		value, err := strconv.Atoi(s[start:j])
		if err != nil {
			return nil, 0, errEnum(start)
		}
		if neg {
			value = -value
		}
		node.Variants = append(node.Variants, EnumVariant{Label: label, Value: value})

		if j >= len(s) {
			return nil, 0, errEnd(s)
		}
		switch s[j] {
		case ')':
			return node, j + 1, nil
		case ',':
			j, err = expectEnumLit(s, j, ", ")
			if err != nil {
				return nil, 0, err
			}
		default:
			return nil, 0, errEnum(j)
		}
	}
}

// parseEnumLabel scans a single-quoted enum label starting at the opening
// quote. Backslash escapes are kept verbatim unless the label contains a
// \xNN byte escape; in that case the assembled bytes are decoded as UTF-8
// when valid, and the raw escaped spelling is kept when they are not.
func parseEnumLabel(s string, i int) (string, int, error) {
	j := i + 1
	hasBytes := false
	for j < len(s) {
		switch s[j] {
		case '\\':
			if j+1 < len(s) && s[j+1] == 'x' {
				hasBytes = true
			}
			j += 2
		case '\'':
			raw := s[i+1 : j]
			if hasBytes {
				if decoded, ok := decodeLabelBytes(raw); ok {
					return decoded, j + 1, nil
				}
			}
			return raw, j + 1, nil
		default:
			j++
		}
	}
	return "", 0, errUnterminated(s)
}

// decodeLabelBytes interprets the escape sequences of a raw enum label
// and reports whether the resulting bytes form valid UTF-8. A malformed
// escape also fails the decode, leaving the caller with the raw form.
func decodeLabelBytes(raw string) (string, bool) {
	buf := make([]byte, 0, len(raw))
	for k := 0; k < len(raw); {
		c := raw[k]
		if c != '\\' {
			buf = append(buf, c)
			k++
			continue
		}
		if k+1 >= len(raw) {
			return "", false
		}
		e := raw[k+1]
		switch {
		case e == 'x':
			if k+3 >= len(raw) {
				return "", false
			}
			hi, ok1 := hexDigit(raw[k+2])
			lo, ok2 := hexDigit(raw[k+3])
			if !ok1 || !ok2 {
				return "", false
			}
			buf = append(buf, hi<<4|lo)
			k += 4
		case e >= '0' && e <= '7':
			v := 0
			n := 0
			for n < 3 && k+1+n < len(raw) && raw[k+1+n] >= '0' && raw[k+1+n] <= '7' {
				v = v*8 + int(raw[k+1+n]-'0')
				n++
			}
			buf = append(buf, byte(v))
			k += 1 + n
		default:
			if b, ok := simpleEscapes[e]; ok {
				buf = append(buf, b)
			} else {
				buf = append(buf, '\\', e)
			}
			k += 2
		}
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	return string(buf), true
}

var simpleEscapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  0x07,
	'b':  0x08,
	'f':  0x0c,
	'n':  0x0a,
	'r':  0x0d,
	't':  0x09,
	'v':  0x0b,
}

// parseGeneric is the fallback production: a maximal run of word bytes,
// optionally followed by a parenthesized parameter list.
func parseGeneric(s string, i int) (*Node, int, error) {
	j := i
	for j < len(s) && isWordByte(s[j]) {
		j++
	}
	if j == i {
		if i >= len(s) {
			return nil, 0, errEnd(s)
		}
		return nil, 0, errUnknown(s, i)
	}
	name := s[i:j]
	if j < len(s) && s[j] == '(' {
		params, j2, err := parseParams(s, j)
		if err != nil {
			return nil, 0, err
		}
		return &Node{Kind: KindParameterized, Name: name, Params: params}, j2, nil
	}
	return &Node{Kind: KindSimple, Name: name}, j, nil
}

// parseParams captures the balanced parameter group opening at i and
// splits its content on top-level commas. Parameters stay opaque:
// nested parentheses and quoted literals are skipped, not interpreted.
func parseParams(s string, i int) ([]string, int, error) {
	depth := 0
	j := i
	for j < len(s) {
		switch s[j] {
		case '\'':
			j++
			for {
				if j >= len(s) {
					return nil, 0, errUnterminated(s)
				}
				if s[j] == '\\' {
					j += 2
					continue
				}
				if s[j] == '\'' {
					break
				}
				j++
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return splitParams(s[i+1 : j]), j + 1, nil
			}
		}
		j++
	}
	return nil, 0, errEnd(s)
}

// splitParams splits a parameter group body on top-level commas, trimming
// the single space ClickHouse renders after each separator.
func splitParams(content string) []string {
	if content == "" {
		return nil
	}
	var params []string
	depth := 0
	start := 0
	for j := 0; j < len(content); j++ {
		switch content[j] {
		case '\'':
			j++
			for j < len(content) && content[j] != '\'' {
				if content[j] == '\\' {
					j++
				}
				j++
			}
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimPrefix(content[start:j], " "))
				start = j + 1
			}
		}
	}
	params = append(params, strings.TrimPrefix(content[start:], " "))
	return params
}

// --- low-level scanning helpers ---

// hasAt reports whether lit occurs at offset i.
func hasAt(s string, i int, lit string) bool {
	return strings.HasPrefix(s[i:], lit)
}

// expectLit consumes lit at offset i, failing with ErrUnexpectedEnd when
// the input stops short and ErrUnknownType on a mismatch.
func expectLit(s string, i int, lit string) (int, error) {
	for k := 0; k < len(lit); k++ {
		if i+k >= len(s) {
			return 0, errEnd(s)
		}
		if s[i+k] != lit[k] {
			return 0, errUnknown(s, i+k)
		}
	}
	return i + len(lit), nil
}

// expectEnumLit is expectLit with enum-flavored mismatch errors.
func expectEnumLit(s string, i int, lit string) (int, error) {
	for k := 0; k < len(lit); k++ {
		if i+k >= len(s) {
			return 0, errEnd(s)
		}
		if s[i+k] != lit[k] {
			return 0, errEnum(i + k)
		}
	}
	return i + len(lit), nil
}

// scanInt consumes a run of decimal digits at offset i.
func scanInt(s string, i int) (int, int, error) {
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == i {
		if i >= len(s) {
			return 0, 0, errEnd(s)
		}
		return 0, 0, errUnknown(s, i)
	}
	v, err := strconv.Atoi(s[i:j])
	if err != nil {
		return 0, 0, errUnknown(s, i)
	}
	return v, j, nil
}

// scanQuoted consumes text up to the next single quote; i points at the
// first content byte. Timezone names cannot contain quotes, so no escape
// handling is needed here.
func scanQuoted(s string, i int) (string, int, error) {
	j := strings.IndexByte(s[i:], '\'')
	if j < 0 {
		return "", 0, errUnterminated(s)
	}
	return s[i : i+j], i + j + 1, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) || c == '_'
}
