package gen

import (
	"strconv"
	"strings"
	"unicode"
)

// initialisms are chunks rendered fully upper-case, following the
// convention the standard library and most generated code use.
var initialisms = map[string]string{
	"id":   "ID",
	"ip":   "IP",
	"url":  "URL",
	"uri":  "URI",
	"uuid": "UUID",
	"json": "JSON",
	"sql":  "SQL",
	"ttl":  "TTL",
	"api":  "API",
	"http": "HTTP",
	"db":   "DB",
}

// exportedIdent converts a table or column name into an exported Go
// identifier: the name is split on non-alphanumeric runs, each chunk is
// capitalised (initialisms fully), and a leading digit gets an X
// prefix so the result is a legal identifier.
func exportedIdent(name string) string {
	var b strings.Builder
	for _, chunk := range splitChunks(name) {
		if up, ok := initialisms[strings.ToLower(chunk)]; ok {
			b.WriteString(up)
			continue
		}
		r := []rune(chunk)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}

	ident := b.String()
	if ident == "" || unicode.IsDigit(rune(ident[0])) {
		ident = "X" + ident
	}
	return ident
}

// splitChunks breaks a raw name on every non-alphanumeric run.
func splitChunks(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// identSet hands out unique identifiers, suffixing repeats with a
// counter: ID, ID2, ID3, ...
type identSet struct {
	used map[string]bool
}

func newIdentSet(reserved ...string) *identSet {
	s := &identSet{used: make(map[string]bool, len(reserved))}
	for _, r := range reserved {
		s.used[r] = true
	}
	return s
}

func (s *identSet) claim(ident string) string {
	if !s.used[ident] {
		s.used[ident] = true
		return ident
	}
	for n := 2; ; n++ {
		candidate := ident + strconv.Itoa(n)
		if !s.used[candidate] {
			s.used[candidate] = true
			return candidate
		}
	}
}
