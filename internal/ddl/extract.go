// Package ddl pulls CHECK constraints and data-skipping indexes out of
// SHOW CREATE TABLE output.
//
// ClickHouse reports these only inside the CREATE statement, so the
// introspector scans the statement text instead of a catalog view. The
// scans are permissive: anything that does not match the two patterns is
// skipped, never an error.
package ddl

import "regexp"

// ConstraintKind discriminates the two things the DDL scan can find.
type ConstraintKind string

const (
	ConstraintCheck ConstraintKind = "check"
	ConstraintIndex ConstraintKind = "index"
)

// Constraint is one CHECK constraint or skipping index found in a
// table's DDL.
type Constraint struct {
	Name string         `json:"name"`
	Kind ConstraintKind `json:"kind"`

	// Expression is the CHECK clause (including the CHECK keyword) for
	// checks and the indexed expression for indexes.
	Expression string `json:"expression"`

	// EngineType and Definition are set for indexes only: the index
	// engine identifier and the full definition clause.
	EngineType string `json:"engine_type,omitempty"`
	Definition string `json:"definition,omitempty"`
}

// Identifier quoting is asymmetric: a backtick-quoted name may contain
// escaped characters and whitespace and requires its closing backtick,
// while a bare name simply runs to the next whitespace. The quoted
// branch of the alternation is tried first, which preserves that rule
// under leftmost-first matching.
var (
	checkPattern = regexp.MustCompile("CONSTRAINT (?:`((?:[^\\\\`]|\\\\.)+)`|(\\S+)) (CHECK .+?),?\n")
	indexPattern = regexp.MustCompile("INDEX (?:`((?:[^\\\\`]|\\\\.)+)`|(\\S+)) ((.+?) TYPE ([a-zA-Z_][0-9a-zA-Z_]*)\\(.+?\\) GRANULARITY \\d+)")
)

// Extract scans statement for constraints and indexes and returns them
// keyed by name. A name that recurs keeps its last occurrence; index
// entries are scanned second, so they win over a check of the same name.
// Quoted names keep their raw spelling: escapes are not interpreted.
func Extract(statement string) map[string]Constraint {
	found := make(map[string]Constraint)

	for _, m := range checkPattern.FindAllStringSubmatch(statement, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		found[name] = Constraint{
			Name:       name,
			Kind:       ConstraintCheck,
			Expression: m[3],
		}
	}

	for _, m := range indexPattern.FindAllStringSubmatch(statement, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		found[name] = Constraint{
			Name:       name,
			Kind:       ConstraintIndex,
			Expression: m[4],
			EngineType: m[5],
			Definition: m[3],
		}
	}

	return found
}
