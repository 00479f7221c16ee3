package chtype

import "fmt"

// ErrKind classifies a type string parse failure.
type ErrKind int

const (
	// ErrUnexpectedEnd means the input stopped inside a production.
	ErrUnexpectedEnd ErrKind = iota
	// ErrUnknownType means no production matched at the failure position,
	// or characters remained after a complete parse.
	ErrUnknownType
	// ErrMalformedEnumLiteral means an enum body violated the
	// 'label' = value grammar.
	ErrMalformedEnumLiteral
	// ErrUnterminatedString means a quoted literal never closed.
	ErrUnterminatedString
)

func (k ErrKind) String() string {
	switch k {
	case ErrUnexpectedEnd:
		return "unexpected_end"
	case ErrUnknownType:
		return "unknown_type"
	case ErrMalformedEnumLiteral:
		return "malformed_enum_literal"
	case ErrUnterminatedString:
		return "unterminated_string"
	default:
		return "unknown"
	}
}

// ParseError reports why a type string could not be decoded. Pos is the
// byte offset of the failure; Prefix holds the unconsumed text for
// ErrUnknownType failures.
type ParseError struct {
	Kind   ErrKind
	Pos    int
	Prefix string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnexpectedEnd:
		return fmt.Sprintf("type string ended unexpectedly at offset %d", e.Pos)
	case ErrUnknownType:
		return fmt.Sprintf("unrecognized type syntax at offset %d: %q", e.Pos, e.Prefix)
	case ErrMalformedEnumLiteral:
		return fmt.Sprintf("malformed enum literal at offset %d", e.Pos)
	case ErrUnterminatedString:
		return fmt.Sprintf("unterminated string literal at offset %d", e.Pos)
	default:
		return fmt.Sprintf("type string parse error at offset %d", e.Pos)
	}
}

func errEnd(s string) *ParseError {
	return &ParseError{Kind: ErrUnexpectedEnd, Pos: len(s)}
}

func errUnknown(s string, pos int) *ParseError {
	return &ParseError{Kind: ErrUnknownType, Pos: pos, Prefix: s[pos:]}
}

func errEnum(pos int) *ParseError {
	return &ParseError{Kind: ErrMalformedEnumLiteral, Pos: pos}
}

func errUnterminated(s string) *ParseError {
	return &ParseError{Kind: ErrUnterminatedString, Pos: len(s)}
}
