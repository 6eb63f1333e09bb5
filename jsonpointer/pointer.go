// Package jsonpointer parses RFC 6901 JSON Pointers and extracts the values
// they address from decoded documents.
package jsonpointer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/reoring/schemaref/document"
)

var (
	// ErrNotFound reports a key or index absent from the document.
	ErrNotFound = errors.New("pointer target not found")
	// ErrInvalidIndex reports a token that cannot index a sequence.
	ErrInvalidIndex = errors.New("invalid array index")
	// ErrSyntax reports a non-empty pointer that does not start with '/'.
	ErrSyntax = errors.New("pointer must start with '/'")
)

// Error describes a failed step of Extract.
type Error struct {
	Pointer string // prefix of the pointer up to and including the failing token
	Token   string
	Err     error
}

func (e *Error) Error() string {
	return e.Err.Error() + ": " + strconv.Quote(e.Token) + " at " + e.Pointer
}

func (e *Error) Unwrap() error { return e.Err }

// Pointer is an ordered sequence of unescaped reference tokens. The zero value
// addresses the whole document.
type Pointer struct {
	tokens []string
}

// Parse decodes s. The empty string is the root pointer; anything else must
// start with '/'.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != '/' {
		return Pointer{}, &Error{Pointer: s, Token: s, Err: ErrSyntax}
	}
	return Pointer{tokens: splitTokens(s[1:])}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromTokens builds a pointer from already unescaped tokens.
func FromTokens(tokens ...string) Pointer {
	return Pointer{tokens: append([]string(nil), tokens...)}
}

// splitTokens splits on '/' and unescapes each token. "~1" is replaced before
// "~0" so that "~01" yields the literal "~1".
func splitTokens(s string) []string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = Unescape(p)
	}
	return parts
}

// Unescape decodes a single reference token.
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// Escape encodes a single reference token.
func Escape(token string) string { return escaper.Replace(token) }

// Tokens returns a copy of the unescaped tokens.
func (p Pointer) Tokens() []string { return append([]string(nil), p.tokens...) }

// IsRoot reports whether p addresses the whole document.
func (p Pointer) IsRoot() bool { return len(p.tokens) == 0 }

// Field returns p extended by an object key.
func (p Pointer) Field(name string) Pointer {
	return Pointer{tokens: append(append([]string(nil), p.tokens...), name)}
}

// Index returns p extended by an array index.
func (p Pointer) Index(i int) Pointer {
	return p.Field(strconv.Itoa(i))
}

// String renders p in escaped form; the root pointer renders as "".
func (p Pointer) String() string {
	if len(p.tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// Extract walks doc token by token. Objects (*document.Object or
// map[string]any) are indexed by key, arrays by non-negative decimal index.
func (p Pointer) Extract(doc any) (any, error) {
	cur := doc
	for i, tok := range p.tokens {
		next, err := step(cur, tok)
		if err != nil {
			return nil, &Error{Pointer: Pointer{tokens: p.tokens[:i+1]}.String(), Token: tok, Err: err}
		}
		cur = next
	}
	return cur, nil
}

func step(cur any, tok string) (any, error) {
	switch t := cur.(type) {
	case *document.Object:
		if v, ok := t.Get(tok); ok {
			return v, nil
		}
		return nil, ErrNotFound
	case map[string]any:
		if v, ok := t[tok]; ok {
			return v, nil
		}
		return nil, ErrNotFound
	case []any:
		idx, err := parseIndex(tok)
		if err != nil {
			return nil, err
		}
		if idx >= len(t) {
			return nil, ErrNotFound
		}
		return t[idx], nil
	default:
		return nil, ErrNotFound
	}
}

func parseIndex(tok string) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, ErrInvalidIndex
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, ErrInvalidIndex
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrNotFound
		}
		return 0, ErrInvalidIndex
	}
	return n, nil
}
