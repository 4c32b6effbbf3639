package sig

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedSignature = errors.New("malformed signature")
	ErrInvalidAST         = errors.New("invalid signature tree")
)

// MalformedSignatureError reports the position at which a signature
// stopped matching the grammar.
type MalformedSignatureError struct {
	Signature string
	Offset    int  // byte offset into Signature
	Char      rune // offending character, 0 if EOF
	EOF       bool
	Expected  string
}

func (e *MalformedSignatureError) Error() string {
	got := "end of input"
	if !e.EOF {
		got = fmt.Sprintf("%q", e.Char)
	}
	return fmt.Sprintf("malformed signature %q at offset %d: unexpected %s, expected %s",
		e.Signature, e.Offset, got, e.Expected)
}

func (e *MalformedSignatureError) Is(target error) bool {
	return target == ErrMalformedSignature
}

// InvalidASTError describes a hand-built tree that cannot be written as a
// valid signature. Path locates the node, e.g. "params[1].elem".
type InvalidASTError struct {
	Path   string
	Reason string
}

func (e *InvalidASTError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid signature tree: %s", e.Reason)
	}
	return fmt.Sprintf("invalid signature tree at %s: %s", e.Path, e.Reason)
}

func (e *InvalidASTError) Is(target error) bool {
	return target == ErrInvalidAST
}
