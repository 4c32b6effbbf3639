// Package roundtrip checks the law write(parse(s)) == s over real class
// files and over hand-written signature vectors.
package roundtrip

import (
	"errors"
	"fmt"

	"github.com/dhamidi/sigkit/sig"
)

var ErrMismatch = errors.New("signature does not round-trip")

// MismatchError reports a signature that parsed but was written back
// differently.
type MismatchError struct {
	Kind sig.Kind
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s signature %q was written back as %q", e.Kind, e.Want, e.Got)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// Verify parses s as a signature of kind k and writes it back. It returns
// the parse error, a *MismatchError, or nil.
func Verify(k sig.Kind, s string, opts ...sig.Option) error {
	n, err := sig.Parse(s, k, opts...)
	if err != nil {
		return err
	}
	if got := sig.Write(n); got != s {
		return &MismatchError{Kind: k, Want: s, Got: got}
	}
	return nil
}
