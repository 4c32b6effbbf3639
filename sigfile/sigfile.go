// Package sigfile reads signature vector files.
//
// A vector file holds one signature per line, preceded by its kind:
//
//	# comment
//	class  <T:Ljava/lang/Object;>Ljava/lang/Object;
//	field  Ljava/util/List<TT;>;
//	method (TT;)V
//
// Blank lines and lines starting with # are ignored.
package sigfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sigkit/roundtrip"
	"github.com/dhamidi/sigkit/sig"
)

// Line is one signature line. Number is 1-based; Column is the 0-based byte
// offset of Text within the line.
type Line struct {
	Number int
	Column int
	Kind   sig.Kind
	Text   string
}

type LineError struct {
	Line   int
	Column int
	Msg    string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column+1, e.Msg)
}

// ParseErrors collects every bad line of a file.
type ParseErrors []*LineError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, le := range e {
		msgs[i] = le.Error()
	}
	return strings.Join(msgs, "\n")
}

const maxLineSize = 1 << 20

// Parse reads a vector file. Lines that are not of the form "<kind> <text>"
// are reported in a ParseErrors error alongside the lines that were read.
func Parse(r io.Reader) ([]Line, error) {
	var lines []Line
	var bad ParseErrors

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		body := strings.TrimLeft(raw, " \t")
		if body == "" || strings.HasPrefix(body, "#") {
			continue
		}
		indent := len(raw) - len(body)

		kindText, rest := body, ""
		if i := strings.IndexAny(body, " \t"); i >= 0 {
			kindText, rest = body[:i], body[i:]
		}
		kind, ok := sig.ParseKind(kindText)
		if !ok {
			bad = append(bad, &LineError{Line: n, Column: indent, Msg: fmt.Sprintf("unknown signature kind %q", kindText)})
			continue
		}
		text := strings.TrimLeft(rest, " \t")
		if text == "" {
			bad = append(bad, &LineError{Line: n, Column: len(raw), Msg: "missing signature"})
			continue
		}
		lines = append(lines, Line{
			Number: n,
			Column: len(raw) - len(text),
			Kind:   kind,
			Text:   text,
		})
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("read line %d: %w", n+1, err)
	}
	if len(bad) > 0 {
		return lines, bad
	}
	return lines, nil
}

// Items converts lines to checker input, naming each by source and line.
func Items(source string, lines []Line) []roundtrip.Item {
	items := make([]roundtrip.Item, len(lines))
	for i, l := range lines {
		items[i] = roundtrip.Item{
			Source: fmt.Sprintf("%s:%d", source, l.Number),
			Kind:   l.Kind,
			Text:   l.Text,
		}
	}
	return items
}

// Diagnostic describes a line that failed to parse or round-trip. Column
// and EndColumn are 0-based byte offsets within the line.
type Diagnostic struct {
	Line      int
	Column    int
	EndColumn int
	Message   string
}

func Diagnose(lines []Line, opts ...sig.Option) []Diagnostic {
	var out []Diagnostic
	for _, l := range lines {
		err := roundtrip.Verify(l.Kind, l.Text, opts...)
		if err == nil {
			continue
		}
		d := Diagnostic{
			Line:      l.Number,
			Column:    l.Column,
			EndColumn: l.Column + len(l.Text),
			Message:   err.Error(),
		}
		var malformed *sig.MalformedSignatureError
		if errors.As(err, &malformed) {
			d.Column = l.Column + malformed.Offset
			d.EndColumn = d.Column + 1
			if malformed.EOF {
				d.EndColumn = d.Column
			}
		}
		out = append(out, d)
	}
	return out
}

// ErrorDiagnostics converts parse errors to diagnostics so both can be
// reported the same way.
func ErrorDiagnostics(err error) []Diagnostic {
	var bad ParseErrors
	if !errors.As(err, &bad) {
		return nil
	}
	out := make([]Diagnostic, len(bad))
	for i, le := range bad {
		out[i] = Diagnostic{Line: le.Line, Column: le.Column, EndColumn: le.Column, Message: le.Msg}
	}
	return out
}
