package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dhamidi/sigkit/roundtrip"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextEncoder prints a summary for terminals. Styles degrade to plain text
// when the output is not a color terminal.
type TextEncoder struct {
	w io.Writer
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(r *roundtrip.Report) error {
	var b strings.Builder

	for _, f := range r.Failures {
		where := f.Source
		if f.Class != "" {
			where += " " + f.Class
		}
		if f.Member != "" {
			where += "." + f.Member
		}
		fmt.Fprintf(&b, "%s %s\n", failStyle.Render("FAIL"), where)
		fmt.Fprintf(&b, "     %s %s\n", f.Kind, f.Signature)
		if f.Got != "" {
			fmt.Fprintf(&b, "     %s %s\n", mutedStyle.Render("got"), f.Got)
		}
		fmt.Fprintf(&b, "     %s\n", mutedStyle.Render(f.Error))
	}
	for _, ce := range r.ClassErrors {
		fmt.Fprintf(&b, "%s %s: %s\n", failStyle.Render("ERROR"), ce.Source, ce.Error)
	}

	fmt.Fprintln(&b, titleStyle.Render("Summary"))
	fmt.Fprintf(&b, "  classes:    %d\n", r.Classes)
	fmt.Fprintf(&b, "  signatures: %d (%d distinct, %d cached)\n", r.Signatures, r.Distinct, r.CacheHits)
	kinds := make([]string, 0, len(r.ByKind))
	for k := range r.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "    %-7s %d\n", k, r.ByKind[k])
	}
	fmt.Fprintf(&b, "  elapsed:    %s\n", r.Elapsed)

	if r.OK() {
		fmt.Fprintf(&b, "%s\n", okStyle.Render("OK"))
	} else {
		fmt.Fprintf(&b, "%s %d failures, %d class errors\n", failStyle.Render("FAILED"), len(r.Failures), len(r.ClassErrors))
	}

	_, err := io.WriteString(e.w, b.String())
	return err
}
