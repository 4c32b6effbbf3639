package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/sigkit/roundtrip"
)

// ReportEncoder renders the result of a round-trip check.
type ReportEncoder interface {
	Encode(r *roundtrip.Report) error
}

var Formats = []string{"text", "json", "yaml"}

func NewReportEncoder(w io.Writer, format string) (ReportEncoder, error) {
	switch format {
	case "", "text":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}
