package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/sigkit/roundtrip"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(r *roundtrip.Report) error {
	text, err := e.MarshalText(r)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText(r *roundtrip.Report) ([]byte, error) {
	return json.MarshalIndent(reportData(r), "", "  ")
}

// jsonReport adds the verdict and a readable duration to a report.
type jsonReport struct {
	roundtrip.Report `yaml:",inline"`
	Elapsed          string `json:"elapsed" yaml:"elapsed"`
	OK               bool   `json:"ok" yaml:"ok"`
}

func reportData(r *roundtrip.Report) jsonReport {
	return jsonReport{Report: *r, Elapsed: r.Elapsed.String(), OK: r.OK()}
}
