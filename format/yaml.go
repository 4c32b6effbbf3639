package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/sigkit/roundtrip"
)

type YAMLEncoder struct {
	w io.Writer
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(r *roundtrip.Report) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(reportData(r)); err != nil {
		return err
	}
	return enc.Close()
}
