package format

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/hdoc/c"
)

type YAMLEncoder struct {
	w     io.Writer
	tree  *c.Tree
	style c.Style
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w, style: c.DefaultStyle}
}

// WithStyle sets the style signatures are rendered in.
func (e *YAMLEncoder) WithStyle(style c.Style) *YAMLEncoder {
	e.style = style
	return e
}

func (e *YAMLEncoder) Encode(tree *c.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(buildDocument(e.tree, e.style)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
