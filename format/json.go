package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/hdoc/c"
)

type JSONEncoder struct {
	w     io.Writer
	tree  *c.Tree
	style c.Style
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w, style: c.DefaultStyle}
}

// WithStyle sets the style signatures are rendered in.
func (e *JSONEncoder) WithStyle(style c.Style) *JSONEncoder {
	e.style = style
	return e
}

func (e *JSONEncoder) Encode(tree *c.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(buildDocument(e.tree, e.style), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
