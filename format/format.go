// Package format renders a built documentation tree. The encoders here
// are reference consumers of the tree: machine-readable dumps and a
// single Markdown reference page.
package format

import (
	"encoding"

	"github.com/dhamidi/hdoc/c"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(tree *c.Tree) error
}
