package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/doxygen"
)

// LineEncoder writes one tab-separated line per indexed entity:
// kind, id, location, signature and summary. It is meant for grep and
// cut.
type LineEncoder struct {
	w    io.Writer
	tree *c.Tree
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *c.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, ent := range e.tree.All() {
		obj := ent.Base()
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\n",
			lineKind(ent),
			obj.ID,
			obj.Location,
			strings.Join(strings.Fields(c.Signature(ent, c.DefaultStyle)), " "),
			orDash(doxygen.Summary(obj.Description)),
		)
	}
	return []byte(sb.String()), nil
}

func lineKind(ent c.Entity) string {
	if compound, ok := ent.(*c.Compound); ok {
		return string(compound.Type)
	}
	return string(ent.Kind())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
