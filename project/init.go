package project

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/diag"
)

var tocKinds = []string{"function", "enum", "define", "variable", "struct", "union", "group"}

// FindHeaders lists the .h files under dir in lexical order, relative
// to dir and slash-separated. Hidden directories are skipped.
func FindHeaders(dir string) ([]string, error) {
	var headers []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".h" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		headers = append(headers, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, diag.Wrapf(err, diag.KindIO, "scan %s", dir)
	}
	return headers, nil
}

// Init writes a starter hdoc.hcl for the headers found under rootDir.
func Init(rootDir string, w io.Writer) error {
	headers, err := FindHeaders(rootDir)
	if err != nil {
		return err
	}
	log.Infof("found %d headers in %s", len(headers), rootDir)

	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("source_directory", cty.StringVal(DefaultSourceDirectory))
	body.SetAttributeValue("output_directory", cty.StringVal(DefaultOutputDirectory))
	body.SetAttributeValue("sources", stringList(headers))
	body.SetAttributeValue("predefined", cty.ListValEmpty(cty.String))

	body.AppendNewline()
	style := body.AppendNewBlock("style", nil).Body()
	style.SetAttributeValue("based_on", cty.StringVal(c.DefaultStyle.BasedOn))
	style.SetAttributeValue("column_limit", cty.NumberIntVal(int64(c.DefaultStyle.ColumnLimit)))

	body.AppendNewline()
	render := body.AppendNewBlock("render", nil).Body()
	render.SetAttributeValue("heading_level", cty.NumberIntVal(DefaultHeadingLevel))
	toc := render.AppendNewBlock("toc", nil).Body()
	for _, kind := range tocKinds {
		toc.SetAttributeValue(kind, cty.True)
	}

	if _, err := f.WriteTo(w); err != nil {
		return diag.Wrap(err, diag.KindIO, "write project file")
	}
	return nil
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
