package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/diag"
	"github.com/dhamidi/hdoc/format"
)

var artifactNames = map[string]string{
	"md":   "index.md",
	"json": "api.json",
	"yaml": "api.yaml",
	"line": "api.txt",
}

type artifact struct {
	path string
	data []byte
}

// renderArtifacts encodes the tree in every requested format. Nothing
// is written until all of them have encoded.
func renderArtifacts(tree *c.Tree, formats []string, outDir string, render format.Render, style c.Style) ([]artifact, error) {
	artifacts := make([]artifact, 0, len(formats))
	for _, f := range formats {
		name, ok := artifactNames[f]
		if !ok {
			return nil, fmt.Errorf("unknown format: %s", f)
		}
		var buf bytes.Buffer
		var enc format.Encoder
		switch f {
		case "md":
			enc = format.NewMarkdownEncoder(&buf, render)
		case "json":
			enc = format.NewJSONEncoder(&buf).WithStyle(style)
		case "yaml":
			enc = format.NewYAMLEncoder(&buf).WithStyle(style)
		case "line":
			enc = format.NewLineEncoder(&buf)
		}
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		artifacts = append(artifacts, artifact{path: filepath.Join(outDir, name), data: buf.Bytes()})
	}
	return artifacts, nil
}

func writeArtifacts(artifacts []artifact) (int64, error) {
	var written int64
	for _, a := range artifacts {
		if err := os.WriteFile(a.path, a.data, 0644); err != nil {
			return written, diag.Wrapf(err, diag.KindIO, "write %s", a.path)
		}
		log.Infof("wrote %s", a.path)
		written += int64(len(a.data))
	}
	return written, nil
}

func newBuildCmd(projectDir *string) *cobra.Command {
	var formats []string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the documentation tree and write it to the output directory",
		Long: `Build the documentation tree and write it to the output directory.

Sources are read in the order hdoc.hcl lists them. Warnings are logged
and summarized; any fatal error aborts the build before anything is
written.

Formats:
  md    index.md, a single Markdown reference page
  json  api.json, the whole tree
  yaml  api.yaml, the whole tree
  line  api.txt, one tab-separated line per entity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildProject(cmd.Context(), *projectDir)
			if err != nil {
				return err
			}
			proj := result.project

			artifacts, err := renderArtifacts(result.tree, formats, proj.OutDir, proj.Render(), proj.Style())
			if err != nil {
				return err
			}
			if err := proj.EnsureOutDir(); err != nil {
				return err
			}
			written, err := writeArtifacts(artifacts)
			if err != nil {
				return err
			}

			fmt.Printf("built %s entities from %s files (%s)\n",
				humanize.Comma(int64(result.tree.Len())),
				humanize.Comma(int64(len(proj.SourcePaths()))),
				humanize.Bytes(uint64(result.bytesRead)))
			fmt.Printf("wrote %s to %s\n", humanize.Bytes(uint64(written)), proj.OutDir)
			fmt.Printf("warnings: %s\n", result.report.Summary())
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"md", "json", "yaml"}, "artifacts to write (md, json, yaml, line)")

	return cmd
}
