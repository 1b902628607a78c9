package main

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/parser"
	"github.com/dhamidi/hdoc/diag"
	"github.com/dhamidi/hdoc/project"
)

// buildResult is a loaded project and the tree built from it.
type buildResult struct {
	project *project.Project
	tree    *c.Tree
	report  *diag.Report
	// bytesRead is the total size of the sources.
	bytesRead int64
}

func buildProject(ctx context.Context, dir string) (*buildResult, error) {
	proj, err := project.LoadFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	fsys := proj.FS()
	builder := c.NewBuilder(
		c.WithFS(fsys),
		c.WithFrontend(parser.NewExtractor(parser.WithPredefined(proj.Predefined()))),
	)
	tree, report, err := builder.Build(ctx, proj.SourcePaths())
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", proj.ConfigFile, err)
	}
	for _, w := range report.Warnings() {
		log.Warning(w.String())
	}

	var size int64
	for _, src := range proj.SourcePaths() {
		if info, err := fs.Stat(fsys, src); err == nil {
			size += info.Size()
		}
	}
	return &buildResult{project: proj, tree: tree, report: report, bytesRead: size}, nil
}
