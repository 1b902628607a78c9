package c

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/hdoc/c/parser"
	"github.com/dhamidi/hdoc/diag"
)

// Frontend turns the source of one file into raw declarations.
// *parser.Extractor is the default implementation.
type Frontend interface {
	Extract(path string, src []byte) (*parser.File, error)
}

// Builder assembles the documentation tree of a list of files.
type Builder struct {
	fsys     fs.FS
	frontend Frontend
	workers  int
	log      commonlog.Logger
}

type Option func(*Builder)

// WithFS sets the file system source paths are read from. Paths are
// slash-separated and relative to its root.
func WithFS(fsys fs.FS) Option {
	return func(b *Builder) {
		b.fsys = fsys
	}
}

func WithFrontend(frontend Frontend) Option {
	return func(b *Builder) {
		b.frontend = frontend
	}
}

// WithWorkers bounds the number of files extracted concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fsys:     os.DirFS("."),
		frontend: parser.NewExtractor(),
		workers:  runtime.GOMAXPROCS(0),
		log:      commonlog.GetLogger("hdoc.model"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build extracts every file concurrently, then resolves groups and
// cross-references over the whole set. Fatal errors abort the build;
// everything else ends up in the report. When several files fail, the
// error of the first one in list order is returned.
func (b *Builder) Build(ctx context.Context, files []string) (*Tree, *diag.Report, error) {
	models := make([]*fileModel, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			models[i], errs[i] = b.buildFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	report := &diag.Report{}
	for _, fm := range models {
		report.Merge(&fm.report)
	}

	tree := newTree()
	for _, fm := range models {
		for _, e := range fm.entities {
			if err := tree.register(e); err != nil {
				return nil, nil, err
			}
			tree.entities = append(tree.entities, e)
		}
		for _, a := range fm.aliases {
			if _, ok := tree.aliases[a.name]; !ok {
				tree.aliases[a.name] = a.target
			}
		}
	}

	groups, err := resolveGroups(tree, models, report)
	if err != nil {
		return nil, nil, err
	}
	tree.entities = append(tree.entities, groups...)

	resolveReferences(tree, report)

	b.log.Infof("built %d entities from %d files with %d warnings", tree.Len(), len(files), report.Len())
	return tree, report, nil
}

func (b *Builder) buildFile(file string) (*fileModel, error) {
	name := path.Clean(filepath.ToSlash(file))
	name = strings.TrimPrefix(name, "/")

	src, err := fs.ReadFile(b.fsys, name)
	if err != nil {
		return nil, diag.Attr(diag.Wrapf(err, diag.KindMissingSource, "read %s", file), "file", file)
	}
	b.log.Debugf("extracting %s", file)

	extracted, err := b.frontend.Extract(file, src)
	if err != nil {
		wrapped := diag.Attr(diag.Wrapf(err, diag.KindParse, "parse %s", file), "file", file)
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			wrapped = diag.Attr(wrapped, "line", syntaxErr.Pos.Line)
		}
		return nil, wrapped
	}
	return modelFromFile(extracted), nil
}
