// Package project locates and decodes the hdoc project file and
// resolves the sources it lists.
package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/diag"
	"github.com/dhamidi/hdoc/format"
)

var log = commonlog.GetLogger("hdoc.project")

// Project is a documentation project rooted at the directory holding
// its project file.
type Project struct {
	RootDir    string
	ConfigFile string
	SrcDir     string
	OutDir     string
	Config     *Config
}

// Load reads the project file in the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom reads the project file in rootDir. hdoc.hcl is preferred
// over hdoc.yaml when both exist.
func LoadFrom(rootDir string) (*Project, error) {
	candidates := []struct {
		name  string
		parse func([]byte, string) (*Config, error)
	}{
		{HCLFile, ParseHCL},
		{YAMLFile, ParseYAML},
	}

	for _, candidate := range candidates {
		configFile := filepath.Join(rootDir, candidate.name)
		data, err := os.ReadFile(configFile)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, diag.Wrapf(err, diag.KindConfig, "read %s", configFile)
		}

		cfg, err := candidate.parse(data, configFile)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %s with %d sources", configFile, len(cfg.Sources))
		return &Project{
			RootDir:    rootDir,
			ConfigFile: configFile,
			SrcDir:     filepath.Join(rootDir, filepath.FromSlash(cfg.SourceDirectory)),
			OutDir:     filepath.Join(rootDir, filepath.FromSlash(cfg.OutputDirectory)),
			Config:     cfg,
		}, nil
	}

	return nil, diag.Errorf(diag.KindConfig, "could not detect project: no %s or %s in %s", HCLFile, YAMLFile, rootDir)
}

// SourcePaths returns the configured sources in order, relative to the
// source directory and slash-separated.
func (p *Project) SourcePaths() []string {
	return append([]string(nil), p.Config.Sources...)
}

// FS serves the source directory.
func (p *Project) FS() fs.FS {
	return os.DirFS(p.SrcDir)
}

func (p *Project) Predefined() []string {
	return p.Config.Predefined
}

// Style returns the signature style hint.
func (p *Project) Style() c.Style {
	style := c.DefaultStyle
	if s := p.Config.Style; s != nil {
		if s.BasedOn != "" {
			style.BasedOn = s.BasedOn
		}
		style.ColumnLimit = s.ColumnLimit
	}
	return style
}

// Render returns the rendering options, passed through with defaults
// filled in.
func (p *Project) Render() format.Render {
	render := format.DefaultRender()
	render.Style = p.Style()

	r := p.Config.Render
	if r == nil {
		return render
	}
	if r.HeadingLevel != nil {
		render.HeadingLevel = *r.HeadingLevel
	}
	if t := r.TOC; t != nil {
		toggle(&render.TOC.Function, t.Function)
		toggle(&render.TOC.Enum, t.Enum)
		toggle(&render.TOC.Define, t.Define)
		toggle(&render.TOC.Variable, t.Variable)
		toggle(&render.TOC.Struct, t.Struct)
		toggle(&render.TOC.Union, t.Union)
		toggle(&render.TOC.Group, t.Group)
	}
	return render
}

func toggle(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// EnsureOutDir creates the output directory if it doesn't exist.
func (p *Project) EnsureOutDir() error {
	if err := os.MkdirAll(p.OutDir, 0755); err != nil {
		return diag.Wrapf(err, diag.KindIO, "create %s", p.OutDir)
	}
	return nil
}
