package project

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/hdoc/diag"
)

const (
	HCLFile  = "hdoc.hcl"
	YAMLFile = "hdoc.yaml"

	DefaultSourceDirectory = "."
	DefaultOutputDirectory = "site/api"
	DefaultHeadingLevel    = 2
)

// Config is the decoded project file. The same shape is read from
// hdoc.hcl and hdoc.yaml.
type Config struct {
	SourceDirectory string        `hcl:"source_directory,optional" yaml:"source_directory"`
	OutputDirectory string        `hcl:"output_directory,optional" yaml:"output_directory"`
	Sources         []string      `hcl:"sources" yaml:"sources"`
	Predefined      []string      `hcl:"predefined,optional" yaml:"predefined"`
	Style           *StyleConfig  `hcl:"style,block" yaml:"style"`
	Render          *RenderConfig `hcl:"render,block" yaml:"render"`
}

type StyleConfig struct {
	BasedOn     string `hcl:"based_on,optional" yaml:"based_on"`
	ColumnLimit int    `hcl:"column_limit,optional" yaml:"column_limit"`
}

type RenderConfig struct {
	HeadingLevel *int       `hcl:"heading_level,optional" yaml:"heading_level"`
	TOC          *TOCConfig `hcl:"toc,block" yaml:"toc"`
}

// TOCConfig toggles table of contents entries per kind. Unset toggles
// are on.
type TOCConfig struct {
	Function *bool `hcl:"function,optional" yaml:"function"`
	Enum     *bool `hcl:"enum,optional" yaml:"enum"`
	Define   *bool `hcl:"define,optional" yaml:"define"`
	Variable *bool `hcl:"variable,optional" yaml:"variable"`
	Struct   *bool `hcl:"struct,optional" yaml:"struct"`
	Union    *bool `hcl:"union,optional" yaml:"union"`
	Group    *bool `hcl:"group,optional" yaml:"group"`
}

// ParseHCL decodes an hdoc.hcl file.
func ParseHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diag.Wrapf(diags, diag.KindConfig, "parse %s", filename)
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, diag.Wrapf(diags, diag.KindConfig, "decode %s", filename)
	}
	if err := cfg.validate(filename); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseYAML decodes an hdoc.yaml file.
func ParseYAML(data []byte, filename string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, diag.Wrapf(err, diag.KindConfig, "decode %s", filename)
	}
	if err := cfg.validate(filename); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate(filename string) error {
	if cfg.SourceDirectory == "" {
		cfg.SourceDirectory = DefaultSourceDirectory
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = DefaultOutputDirectory
	}
	if len(cfg.Sources) == 0 {
		return configError(filename, "sources", "no sources configured")
	}
	for i, src := range cfg.Sources {
		clean := path.Clean(filepath.ToSlash(src))
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return configError(filename, "sources", fmt.Sprintf("source %q is outside the source directory", src))
		}
		cfg.Sources[i] = clean
	}
	for _, def := range cfg.Predefined {
		name, _, _ := strings.Cut(def, "=")
		if strings.TrimSpace(name) == "" {
			return configError(filename, "predefined", fmt.Sprintf("predefined macro %q has no name", def))
		}
	}
	if cfg.Render != nil && cfg.Render.HeadingLevel != nil {
		if level := *cfg.Render.HeadingLevel; level < 1 || level > 6 {
			return configError(filename, "render.heading_level", fmt.Sprintf("heading level %d is outside 1-6", level))
		}
	}
	return nil
}

func configError(filename, key, msg string) error {
	err := diag.Errorf(diag.KindConfig, "%s: %s", filename, msg)
	err = diag.Attr(err, "file", filename)
	return diag.Attr(err, "key", key)
}
