package codebase

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/parser"
	"github.com/dhamidi/hdoc/project"
)

const lsName = "hdoc"

var log = commonlog.GetLogger("hdoc.lsp")

type LSPServer struct {
	codebase  *Codebase
	handler   protocol.Handler
	server    *server.Server
	version   string
	configDir string
	srcDir    string
}

// NewLSPServer returns a language server for the project in
// configDir. An empty configDir uses the workspace root sent by the
// client.
func NewLSPServer(version, configDir string) *LSPServer {
	ls := &LSPServer{
		codebase:  New(nil),
		version:   version,
		configDir: configDir,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentDefinition: ls.textDocumentDefinition,
		WorkspaceSymbol:        ls.workspaceSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if ls.configDir == "" {
		ls.configDir = "."
		if params.RootPath != nil && *params.RootPath != "" {
			ls.configDir = *params.RootPath
		} else if params.RootURI != nil && *params.RootURI != "" {
			if path, err := uriToPath(*params.RootURI); err == nil {
				ls.configDir = path
			}
		}
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// initialized builds the project once. A failed build leaves the
// server running with an empty index.
func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	proj, err := project.LoadFrom(ls.configDir)
	if err != nil {
		log.Errorf("load project: %s", err)
		return nil
	}
	ls.srcDir = proj.SrcDir

	builder := c.NewBuilder(
		c.WithFS(proj.FS()),
		c.WithFrontend(parser.NewExtractor(parser.WithPredefined(proj.Predefined()))),
	)
	tree, report, err := builder.Build(context.Background(), proj.SourcePaths())
	if err != nil {
		log.Errorf("build: %s", err)
		return nil
	}
	for _, w := range report.Warnings() {
		log.Warning(w.String())
	}
	ls.codebase.SetTree(tree, proj.Style())
	log.Infof("indexed %d entities from %d files", tree.Len(), len(proj.SourcePaths()))
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.RemoveFile(path)
	return nil
}

func (ls *LSPServer) wordAt(params protocol.TextDocumentPositionParams) string {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return ""
	}
	return ls.codebase.WordAtPoint(path, int(params.Position.Line)+1, int(params.Position.Character))
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := ls.codebase.Hover(ls.wordAt(params.TextDocumentPositionParams))
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	loc, ok := ls.codebase.Definition(ls.wordAt(params.TextDocumentPositionParams))
	if !ok {
		return nil, nil
	}
	return ls.location(loc), nil
}

func (ls *LSPServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var symbols []protocol.SymbolInformation
	for _, s := range ls.codebase.Symbols(params.Query) {
		info := protocol.SymbolInformation{
			Name:     s.Name,
			Kind:     symbolKind(s.Kind),
			Location: ls.location(s.Location),
		}
		if s.Container != "" {
			container := s.Container
			info.ContainerName = &container
		}
		symbols = append(symbols, info)
	}
	return symbols, nil
}

func (ls *LSPServer) location(loc c.Location) protocol.Location {
	pos := protocol.Position{
		Line:      protocol.UInteger(max(loc.Line-1, 0)),
		Character: protocol.UInteger(max(loc.Column-1, 0)),
	}
	return protocol.Location{
		URI:   pathToURI(filepath.Join(ls.srcDir, filepath.FromSlash(loc.File))),
		Range: protocol.Range{Start: pos, End: pos},
	}
}

func symbolKind(kind c.Kind) protocol.SymbolKind {
	switch kind {
	case c.KindFunction:
		return protocol.SymbolKindFunction
	case c.KindEnum:
		return protocol.SymbolKindEnum
	case c.KindEnumValue:
		return protocol.SymbolKindEnumMember
	case c.KindDefine:
		return protocol.SymbolKindConstant
	case c.KindVariable:
		return protocol.SymbolKindVariable
	case c.KindCompound:
		return protocol.SymbolKindStruct
	default:
		return protocol.SymbolKindNull
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
