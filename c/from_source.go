package c

import (
	"sort"

	"github.com/dhamidi/hdoc/c/doxygen"
	"github.com/dhamidi/hdoc/c/parser"
	"github.com/dhamidi/hdoc/diag"
)

// groupDef is a @defgroup found in a file.
type groupDef struct {
	id          string
	title       string
	description *doxygen.Description
	location    Location
}

// alias maps a typedef name to the tag it stands for.
type alias struct {
	name   string
	target string
}

// fileModel is the result of local assembly of one file.
type fileModel struct {
	path     string
	entities []Entity
	groups   []groupDef
	aliases  []alias
	report   diag.Report
}

// modelFromFile assembles the entities of one extracted file. It
// touches no shared state and runs concurrently with other files.
func modelFromFile(file *parser.File) *fileModel {
	fm := &fileModel{path: file.Path}

	for _, p := range file.Problems {
		code := diag.CodeUnsupportedDecl
		if p.Kind == parser.ProblemMacro {
			code = diag.CodeMacroExpansion
		}
		fm.report.Add(diag.Warning{Code: code, File: p.Pos.File, Line: p.Pos.Line, Column: p.Pos.Column, Message: p.Message})
	}

	for _, decl := range file.Declarations {
		if e := fm.entity(decl, ""); e != nil {
			fm.entities = append(fm.entities, e)
		}
		if decl.Alias != "" {
			fm.aliases = append(fm.aliases, alias{name: decl.Alias, target: decl.Name})
		}
	}
	for _, a := range file.Aliases {
		fm.aliases = append(fm.aliases, alias{name: a.Name, target: a.Target})
	}
	for _, comment := range file.Detached {
		doc := fm.parseComment(comment)
		if doc.Group == nil {
			continue
		}
		fm.defineGroup(doc, comment)
	}
	sort.SliceStable(fm.groups, func(i, j int) bool {
		a, b := fm.groups[i].location, fm.groups[j].location
		return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
	})
	return fm
}

func (fm *fileModel) defineGroup(doc *doxygen.Description, comment *parser.Comment) {
	def := *doc.Group
	doc.Group = nil
	fm.groups = append(fm.groups, groupDef{
		id:          def.ID,
		title:       def.Title,
		description: doc,
		location:    locationOf(comment.Span.Start),
	})
}

func locationOf(pos parser.Position) Location {
	return Location{File: pos.File, Line: pos.Line, Column: pos.Column}
}

// parseComment parses a comment, reporting its problems.
func (fm *fileModel) parseComment(comment *parser.Comment) *doxygen.Description {
	if comment == nil {
		return &doxygen.Description{}
	}
	doc, problems := doxygen.Parse(comment.Text)
	for _, p := range problems {
		code := diag.CodeCommentSyntax
		if p.Command == "param" {
			code = diag.CodeMalformedParam
		}
		pos := comment.Span.Start
		fm.report.Add(diag.Warning{Code: code, File: pos.File, Line: pos.Line, Column: pos.Column, Message: p.Message})
	}
	return doc
}

// describe builds the description of a declaration from its leading
// and trailing comments. A leading comment that defines a group
// documents the group instead.
func (fm *fileModel) describe(decl *parser.Declaration) *doxygen.Description {
	doc := fm.parseComment(decl.Comment)
	if doc.Group != nil {
		fm.defineGroup(doc, decl.Comment)
		doc = &doxygen.Description{}
	}
	if decl.Trailing == nil {
		return doc
	}
	trailing := fm.parseComment(decl.Trailing)
	if len(doc.Brief) == 0 {
		doc.Brief = trailing.Brief
	} else if len(trailing.Brief) > 0 {
		doc.Body = append(doc.Body, doxygen.Paragraph{Content: trailing.Brief})
	}
	doc.Body = append(doc.Body, trailing.Body...)
	doc.Params = append(doc.Params, trailing.Params...)
	doc.Groups = append(doc.Groups, trailing.Groups...)
	return doc
}

func (fm *fileModel) object(decl *parser.Declaration, scope string) Object {
	qualified := qualify(scope, decl.Name)
	return Object{
		ID:            IDFor(qualified),
		Name:          decl.Name,
		QualifiedName: qualified,
		Description:   fm.describe(decl),
		Location:      locationOf(decl.Span.Start),
	}
}

// entity converts one declaration. Struct and union members are
// qualified with scope; enum values always live in the global scope.
func (fm *fileModel) entity(decl *parser.Declaration, scope string) Entity {
	switch decl.Kind {
	case parser.DeclFunction:
		fn := &Function{Object: fm.object(decl, scope), ReturnType: decl.Type}
		fn.Parameters = make([]Parameter, len(decl.Params))
		for i, p := range decl.Params {
			fn.Parameters[i] = Parameter{Name: p.Name, Type: p.Type}
		}
		return fn

	case parser.DeclDefine:
		def := &Define{Object: fm.object(decl, scope), Value: decl.Value}
		if decl.FunctionLike {
			def.Parameters = append([]string{}, decl.MacroParams...)
		}
		return def

	case parser.DeclVariable:
		return &Variable{Object: fm.object(decl, scope), Type: decl.Type, Initializer: decl.Value}

	case parser.DeclEnumValue:
		return &EnumValue{Object: fm.object(decl, scope), Initializer: decl.Value}

	case parser.DeclEnum:
		enum := &Enum{Object: fm.object(decl, scope), Alias: decl.Alias}
		for _, member := range decl.Members {
			enum.Values = append(enum.Values, &EnumValue{
				Object:      fm.object(member, ""),
				Initializer: member.Value,
			})
		}
		return enum

	case parser.DeclCompound:
		compound := &Compound{
			Object: fm.object(decl, scope),
			Type:   CompoundType(decl.Tag),
			Alias:  decl.Alias,
		}
		for _, member := range decl.Members {
			if e := fm.entity(member, compound.QualifiedName); e != nil {
				compound.Members = append(compound.Members, e)
			}
		}
		return compound
	}
	return nil
}
