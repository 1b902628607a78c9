package parser

import (
	"strings"
	"testing"
)

const file1 = `#ifndef FILE1_H
#define FILE1_H

/**
 * A macro that forwards its argument.
 *
 * @param x an integer to forward
 * @returns @p x
 */
#define MACRO1(x) x

typedef struct struct1_s struct1;

/**
 * A function that does something with @p s and @p x.
 *
 * @param s a struct to operate on with type @ref struct1
 * @param x an integer to operate on
 * @return ` + "`s->x`" + `
 */
int func1(struct1* s, int x);

typedef enum {
    /// The first enum value
    enum1_value1 = 0,
    /**
     * Another enum value that uses a macro @ref MACRO1
     */
    MACRO1(enum1_value2),
    enum1_value3, //< third enum value
    enum1_value5 = 5, //< explicit initializer
} enum1;

struct s1 {
    int x;
    enum1 e;
    int y;
};

union u1 {
    int x;
    s1 s;
};

/**
 * @defgroup g1 Group 1
 */

/**
 * @ingroup g1
 */
const int x = 0;

/**
 * @ingroup g1
 */
#define G1_MACRO 5

/**
 * @ingroup g1
 */
struct g1_struct g1_func(g1_enum e);

#endif
`

func extract(t *testing.T, src string, opts ...Option) *File {
	t.Helper()
	file, err := NewExtractor(opts...).Extract("test.h", []byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return file
}

func names(decls []*Declaration) string {
	var out []string
	for _, d := range decls {
		out = append(out, d.Kind.String()+":"+d.Name)
	}
	return strings.Join(out, " ")
}

func TestExtractFixture(t *testing.T) {
	file := extract(t, file1)

	want := "define:MACRO1 function:func1 enum:enum1 compound:s1 compound:u1 variable:x define:G1_MACRO function:g1_func"
	if got := names(file.Declarations); got != want {
		t.Fatalf("declarations =\n  %s\nwant\n  %s", got, want)
	}

	macro := file.Declarations[0]
	if !macro.FunctionLike || len(macro.MacroParams) != 1 || macro.MacroParams[0] != "x" {
		t.Errorf("MACRO1 params = %v (function-like %v), want [x]", macro.MacroParams, macro.FunctionLike)
	}
	if macro.Value != "x" {
		t.Errorf("MACRO1 value = %q, want %q", macro.Value, "x")
	}
	if macro.Comment == nil || !strings.Contains(macro.Comment.Text, "forwards its argument") {
		t.Errorf("MACRO1 comment = %v", macro.Comment)
	}

	g1Macro := file.Declarations[6]
	if g1Macro.FunctionLike || len(g1Macro.MacroParams) != 0 || g1Macro.Value != "5" {
		t.Errorf("G1_MACRO = %+v, want object-like with value 5", g1Macro)
	}

	if len(file.Aliases) != 1 || file.Aliases[0].Name != "struct1" || file.Aliases[0].Target != "struct1_s" {
		t.Errorf("aliases = %+v, want struct1 -> struct1_s", file.Aliases)
	}

	if len(file.Detached) != 1 || !strings.Contains(file.Detached[0].Text, "@defgroup g1") {
		t.Errorf("detached = %+v, want the group definition", file.Detached)
	}
	if len(file.Problems) != 0 {
		t.Errorf("unexpected problems: %+v", file.Problems)
	}
}

func TestExtractFunction(t *testing.T) {
	file := extract(t, file1)
	fn := file.Declarations[1]

	if fn.Type != "int" {
		t.Errorf("return type = %q, want int", fn.Type)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Type != "struct1*" || fn.Params[0].Name != "s" {
		t.Errorf("param 0 = %+v, want struct1* s", fn.Params[0])
	}
	if fn.Params[1].Type != "int" || fn.Params[1].Name != "x" {
		t.Errorf("param 1 = %+v, want int x", fn.Params[1])
	}
	if fn.Span.Start.Line != 21 {
		t.Errorf("func1 starts on line %d, want 21", fn.Span.Start.Line)
	}

	g1Func := file.Declarations[7]
	if g1Func.Type != "struct g1_struct" {
		t.Errorf("g1_func return type = %q", g1Func.Type)
	}
}

func TestExtractEnum(t *testing.T) {
	file := extract(t, file1)
	enum := file.Declarations[2]

	if got := names(enum.Members); got != "enumvalue:enum1_value1 enumvalue:enum1_value2 enumvalue:enum1_value3 enumvalue:enum1_value5" {
		t.Fatalf("values = %s", got)
	}
	values := enum.Members
	if values[0].Value != "0" || values[1].Value != "" || values[2].Value != "" || values[3].Value != "5" {
		t.Errorf("initializers = %q %q %q %q", values[0].Value, values[1].Value, values[2].Value, values[3].Value)
	}
	if values[0].Comment == nil || values[0].Comment.Text != "/// The first enum value" {
		t.Errorf("enum1_value1 comment = %v", values[0].Comment)
	}
	if values[1].Comment == nil || !strings.Contains(values[1].Comment.Text, "@ref MACRO1") {
		t.Errorf("enum1_value2 comment = %v", values[1].Comment)
	}
	if values[2].Comment != nil {
		t.Errorf("enum1_value3 should have no leading comment, got %v", values[2].Comment)
	}
	if values[2].Trailing == nil || values[2].Trailing.Text != "//< third enum value" {
		t.Errorf("enum1_value3 trailing = %v", values[2].Trailing)
	}
	if values[3].Trailing == nil || values[3].Trailing.Text != "//< explicit initializer" {
		t.Errorf("enum1_value5 trailing = %v", values[3].Trailing)
	}
}

func TestExtractCompounds(t *testing.T) {
	file := extract(t, file1)

	s1 := file.Declarations[3]
	if s1.Tag != "struct" || names(s1.Members) != "variable:x variable:e variable:y" {
		t.Fatalf("s1 = %s %s", s1.Tag, names(s1.Members))
	}
	if s1.Members[1].Type != "enum1" {
		t.Errorf("s1.e type = %q, want enum1", s1.Members[1].Type)
	}

	u1 := file.Declarations[4]
	if u1.Tag != "union" || names(u1.Members) != "variable:x variable:s" {
		t.Fatalf("u1 = %s %s", u1.Tag, names(u1.Members))
	}

	x := file.Declarations[5]
	if x.Type != "const int" || x.Value != "0" {
		t.Errorf("x = %q = %q, want const int = 0", x.Type, x.Value)
	}
}

func TestExtractNestedMembers(t *testing.T) {
	file := extract(t, `
struct outer {
    struct inner { int a; } in; ///< the inner one
    union { int i; float f; };
    unsigned flags : 3;
    void (*callback)(int code);
};
`)
	outer := file.Declarations[0]
	want := "compound:inner variable:in variable:i variable:f variable:flags variable:callback"
	if got := names(outer.Members); got != want {
		t.Fatalf("members = %s, want %s", got, want)
	}
	in := outer.Members[1]
	if in.Type != "struct inner" {
		t.Errorf("in type = %q", in.Type)
	}
	if in.Trailing == nil || in.Trailing.Text != "///< the inner one" {
		t.Errorf("in trailing = %v", in.Trailing)
	}
	if outer.Members[4].Type != "unsigned" {
		t.Errorf("flags type = %q, want unsigned", outer.Members[4].Type)
	}
	if outer.Members[5].Type != "void (*)(int code)" {
		t.Errorf("callback type = %q", outer.Members[5].Type)
	}
}

func TestExtractTypedefTagAndAlias(t *testing.T) {
	file := extract(t, "/** A point. */\ntypedef struct point_s { int x; } point;\n")
	d := file.Declarations[0]
	if d.Name != "point_s" || d.Alias != "point" {
		t.Errorf("name = %q alias = %q, want point_s / point", d.Name, d.Alias)
	}
	if d.Comment == nil {
		t.Error("expected the typedef comment to attach")
	}
}

func TestExtractTypedefSeveralDeclarators(t *testing.T) {
	file := extract(t, "typedef struct { int x; } *PPoint, Point, Points[4];\n")
	if len(file.Declarations) != 1 {
		t.Fatalf("declarations = %s", names(file.Declarations))
	}
	if d := file.Declarations[0]; d.Name != "Point" || d.Alias != "" {
		t.Errorf("name = %q alias = %q, want Point and no alias", d.Name, d.Alias)
	}
	var got []string
	for _, a := range file.Aliases {
		got = append(got, a.Name+"="+a.Target)
	}
	if strings.Join(got, " ") != "PPoint=Point Points=Point" {
		t.Errorf("aliases = %v, want [PPoint=Point Points=Point]", got)
	}
}

func TestExtractAnonymousEnum(t *testing.T) {
	file := extract(t, "/** Limits. */\nenum { MAX_LEN = 16, MAX_DEPTH };\n")
	if got := names(file.Declarations); got != "enumvalue:MAX_LEN enumvalue:MAX_DEPTH" {
		t.Fatalf("declarations = %s", got)
	}
	if file.Declarations[0].Comment == nil {
		t.Error("expected the enum comment on the first value")
	}
	if file.Declarations[0].Value != "16" {
		t.Errorf("MAX_LEN value = %q, want 16", file.Declarations[0].Value)
	}
	if len(file.Problems) != 0 {
		t.Errorf("unexpected problems: %+v", file.Problems)
	}
}

func TestExtractVariadicAndFunctionPointer(t *testing.T) {
	file := extract(t, "int log_printf(const char *fmt, ...);\nextern void (*handler)(int);\n")
	if got := names(file.Declarations); got != "function:log_printf variable:handler" {
		t.Fatalf("declarations = %s", got)
	}
	params := file.Declarations[0].Params
	if len(params) != 2 || params[0].Type != "const char*" || params[1].Type != "..." {
		t.Errorf("params = %+v", params)
	}
	if file.Declarations[1].Type != "void (*)(int)" {
		t.Errorf("handler type = %q", file.Declarations[1].Type)
	}
}

func TestExtractVoidParameterList(t *testing.T) {
	file := extract(t, "int version(void);\nint count();\n")
	for _, d := range file.Declarations {
		if d.Params == nil || len(d.Params) != 0 {
			t.Errorf("%s params = %#v, want empty", d.Name, d.Params)
		}
	}
}

func TestExtractPredefinedAndMacroPrefix(t *testing.T) {
	src := "API int f(void);\nDEPRECATED(\"use h\") API size_t g(size_t);\n"
	file := extract(t, src, WithPredefined([]string{"API"}))
	if got := names(file.Declarations); got != "function:f function:g" {
		t.Fatalf("declarations = %s", got)
	}
	if file.Declarations[1].Type != "size_t" {
		t.Errorf("g return type = %q", file.Declarations[1].Type)
	}
	if p := file.Declarations[1].Params[0]; p.Name != "" || p.Type != "size_t" {
		t.Errorf("g param = %+v, want unnamed size_t", p)
	}
}

func TestExtractFunctionDefinitionAndExternC(t *testing.T) {
	src := `#ifdef __cplusplus
extern "C" {
#endif
/** Adds. */
static inline int add(int a, int b) { return a + b; }
#ifdef __cplusplus
}
#endif
`
	file := extract(t, src)
	if got := names(file.Declarations); got != "function:add" {
		t.Fatalf("declarations = %s", got)
	}
	if file.Declarations[0].Type != "int" || file.Declarations[0].Comment == nil {
		t.Errorf("add = %+v", file.Declarations[0])
	}
}

func TestExtractBlankLineDetachesComment(t *testing.T) {
	file := extract(t, "/** Orphan. */\n\nint f(void);\n")
	if file.Declarations[0].Comment != nil {
		t.Error("comment separated by a blank line must not attach")
	}
	if len(file.Detached) != 1 {
		t.Errorf("got %d detached comments, want 1", len(file.Detached))
	}
}

func TestExtractMergesLineComments(t *testing.T) {
	file := extract(t, "/// First.\n/// Second.\nint f(void);\n")
	c := file.Declarations[0].Comment
	if c == nil || c.Text != "/// First.\n/// Second." {
		t.Errorf("comment = %v", c)
	}
}

func TestExtractPlainCommentsAreNotDocs(t *testing.T) {
	file := extract(t, "/* license */\n// note\nint f(void);\n")
	if file.Declarations[0].Comment != nil {
		t.Errorf("plain comment attached: %v", file.Declarations[0].Comment)
	}
}

func TestExtractUnsupportedConstructs(t *testing.T) {
	file := extract(t, "int counter;\ntypedef int myint;\nint ok(void);\n")
	if got := names(file.Declarations); got != "function:ok" {
		t.Fatalf("declarations = %s", got)
	}
	if len(file.Problems) != 2 {
		t.Errorf("got %d problems, want 2: %+v", len(file.Problems), file.Problems)
	}
}

func TestExtractUnknownMacroInEnum(t *testing.T) {
	file := extract(t, "enum e { A, WRAP(B), C };\n")
	if got := names(file.Declarations[0].Members); got != "enumvalue:A enumvalue:C" {
		t.Errorf("values = %s", got)
	}
	if len(file.Problems) != 1 || file.Problems[0].Kind != ProblemMacro || !strings.Contains(file.Problems[0].Message, "WRAP") {
		t.Errorf("problems = %+v", file.Problems)
	}
}

func TestExtractSyntaxErrors(t *testing.T) {
	tests := map[string]string{
		"missing semicolon": "int f(int x)",
		"unbalanced paren":  "int f(int x;",
		"stray brace":       "int x = 1; }",
		"open extern":       "extern \"C\" {\nint f(void);\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewExtractor().Extract("bad.h", []byte(src))
			if _, ok := err.(*SyntaxError); !ok {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
		})
	}
}
