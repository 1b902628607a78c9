package c

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hdoc/c/doxygen"
	"github.com/dhamidi/hdoc/diag"
)

func buildFixtures(t *testing.T, opts ...Option) (*Tree, *diag.Report) {
	t.Helper()
	opts = append([]Option{WithFS(os.DirFS("testdata"))}, opts...)
	tree, report, err := NewBuilder(opts...).Build(context.Background(), []string{"file1.h", "file2.h"})
	require.NoError(t, err)
	return tree, report
}

func buildSources(t *testing.T, files map[string]string, order ...string) (*Tree, *diag.Report, error) {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return NewBuilder(WithFS(fsys)).Build(context.Background(), order)
}

func qualifiedNames(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Base().QualifiedName
	}
	return names
}

func mustFind[T Entity](t *testing.T, tree *Tree, name string) T {
	t.Helper()
	e, ok := tree.Find(name)
	require.True(t, ok, "entity %s not found", name)
	v, ok := e.(T)
	require.True(t, ok, "entity %s is a %T", name, e)
	return v
}

func TestBuildTopLevelOrder(t *testing.T) {
	tree, _ := buildFixtures(t)

	want := []string{
		"MACRO1", "func1", "enum1", "s1", "u1", "x", "G1_MACRO",
		"g1_enum", "g1_struct", "g1_union", "g1_func",
		"MACRO2", "func2", "counter",
		"g1", "g2",
	}
	if diff := cmp.Diff(want, qualifiedNames(tree.Entities())); diff != "" {
		t.Errorf("top-level order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	serial, _ := buildFixtures(t, WithWorkers(1))
	parallel, _ := buildFixtures(t, WithWorkers(8))

	assert.Empty(t, cmp.Diff(qualifiedNames(serial.All()), qualifiedNames(parallel.All())))
}

func TestBuildGroups(t *testing.T) {
	tree, _ := buildFixtures(t)

	g1 := mustFind[*Compound](t, tree, "g1")
	assert.Equal(t, CompoundGroup, g1.Type)
	assert.Equal(t, "Group 1", g1.Title)
	assert.Equal(t, "Group 1", Title(g1))
	want := []string{"x", "G1_MACRO", "g1_enum", "g1_struct", "g1_union", "g1_func", "counter"}
	if diff := cmp.Diff(want, qualifiedNames(g1.Members)); diff != "" {
		t.Errorf("g1 members mismatch (-want +got):\n%s", diff)
	}

	g2 := mustFind[*Compound](t, tree, "g2")
	assert.Equal(t, "Group 2", g2.Title)
	assert.Equal(t, []string{"func2"}, qualifiedNames(g2.Members))
	assert.Equal(t, "file2.h", g2.Location.File)

	// Grouped entities stay at the top level and point back at the group.
	x := mustFind[*Variable](t, tree, "x")
	assert.Equal(t, "g1", x.Group)
	assert.Same(t, Entity(x), g1.Members[0])
}

func TestBuildFunction(t *testing.T) {
	tree, _ := buildFixtures(t)

	fn := mustFind[*Function](t, tree, "func1")
	assert.Equal(t, "func1", fn.ID)
	assert.Equal(t, "int", fn.ReturnType)
	assert.Equal(t, []Parameter{{Name: "s", Type: "struct1*"}, {Name: "x", Type: "int"}}, fn.Parameters)
	assert.Equal(t, Location{File: "file1.h", Line: 24, Column: 1}, fn.Location)

	doc := fn.Description
	require.Len(t, doc.Pre, 2)
	assert.Equal(t, "`s != NULL`", doxygen.PlainText(doc.Pre[0]))
	require.Len(t, doc.Post, 1)
	assert.Equal(t, "`s->x`", doxygen.PlainText(doc.Returns))
	require.Len(t, doc.Params, 2)
	assert.Equal(t, "s", doc.Params[0].Name)
}

func TestBuildEnumValuesInOrder(t *testing.T) {
	tree, _ := buildFixtures(t)

	enum := mustFind[*Enum](t, tree, "enum1")
	var names, initializers []string
	for _, v := range enum.Values {
		names = append(names, v.QualifiedName)
		initializers = append(initializers, v.Initializer)
	}
	assert.Equal(t, []string{"enum1_value1", "enum1_value2", "enum1_value3", "enum1_value5"}, names)
	assert.Equal(t, []string{"0", "", "", "5"}, initializers)

	third := mustFind[*EnumValue](t, tree, "enum1_value3")
	assert.Equal(t, "third enum value", doxygen.PlainText(third.Description.Brief))
	assert.Empty(t, third.Description.Body)
}

func TestBuildDefines(t *testing.T) {
	tree, _ := buildFixtures(t)

	macro1 := mustFind[*Define](t, tree, "MACRO1")
	assert.Equal(t, []string{"x"}, macro1.Parameters)
	assert.Equal(t, "x", macro1.Value)
	assert.True(t, macro1.FunctionLike())

	g1Macro := mustFind[*Define](t, tree, "G1_MACRO")
	assert.Nil(t, g1Macro.Parameters)
	assert.Equal(t, "5", g1Macro.Value)

	_, ok := tree.Find("FILE1_H")
	assert.False(t, ok, "include guards are not documented")
}

func TestBuildCompoundMembers(t *testing.T) {
	tree, _ := buildFixtures(t)

	s1 := mustFind[*Compound](t, tree, "s1")
	assert.Equal(t, CompoundStruct, s1.Type)
	assert.Equal(t, []string{"s1::x", "s1::e", "s1::y"}, qualifiedNames(s1.Members))
	assert.Equal(t, "struct s1", Title(s1))

	e, ok := tree.Lookup("s1.e")
	require.True(t, ok)
	assert.Equal(t, "enum1", e.(*Variable).Type)

	u := mustFind[*Compound](t, tree, "g1_union")
	assert.Equal(t, CompoundUnion, u.Type)
	assert.Equal(t, "struct g1_struct", u.Members[0].(*Variable).Type)
}

func TestBuildResolvesReferences(t *testing.T) {
	tree, report := buildFixtures(t)

	fn := mustFind[*Function](t, tree, "func2")
	refs := fn.Description.Refs()
	require.Len(t, refs, 3)
	assert.True(t, refs[0].Parameter, "@p s names an own parameter")
	assert.Equal(t, "enum1_value3", refs[1].Target)
	assert.Equal(t, "s1.y", refs[2].Target)

	g2 := mustFind[*Compound](t, tree, "g2")
	require.Len(t, g2.Description.Refs(), 1)
	assert.Equal(t, "func1", g2.Description.Refs()[0].Target)

	// @ref struct1 names a typedef of an undefined struct.
	require.Equal(t, 1, report.Len(), report.Warnings())
	w := report.Warnings()[0]
	assert.Equal(t, diag.CodeUnresolvedRef, w.Code)
	assert.Equal(t, "file1.h", w.File)
	assert.Equal(t, 24, w.Line)

	func1 := mustFind[*Function](t, tree, "func1")
	param, ok := func1.Description.Param("s")
	require.True(t, ok)
	assert.Equal(t, "a struct to operate on with type struct1", doxygen.PlainText(param.Text))
	for _, ref := range func1.Description.Refs() {
		assert.True(t, ref.Parameter, "only parameter references remain: %+v", ref)
	}
}

func TestBuildScopedReferences(t *testing.T) {
	tree, report, err := buildSources(t, map[string]string{
		"s.h": `/** Holds @ref y. */
struct s {
    /** Next to @ref y. */
    int x;
    int y;
};

/** Uses @p count and @ref s_t. */
void use(int n);

typedef struct s s_t;
extern int count;
`,
	}, "s.h")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len(), report.Warnings())

	s := mustFind[*Compound](t, tree, "s")
	assert.Equal(t, "s.y", s.Description.Refs()[0].Target)
	x := mustFind[*Variable](t, tree, "s::x")
	assert.Equal(t, "s.y", x.Description.Refs()[0].Target)

	use := mustFind[*Function](t, tree, "use")
	refs := use.Description.Refs()
	require.Len(t, refs, 2)
	assert.False(t, refs[0].Parameter)
	assert.Equal(t, "count", refs[0].Target)
	assert.Equal(t, "s", refs[1].Target)
}

func TestBuildAnonymousEnum(t *testing.T) {
	tree, report, err := buildSources(t, map[string]string{
		"limits.h": `/** Limits. */
enum {
    MAX_LEN = 16, ///< longest name
    MAX_DEPTH = 4 ///< deepest nesting
};

/** Uses @ref MAX_LEN. */
int f(void);
`,
	}, "limits.h")
	require.NoError(t, err)
	require.Equal(t, 0, report.Len(), report.Warnings())
	assert.Equal(t, []string{"MAX_LEN", "MAX_DEPTH", "f"}, qualifiedNames(tree.Entities()))

	maxLen := mustFind[*EnumValue](t, tree, "MAX_LEN")
	assert.Equal(t, "16", maxLen.Initializer)
	assert.Equal(t, "longest name", doxygen.PlainText(maxLen.Description.Brief))
	require.Len(t, maxLen.Description.Body, 1)
	assert.Equal(t, "Limits.", doxygen.PlainText(maxLen.Description.Body[0].(doxygen.Paragraph).Content))
	assert.Equal(t, "deepest nesting", doxygen.PlainText(mustFind[*EnumValue](t, tree, "MAX_DEPTH").Description.Brief))

	refs := mustFind[*Function](t, tree, "f").Description.Refs()
	require.Len(t, refs, 1)
	assert.Equal(t, "MAX_LEN", refs[0].Target)
}

func TestBuildTypedefWithPointerDeclarator(t *testing.T) {
	tree, report, err := buildSources(t, map[string]string{
		"point.h": `/** A point. */
typedef struct { int x; } Point, *PPoint;

/** Moves a @ref Point through @ref PPoint. */
void move(PPoint p);
`,
	}, "point.h")
	require.NoError(t, err)
	require.Equal(t, 0, report.Len(), report.Warnings())

	point := mustFind[*Compound](t, tree, "Point")
	assert.Equal(t, "Point", point.Name)
	assert.Same(t, point, mustFind[*Compound](t, tree, "PPoint"))
	assert.Equal(t, []string{"Point::x"}, qualifiedNames(point.Members))

	refs := mustFind[*Function](t, tree, "move").Description.Refs()
	require.Len(t, refs, 2)
	assert.Equal(t, "Point", refs[0].Target)
	assert.Equal(t, "Point", refs[1].Target)
}

func TestBuildDuplicateIDIsFatal(t *testing.T) {
	_, _, err := buildSources(t, map[string]string{
		"a.h": "int f(void);\n",
		"b.h": "int f(int x);\n",
	}, "a.h", "b.h")
	require.Error(t, err)
	assert.Equal(t, diag.KindDuplicateID, diag.GetKind(err))
	assert.Equal(t, "f", diag.GetAttributes(err)["id"])
	assert.Equal(t, "b.h", diag.GetAttributes(err)["file"])
}

func TestBuildGroupCollidingWithEntity(t *testing.T) {
	_, _, err := buildSources(t, map[string]string{
		"a.h": "/** @ingroup f */\nint g(void);\nint f(void);\n",
	}, "a.h")
	assert.Equal(t, diag.KindDuplicateID, diag.GetKind(err))
}

func TestBuildGroupWarnings(t *testing.T) {
	tree, report, err := buildSources(t, map[string]string{
		"a.h": `/** @defgroup a First */

/** @defgroup a Second */

/** @defgroup empty Nothing here */

/**
 * Does g.
 * @ingroup a b
 */
int g(void);
`,
	}, "a.h")
	require.NoError(t, err)

	assert.Equal(t, []string{"g", "a", "empty"}, qualifiedNames(tree.Entities()))
	a := mustFind[*Compound](t, tree, "a")
	assert.Equal(t, "First", a.Title)
	empty := mustFind[*Compound](t, tree, "empty")
	assert.Empty(t, empty.Members)
	assert.Equal(t, "Nothing here", empty.Title)

	assert.Equal(t, 1, report.Count(diag.CodeDuplicateDefgroup))
	assert.Equal(t, 1, report.Count(diag.CodeMultipleIngroup))
	_, ok := tree.Find("b")
	assert.False(t, ok, "only the first @ingroup is honored")
}

func TestBuildFileWarnings(t *testing.T) {
	_, report, err := buildSources(t, map[string]string{
		"a.h": `/**
 * Broken.
 *
 * @param
 */
int f(int x);

/** See @ref nowhere. */
int g(void);

int counter;
`,
	}, "a.h")
	require.NoError(t, err)

	var codes []string
	for _, w := range report.Warnings() {
		codes = append(codes, w.Code)
	}
	// File warnings come before reference warnings.
	assert.Equal(t, []string{diag.CodeUnsupportedDecl, diag.CodeMalformedParam, diag.CodeUnresolvedRef}, codes)
}

func TestBuildMissingSource(t *testing.T) {
	_, _, err := buildSources(t, map[string]string{"a.h": "int f(void);\n"}, "a.h", "missing.h")
	assert.Equal(t, diag.KindMissingSource, diag.GetKind(err))
	assert.Equal(t, "missing.h", diag.GetAttributes(err)["file"])
}

func TestBuildParseError(t *testing.T) {
	_, _, err := buildSources(t, map[string]string{
		"a.h": "int ok(void);\n",
		"b.h": "int f(;\n",
	}, "a.h", "b.h")
	assert.Equal(t, diag.KindParse, diag.GetKind(err))
	assert.Equal(t, 1, diag.GetAttributes(err)["line"])
}

func TestWalk(t *testing.T) {
	tree, _ := buildFixtures(t)

	depths := map[string]int{}
	visits := map[string]int{}
	tree.Walk(func(e Entity, depth int) bool {
		depths[e.Base().QualifiedName] = depth
		visits[e.Base().QualifiedName]++
		return true
	})
	assert.Equal(t, 1, depths["s1::y"])
	assert.Equal(t, 1, depths["enum1_value5"])
	// g1_struct is reached at the top level and again under g1.
	assert.Equal(t, 2, visits["g1_struct"])

	count := 0
	tree.Walk(func(e Entity, depth int) bool {
		count++
		return false
	})
	assert.Equal(t, len(tree.Entities()), count)
}
