package format

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/hdoc/c"
)

const streamsHeader = `/**
 * @defgroup io "I/O"
 *
 * Input and output.
 */

/**
 * Opens a stream.
 *
 * Calls @ref close_stream when done.
 *
 * @param[in] path the file path
 * @return a handle, see @p path
 * @note Not thread safe.
 * @ingroup io
 */
int open_stream(const char *path);

/** Closes a stream. */
void close_stream(int handle);

/** Options. */
struct options {
    int verbose; ///< be chatty
};

#define MAX_STREAMS 8 ///< upper bound
`

func buildTree(t *testing.T) *c.Tree {
	t.Helper()
	fsys := fstest.MapFS{"streams.h": &fstest.MapFile{Data: []byte(streamsHeader)}}
	tree, report, err := c.NewBuilder(c.WithFS(fsys)).Build(context.Background(), []string{"streams.h"})
	require.NoError(t, err)
	require.Equal(t, 0, report.Len(), report.Warnings())
	return tree
}

func entityIDs(entities []docEntity) []string {
	var ids []string
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestJSONEncoder(t *testing.T) {
	tree := buildTree(t)

	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(tree))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	want := []string{"open_stream", "close_stream", "options", "MAX_STREAMS", "io"}
	if diff := cmp.Diff(want, entityIDs(doc.Entities)); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	open := doc.Entities[0]
	assert.Equal(t, "function", open.Kind)
	assert.Equal(t, "int open_stream(const char *path)", open.Signature)
	assert.Equal(t, "io", open.Group)
	require.NotNil(t, open.Description)
	assert.Equal(t, []docInline{{Kind: "text", Text: "Opens a stream."}}, open.Description.Brief)
	require.Len(t, open.Description.Body, 2)
	assert.Contains(t, open.Description.Body[0].Content, docInline{Kind: "ref", Text: "close_stream", Target: "close_stream"})
	assert.Equal(t, "admonition", open.Description.Body[1].Kind)
	assert.Equal(t, "Note", open.Description.Body[1].Title)
	assert.Equal(t, "in", open.Description.Params[0].Direction)
	assert.Contains(t, open.Description.Returns, docInline{Kind: "param", Text: "path"})

	options := doc.Entities[2]
	assert.Equal(t, "struct", options.CompoundType)
	require.Len(t, options.Members, 1)
	assert.Equal(t, "options.verbose", options.Members[0].ID)
	assert.Equal(t, "int", options.Members[0].Type)

	group := doc.Entities[4]
	assert.Equal(t, "I/O", group.Title)
	assert.Equal(t, []string{"open_stream"}, group.MemberIDs)
	assert.Empty(t, group.Members)
}

func TestYAMLEncoder(t *testing.T) {
	tree := buildTree(t)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLEncoder(&buf).WithStyle(c.Style{BasedOn: "Google"}).Encode(tree))
	assert.Contains(t, buf.String(), "qualified_name: open_stream")

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Entities, 5)
	assert.Equal(t, "int open_stream(const char* path)", doc.Entities[0].Signature)
	assert.Equal(t, "8", doc.Entities[3].Value)
	assert.Equal(t, "upper bound", doc.Entities[3].Description.Brief[0].Text)
}

func TestMarkdownEncoder(t *testing.T) {
	tree := buildTree(t)

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownEncoder(&buf, DefaultRender()).Encode(tree))
	out := buf.String()

	for _, want := range []string{
		"- [open_stream()](#open_stream): Opens a stream.\n",
		"<a id=\"open_stream\"></a>\n\n## open_stream()\n\n```c\nint open_stream(const char *path)\n```\n\nOpens a stream.\n\n",
		"Calls [`close_stream`](#close_stream) when done.\n\n",
		"!!! note \"Note\"\n    Not thread safe.\n\n",
		"**Parameters**\n\n- `path` (`const char *`) [in]: the file path\n\n",
		"**Returns**: a handle, see `path`\n\n",
		"Group: [I/O](#io)\n\n",
		"<a id=\"options.verbose\"></a>\n\n### verbose\n\n```c\nint verbose\n```\n\nbe chatty\n\n",
		"## I/O\n\nInput and output.\n\n- [open_stream()](#open_stream)\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestMarkdownEncoderRenderOptions(t *testing.T) {
	tree := buildTree(t)

	render := DefaultRender()
	render.HeadingLevel = 3
	render.TOC.Function = false

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownEncoder(&buf, render).Encode(tree))
	out := buf.String()

	assert.Contains(t, out, "\n### open_stream()\n")
	assert.Contains(t, out, "\n#### verbose\n")
	assert.NotContains(t, out, "(#open_stream): Opens a stream.")
	assert.Contains(t, out, "- [struct options](#options): Options.\n")
	assert.True(t, strings.HasPrefix(out, "- [struct options](#options)"), out)
}

func TestLineEncoder(t *testing.T) {
	tree := buildTree(t)

	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf).Encode(tree))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	require.Len(t, lines, tree.Len())
	assert.Equal(t, "function\topen_stream\tstreams.h:17:1\tint open_stream(const char *path)\tOpens a stream.", lines[0])
	assert.Equal(t, "group\tio\tstreams.h:1:1\tI/O\tInput and output.", lines[len(lines)-1])
}

func TestDescriptionMarkdownWithoutLinks(t *testing.T) {
	tree := buildTree(t)
	open, ok := tree.Find("open_stream")
	require.True(t, ok)

	got := DescriptionMarkdown(open, c.DefaultStyle, nil)
	assert.True(t, strings.HasPrefix(got, "Opens a stream.\n\nCalls `close_stream` when done.\n\n"), got)
	assert.True(t, strings.HasSuffix(got, "**Returns**: a handle, see `path`"), got)
	assert.Empty(t, DescriptionMarkdown(nil, c.DefaultStyle, nil))

	got = DescriptionMarkdown(open, c.Style{BasedOn: "Google"}, nil)
	assert.Contains(t, got, "- `path` (`const char*`) [in]: the file path\n")
}

const readerHeader = `/**
 * Reads a value.
 *
 * @code{.c}
 * int x = read_value();
 * if (x)
 *     use(x);
 * @endcode
 */
int read_value(void);
`

func TestCodeBlocks(t *testing.T) {
	fsys := fstest.MapFS{"reader.h": &fstest.MapFile{Data: []byte(readerHeader)}}
	tree, _, err := c.NewBuilder(c.WithFS(fsys)).Build(context.Background(), []string{"reader.h"})
	require.NoError(t, err)
	read, ok := tree.Find("read_value")
	require.True(t, ok)

	got := DescriptionMarkdown(read, c.DefaultStyle, nil)
	assert.Equal(t, "Reads a value.\n\n```c\nint x = read_value();\nif (x)\n    use(x);\n```", got)

	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(tree))
	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Entities, 1)
	require.Len(t, doc.Entities[0].Description.Body, 1)
	assert.Equal(t, docBlock{Kind: "code", Text: "int x = read_value();\nif (x)\n    use(x);"}, doc.Entities[0].Description.Body[0])
}
