package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := New(KindParse, "unterminated comment")
	assert.Equal(t, "unterminated comment", err.Error())

	wrapped := Wrap(err, KindMissingSource, "read file2.h")
	assert.Equal(t, "read file2.h: unterminated comment", wrapped.Error())
	assert.Nil(t, Wrap(nil, KindIO, "ignored"))
}

func TestGetKind(t *testing.T) {
	err := Errorf(KindDuplicateID, "duplicate id %q", "func1")
	assert.Equal(t, KindDuplicateID, GetKind(err))

	// fmt wrapping keeps the kind reachable.
	assert.Equal(t, KindDuplicateID, GetKind(fmt.Errorf("build: %w", err)))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
	assert.Equal(t, "duplicate_id", KindDuplicateID.String())
}

func TestAttributes(t *testing.T) {
	err := New(KindParse, "bad token")
	err = Attr(err, "file", "file1.h")
	err = Attr(err, "line", 3)

	attrs := GetAttributes(err)
	assert.Equal(t, "file1.h", attrs["file"])
	assert.Equal(t, 3, attrs["line"])

	wrapped := Attr(Wrap(err, KindConfig, "load"), "id", "x")
	all := GetAttributes(wrapped)
	assert.Equal(t, "file1.h", all["file"])
	assert.Equal(t, "x", all["id"])

	plain := Attr(errors.New("plain"), "file", "a.h")
	var e *Error
	require.ErrorAs(t, plain, &e)
	assert.Equal(t, KindUnknown, e.Kind)
}

func TestReport(t *testing.T) {
	var r Report
	assert.Equal(t, "no warnings", r.Summary())

	r.Addf(CodeUnresolvedRef, "file1.h", 4, 2, "unresolved reference %q", "nope")
	r.Add(Warning{Code: CodeMalformedParam, Message: "@param without a parameter name"})

	other := &Report{}
	other.Add(Warning{Code: CodeUnresolvedRef, File: "file2.h", Message: "x"})
	r.Merge(other)
	r.Merge(nil)

	require.Equal(t, 3, r.Len())
	assert.Equal(t, 2, r.Count(CodeUnresolvedRef))
	assert.Equal(t, "1 malformed-param, 2 unresolved-ref", r.Summary())
	assert.Equal(t, `file1.h:4:2: unresolved reference "nope" [unresolved-ref]`, r.Warnings()[0].String())
	assert.Equal(t, "@param without a parameter name [malformed-param]", r.Warnings()[1].String())
	assert.Equal(t, "file2.h: x [unresolved-ref]", r.Warnings()[2].String())

	var nilReport *Report
	assert.Equal(t, 0, nilReport.Len())
}
