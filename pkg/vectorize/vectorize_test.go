package vectorize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/normalize"
)

func strPtr(s string) *string { return &s }

func record(typeName string, invoked []string, argTos ...models.ArgCall) models.UsageRecord {
	rec := models.UsageRecord{Name: "conn", Scope: "Server.start", TypeName: typeName, ArgToCalls: argTos}
	for _, n := range invoked {
		rec.InvokedCalls = append(rec.InvokedCalls, models.Call{CallName: n})
	}
	return rec
}

func argTo(name string, receiver *string) models.ArgCall {
	return models.ArgCall{Call: models.Call{CallName: name, Receiver: receiver}, Order: 1}
}

func newVectorizer(lang normalize.Language) *Vectorizer {
	return New(Options{
		LowerUsage: 1,
		UpperUsage: 8,
		Dialect:    normalize.NewDialect(lang),
	})
}

func TestVectorize_Single(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)

	rec := record("Connection", []string{"open", "close", "open", "x = y"}, argTo("log", nil))
	samples := v.Vectorize(rec)

	require.Len(t, samples, 1)
	assert.Equal(t, "conn in Server.start; Calls: open, close; Argument to: log", samples[0].Feature)
	assert.Equal(t, "Connection", samples[0].Label)
	assert.Equal(t, 3, samples[0].Evidence)
}

func TestVectorize_RecordUnchanged(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)
	rec := record("string[]", []string{"push"})
	rec.Name = "items:0"

	samples := v.Vectorize(rec)
	require.Len(t, samples, 1)
	assert.Equal(t, "Array", samples[0].Label)
	assert.Equal(t, "items in Server.start; Calls: push", samples[0].Feature)
	assert.Equal(t, "items:0", rec.Name)
	assert.Equal(t, "string[]", rec.TypeName)
}

func TestVectorize_TrivialAssignmentDiscarded(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)

	assert.Empty(t, v.Vectorize(record("Foo", nil, argTo("assignment_foo", nil))))
	assert.Empty(t, v.Vectorize(record("Foo", nil, argTo("<operator>.assignment", nil))))

	// a call alongside the assignment keeps the record
	assert.Len(t, v.Vectorize(record("Foo", []string{"bar"}, argTo("<operator>.assignment", nil))), 1)
	// two argument calls keep the record
	assert.Len(t, v.Vectorize(record("Foo", nil, argTo("<operator>.assignment", nil), argTo("log", nil))), 1)
}

func TestVectorize_RejectedNamesCountAgainstLowerBound(t *testing.T) {
	v := New(Options{LowerUsage: 2, UpperUsage: 8, Dialect: normalize.NewDialect(normalize.LangTypeScript)})

	assert.Empty(t, v.Vectorize(record("Foo", []string{"a", "x = 1", "{b}"})))
	assert.Len(t, v.Vectorize(record("Foo", []string{"a", "b"})), 1)
}

func TestVectorize_EmptyLabelDiscarded(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)
	assert.Empty(t, v.Vectorize(record("()", []string{"a"})))
}

func TestVectorize_Split(t *testing.T) {
	v := New(Options{LowerUsage: 1, UpperUsage: 4, Dialect: normalize.NewDialect(normalize.LangTypeScript)})

	rec := record("Foo", []string{"c1", "c2", "c3", "c4", "c5"}, argTo("f1", nil), argTo("f2", nil))
	samples := v.Vectorize(rec)

	require.Len(t, samples, 2)
	assert.Equal(t, "conn in Server.start; Calls: c1, c2, c3; Argument to: f1", samples[0].Feature)
	assert.Equal(t, "conn in Server.start; Calls: c4, c5, c1; Argument to: f2", samples[1].Feature)
	for _, s := range samples {
		assert.Equal(t, "Foo", s.Label)
		assert.LessOrEqual(t, s.Evidence, 4)
	}
}

// A dominant call list pushes every part past the upper bound: with 15 calls
// and 1 argument call at bound 8, both parts carry 8 calls plus the single
// argument call, and the second part also gets the anchor call.
func TestVectorize_SplitExceedsBoundWhenOneListDominates(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)

	calls := make([]string, 15)
	for i := range calls {
		calls[i] = fmt.Sprintf("m%d", i)
	}
	samples := v.Vectorize(record("Foo", calls, argTo("log", nil)))

	require.Len(t, samples, 2)
	assert.Equal(t, "conn in Server.start; Calls: "+strings.Join(calls[:8], ", ")+"; Argument to: log", samples[0].Feature)
	assert.Equal(t, "conn in Server.start; Calls: "+strings.Join(calls[8:], ", ")+", m0; Argument to: log", samples[1].Feature)
	for _, s := range samples {
		assert.Equal(t, 9, s.Evidence)
	}
}

func TestVectorize_ReceiverPrefix(t *testing.T) {
	v := New(Options{
		LowerUsage:     1,
		UpperUsage:     8,
		Dialect:        normalize.NewDialect(normalize.LangTypeScript),
		ReceiverPrefix: true,
	})

	rec := record("Foo", nil,
		argTo("log", strPtr("console")),
		argTo("push", strPtr("this")),
		argTo("apply", strPtr("_tmp_1")),
		argTo("map", strPtr("_")),
		argTo("send", nil),
	)
	samples := v.Vectorize(rec)
	require.Len(t, samples, 1)
	assert.Equal(t, "conn in Server.start; Argument to: console.log, push, apply, map, send", samples[0].Feature)
}

func TestVectorize_ReceiverIgnoredByDefault(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)
	samples := v.Vectorize(record("Foo", nil, argTo("log", strPtr("console"))))
	require.Len(t, samples, 1)
	assert.Equal(t, "conn in Server.start; Argument to: log", samples[0].Feature)
}

func TestRender(t *testing.T) {
	ts := New(Options{UpperUsage: 8, Dialect: normalize.NewDialect(normalize.LangTypeScript), LanguageTag: true})
	assert.Equal(t, "typescript: x in main; Calls: a", ts.Render("x", "main", []string{"a"}, nil))
	assert.Equal(t, "typescript: x in main; Argument to: b", ts.Render("x", "main", nil, []string{"b"}))
	assert.Equal(t, "typescript: x in main", ts.Render("x", "main", nil, nil))
	assert.Equal(t, "typescript: x in main; Calls: sayhi", ts.Render("x", "main", []string{`say"h'i\`}, nil))

	py := newVectorizer(normalize.LangPython)
	assert.Equal(t, "x in Foo.bar; Calls: append", py.Render("x", "<module>.Foo.bar", []string{"append"}, nil))
	assert.Equal(t, "x in <module>; Calls: append", py.Render("x", "<module>", []string{"append"}, nil))
}

func TestRender_ModuleMarkerOnlyLeading(t *testing.T) {
	py := newVectorizer(normalize.LangPython)

	tests := []struct {
		name   string
		scope  string
		calls  []string
		argTos []string
		want   string
	}{
		{"x", "<module>.Foo.bar", nil, nil, "x in Foo.bar"},
		{"<module>.x", "main", nil, nil, "x in main"},
		{"x", "Foo.<module>.bar", nil, nil, "x in Foo.<module>.bar"},
		{"x", "<module>.Foo", []string{"<module>.helper"}, nil, "x in Foo; Calls: <module>.helper"},
		{"x", "main", nil, []string{"<module>.run"}, "x in main; Argument to: <module>.run"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, py.Render(tt.name, tt.scope, tt.calls, tt.argTos))
		})
	}
}

func TestVectorizeAll(t *testing.T) {
	v := newVectorizer(normalize.LangTypeScript)
	records := []models.UsageRecord{
		record("Foo", []string{"a"}),
		record("Foo", nil, argTo("assignment", nil)),
		record("Bar", []string{"b"}),
	}

	ticks := 0
	samples := v.VectorizeAll(records, func() { ticks++ })

	assert.Equal(t, 3, ticks)
	require.Len(t, samples, 2)
	assert.Equal(t, "Foo", samples[0].Label)
	assert.Equal(t, "Bar", samples[1].Label)
}
