package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/slicecorpus/internal/cache"
	"github.com/panbanda/slicecorpus/internal/fileproc"
	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/normalize"
)

const sampleDoc = `{
  "objectSlices": {
    "src/app.ts::program:Server:start": [
      {
        "targetObj": {"name": "conn", "typeFullName": "Connection", "literal": false},
        "definedBy": {"name": "conn"},
        "invokedCalls": [
          {"receiver": "conn", "callName": "open", "paramTypes": [], "returnType": "ANY"},
          {"receiver": "conn", "callName": "close", "paramTypes": [], "returnType": "ANY"}
        ],
        "argToCalls": [[{"callName": "log", "paramTypes": [], "returnType": "ANY"}, 1]]
      },
      {
        "targetObj": {"name": "cb", "typeFullName": "(x: number) => void", "literal": false},
        "invokedCalls": [{"callName": "call"}],
        "argToCalls": []
      }
    ],
    "src/app.ts::program:main": [
      {
        "targetObj": {"name": "tmp", "typeFullName": "ANY", "literal": false},
        "invokedCalls": [{"callName": "run"}],
        "argToCalls": [[{"callName": "tmp = new Foo", "returnType": "ANY"}, 1]]
      },
      {
        "targetObj": {"name": "unused", "typeFullName": "Bar", "literal": false},
        "invokedCalls": [],
        "argToCalls": []
      }
    ]
  },
  "userDefinedTypes": []
}`

func newTestImporter(t *testing.T, c *cache.Cache) *Importer {
	t.Helper()
	im, err := New(Options{LowerUsage: 1, Dialect: normalize.NewDialect(normalize.LangTypeScript), Workers: 2}, c)
	require.NoError(t, err)
	return im
}

func obj(typeName string, invoked []string, argTos ...string) models.ObjectSlice {
	o := models.ObjectSlice{TargetObj: models.TargetObj{Name: "v", TypeFullName: typeName}}
	for _, n := range invoked {
		o.InvokedCalls = append(o.InvokedCalls, models.Call{CallName: n})
	}
	for i, n := range argTos {
		o.ArgToCalls = append(o.ArgToCalls, models.ArgCall{Call: models.Call{CallName: n}, Order: i + 1})
	}
	return o
}

func TestCandidate(t *testing.T) {
	im := newTestImporter(t, nil)

	tests := []struct {
		name     string
		obj      models.ObjectSlice
		wantOK   bool
		wantType string
	}{
		{"plain type", obj("Foo", []string{"bar"}), true, "Foo"},
		{"empty type", obj("", []string{"bar"}), false, ""},
		{"no evidence", obj("Foo", nil), false, ""},
		{"lambda type", obj("(a) => void", []string{"call"}), false, ""},
		{"inline object type", obj("{ a: number }", []string{"a"}), false, ""},
		{"any recovered from constructor", obj("ANY", nil, "tmp = new Foo"), true, "Foo"},
		{"any recovered keeps arguments", obj("ANY", nil, "x = new Map<string, number>()"), true, "Map<string, number>()"},
		{"any without argument calls", obj("ANY", []string{"run"}), false, ""},
		{"any without constructor", obj("ANY", nil, "log"), false, ""},
		{"any only checks first argument call", obj("ANY", nil, "log", "tmp = new Foo"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := im.Candidate("src/a.ts::program:Foo:bar", tt.obj)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantType, rec.TypeName)
				assert.Equal(t, "Foo.bar", rec.Scope)
				assert.Equal(t, "v", rec.Name)
			}
		})
	}
}

func TestCandidate_LowerUsageBound(t *testing.T) {
	im, err := New(Options{LowerUsage: 3, Dialect: normalize.NewDialect(normalize.LangTypeScript)}, nil)
	require.NoError(t, err)

	_, ok := im.Candidate("s", obj("Foo", []string{"a", "b"}))
	assert.False(t, ok)

	_, ok = im.Candidate("s", obj("Foo", []string{"a", "b"}, "c"))
	assert.True(t, ok, "argument calls count towards evidence")
}

func TestImportBytes(t *testing.T) {
	im := newTestImporter(t, nil)

	res, err := im.ImportBytes([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Scopes)
	assert.Equal(t, 4, res.Stats.Objects)
	assert.Equal(t, 2, res.Stats.Records)
	require.Len(t, res.Records, 2)

	// scopes are visited in sorted order: "...:Server:start" < "...:main"
	first := res.Records[0]
	assert.Equal(t, "conn", first.Name)
	assert.Equal(t, "Server.start", first.Scope)
	assert.Equal(t, "Connection", first.TypeName)
	assert.Len(t, first.InvokedCalls, 2)
	require.Len(t, first.ArgToCalls, 1)
	assert.Equal(t, "log", first.ArgToCalls[0].Call.CallName)
	assert.Equal(t, 1, first.ArgToCalls[0].Order)
	require.NotNil(t, first.InvokedCalls[0].Receiver)
	assert.Equal(t, "conn", *first.InvokedCalls[0].Receiver)

	second := res.Records[1]
	assert.Equal(t, "tmp", second.Name)
	assert.Equal(t, "main", second.Scope)
	assert.Equal(t, "Foo", second.TypeName)
}

func TestImportBytes_SchemaMismatch(t *testing.T) {
	im := newTestImporter(t, nil)

	_, err := im.ImportBytes([]byte(`{"objectSlices": []}`))
	assert.Error(t, err)

	_, err = im.ImportBytes([]byte(`not json`))
	assert.Error(t, err)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeDoc(t, dir, "a.json", sampleDoc),
		writeDoc(t, dir, "b.json", ""),
		writeDoc(t, dir, "c.json", sampleDoc),
	}

	im := newTestImporter(t, nil)
	res, err := im.ImportFiles(context.Background(), files, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Files)
	assert.Equal(t, 1, res.Stats.EmptyFiles)
	assert.Equal(t, 4, res.Stats.Scopes)
	assert.Equal(t, 8, res.Stats.Objects)
	assert.Equal(t, 4, res.Stats.Records)
	require.Len(t, res.Records, 4)
	assert.Equal(t, "conn", res.Records[0].Name)
	assert.Equal(t, "tmp", res.Records[1].Name)
	assert.Equal(t, "conn", res.Records[2].Name)
	assert.InDelta(t, 4.0/3.0, res.Stats.ScopesPerFile(), 1e-9)
	assert.InDelta(t, 50.0, res.Stats.RetainedPercent(), 1e-9)
}

func TestImportFiles_MalformedDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	bad := writeDoc(t, dir, "bad.json", `{"userDefinedTypes": []}`)
	files := []string{writeDoc(t, dir, "good.json", sampleDoc), bad}

	im := newTestImporter(t, nil)
	res, err := im.ImportFiles(context.Background(), files, nil)
	require.Error(t, err)
	assert.Nil(t, res)

	var perr fileproc.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, bad, perr.Path)
}

func TestImportFiles_MissingFileIsFatal(t *testing.T) {
	im := newTestImporter(t, nil)
	_, err := im.ImportFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.json")}, nil)
	assert.Error(t, err)
}

func TestImportFiles_NoFiles(t *testing.T) {
	im := newTestImporter(t, nil)
	res, err := im.ImportFiles(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0.0, res.Stats.ScopesPerFile())
	assert.Equal(t, 0.0, res.Stats.RetainedPercent())
}

func TestImportFiles_Cache(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeDoc(t, dir, "a.json", sampleDoc)}

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 0, true)
	require.NoError(t, err)
	im := newTestImporter(t, c)

	first, err := im.ImportFiles(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Stats.CachedHits)

	second, err := im.ImportFiles(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Stats.CachedHits)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Stats.Records, second.Stats.Records)

	// changed content invalidates the entry
	writeDoc(t, dir, "a.json", `{"objectSlices": {}, "userDefinedTypes": []}`)
	third, err := im.ImportFiles(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Stats.CachedHits)
	assert.Empty(t, third.Records)
}
