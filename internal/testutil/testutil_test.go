package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/schema"
)

func TestSliceDocMatchesSchema(t *testing.T) {
	doc := SliceDoc(t, map[string][]Object{
		"src/a.ts::program:main": {
			{Name: "conn", Type: "Connection", Calls: []string{"open"}, ArgTos: []string{"log", "send"}},
		},
	})

	v, err := schema.New()
	require.NoError(t, err)
	require.NoError(t, v.Validate([]byte(doc)))

	var parsed models.Document
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	objs := parsed.ObjectSlices["src/a.ts::program:main"]
	require.Len(t, objs, 1)
	assert.Equal(t, "Connection", objs[0].TargetObj.TypeFullName)
	require.Len(t, objs[0].ArgToCalls, 2)
	assert.Equal(t, 2, objs[0].ArgToCalls[1].Order)
	assert.Equal(t, 3, objs[0].Evidence())
}

func TestCreateFileTree(t *testing.T) {
	root := t.TempDir()
	CreateFileTree(t, root, map[string]string{
		"a.json":        "{}",
		"nested/b.json": "",
	})

	data, err := os.ReadFile(filepath.Join(root, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	info, err := os.Stat(filepath.Join(root, "nested", "b.json"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
