package filesystem

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_AddChild(t *testing.T) {
	now := time.Now()
	parent := NewDirNode("parent", now)
	child := NewFileNode("child.txt", []byte("data"), now)

	parent.AddChild(child)

	retrieved, exists := parent.GetChild("child.txt")
	require.True(t, exists)
	assert.Equal(t, child, retrieved)

	// Verify parent reference was set
	assert.Equal(t, parent, child.Parent())
}

func TestNode_GetChild_Missing(t *testing.T) {
	parent := NewDirNode("parent", time.Now())

	child, exists := parent.GetChild("nonexistent.txt")
	assert.False(t, exists)
	assert.Nil(t, child)
}

func TestNode_GetChild_OnFile(t *testing.T) {
	file := NewFileNode("a.txt", nil, time.Now())

	// Files have no children map at all
	child, exists := file.GetChild("anything")
	assert.False(t, exists)
	assert.Nil(t, child)
	assert.Equal(t, 0, file.NumChildren())
}

func TestNode_RemoveChild(t *testing.T) {
	now := time.Now()
	parent := NewDirNode("parent", now)
	child := NewFileNode("child.txt", nil, now)
	parent.AddChild(child)

	removed := parent.RemoveChild("child.txt")
	assert.True(t, removed)

	_, exists := parent.GetChild("child.txt")
	assert.False(t, exists)
	assert.Nil(t, child.Parent())

	// Removing again is a no-op
	assert.False(t, parent.RemoveChild("child.txt"))
}

func TestNode_ChildrenCreationOrder(t *testing.T) {
	now := time.Now()
	parent := NewDirNode("parent", now)
	names := []string{"zeta", "alpha", "mid", "beta"}
	for _, name := range names {
		parent.AddChild(NewFileNode(name, nil, now))
	}

	children := parent.Children()
	require.Len(t, children, len(names))
	for i, child := range children {
		assert.Equal(t, names[i], child.Name())
	}
}

func TestNode_ContentIsCopied(t *testing.T) {
	file := NewFileNode("a.txt", []byte("hello"), time.Now())

	got := file.Content()
	got[0] = 'X'

	assert.Equal(t, []byte("hello"), file.Content())
	assert.Equal(t, 5, file.Size())
}

func TestNode_SetContent(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	modified := created.Add(time.Hour)
	file := NewFileNode("a.txt", []byte("old"), created)

	file.SetContent([]byte("new content"), modified)

	assert.Equal(t, []byte("new content"), file.Content())
	assert.Equal(t, created, file.CreatedAt())
	assert.Equal(t, modified, file.ModifiedAt())
}

func TestNode_Ext(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		want string
	}{
		{"report.txt", "txt"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"trailing.", ""},
		{".hidden", "hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewFileNode(tt.name, nil, now).Ext(), "name %q", tt.name)
	}
}

func TestNode_Path(t *testing.T) {
	fs := NewFS()
	docs, err := fs.MakeDir("/docs")
	require.NoError(t, err)
	file, err := fs.CreateFile("/docs/note.txt", []byte("x"))
	require.NoError(t, err)

	rootPath, err := fs.Root().Path()
	require.NoError(t, err)
	assert.Equal(t, "/", rootPath)

	dirPath, err := docs.Path()
	require.NoError(t, err)
	assert.Equal(t, "/docs", dirPath)

	filePath, err := file.Path()
	require.NoError(t, err)
	assert.Equal(t, "/docs/note.txt", filePath)
}

func TestNode_Path_Detached(t *testing.T) {
	detached := NewFileNode("orphan.txt", nil, time.Now())

	_, err := detached.Path()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "detached node")
}

func TestNode_Path_Deleted(t *testing.T) {
	fs := NewFS()
	file, err := fs.CreateFile("/gone.txt", nil)
	require.NoError(t, err)
	_, err = fs.Remove("/gone.txt", false)
	require.NoError(t, err)

	assert.True(t, file.IsDel())
	_, err = file.Path()
	assert.Error(t, err)
}

func TestNode_Rename_KeepsOrder(t *testing.T) {
	now := time.Now()
	parent := NewDirNode("parent", now)
	for _, name := range []string{"a", "b", "c"} {
		parent.AddChild(NewFileNode(name, nil, now))
	}

	mid, ok := parent.GetChild("b")
	require.True(t, ok)
	mid.rename("renamed", now.Add(time.Minute))

	_, exists := parent.GetChild("b")
	assert.False(t, exists)
	got, exists := parent.GetChild("renamed")
	require.True(t, exists)
	assert.Equal(t, mid, got)

	children := parent.Children()
	require.Len(t, children, 3)
	assert.Equal(t, "renamed", children[1].Name())
}

func TestNode_ConcurrentAddChild(t *testing.T) {
	parent := NewDirNode("parent", time.Now())
	const numChildren = 100

	var wg sync.WaitGroup
	for i := 0; i < numChildren; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			parent.AddChild(NewFileNode(fmt.Sprintf("child%d.txt", i), nil, time.Now()))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numChildren, parent.NumChildren())
	assert.Len(t, parent.Children(), numChildren)
}
