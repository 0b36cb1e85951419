package filesystem

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFS(t *testing.T) {
	fs := NewFS()

	assert.Equal(t, "/", fs.CurrentPath())
	assert.Same(t, fs.Root(), fs.Cwd())
	assert.True(t, fs.Root().IsRoot())
	assert.Equal(t, 0, fs.Root().NumChildren())

	node, ok := fs.GetNode(rootNodeID)
	require.True(t, ok)
	assert.Same(t, fs.Root(), node)
}

func TestFS_MakeDir(t *testing.T) {
	fs := NewFS()

	node, err := fs.MakeDir("/projects")
	require.NoError(t, err)
	assert.True(t, node.IsDir())
	assert.Equal(t, "projects", node.Name())
	assert.NotZero(t, node.NodeID())

	// Nested creation requires the parent to exist
	_, err = fs.MakeDir("/projects/go")
	require.NoError(t, err)
	_, err = fs.MakeDir("/missing/sub")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFS_MakeDir_AlreadyExists(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/docs")
	require.NoError(t, err)

	_, err = fs.MakeDir("/docs")
	assert.ErrorIs(t, err, ErrExists)

	// The failed call must not have touched the tree
	entries, err := fs.List("/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFS_MakeDir_InvalidName(t *testing.T) {
	fs := NewFS()
	for _, path := range []string{"", ".", "..", "bad*name", `ba"d`, "sp|it"} {
		_, err := fs.MakeDir(path)
		assert.ErrorIs(t, err, ErrInvalidName, "path %q", path)
	}
}

func TestFS_ChangeDir(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/a")
	require.NoError(t, err)
	_, err = fs.MakeDir("/a/b")
	require.NoError(t, err)

	p, err := fs.ChangeDir("/a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", p)
	assert.Equal(t, "/a/b", fs.CurrentPath())

	// Relative resolution from the working directory
	p, err = fs.ChangeDir("..")
	require.NoError(t, err)
	assert.Equal(t, "/a", p)

	// ".." at root stays at root
	_, err = fs.ChangeDir("/")
	require.NoError(t, err)
	p, err = fs.ChangeDir("..")
	require.NoError(t, err)
	assert.Equal(t, "/", p)
}

func TestFS_ChangeDir_RoundTrip(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/docs")
	require.NoError(t, err)

	before := fs.CurrentPath()
	_, err = fs.ChangeDir("docs")
	require.NoError(t, err)
	_, err = fs.ChangeDir("..")
	require.NoError(t, err)
	assert.Equal(t, before, fs.CurrentPath())
}

func TestFS_ChangeDir_Errors(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/note.txt", nil)
	require.NoError(t, err)

	_, err = fs.ChangeDir("/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fs.ChangeDir("/note.txt")
	assert.ErrorIs(t, err, ErrNotADirectory)

	// The working directory is untouched after a failed cd
	assert.Equal(t, "/", fs.CurrentPath())
}

func TestFS_AbsPath(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/a")
	require.NoError(t, err)
	_, err = fs.MakeDir("/a/b")
	require.NoError(t, err)
	_, err = fs.ChangeDir("/a")
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"", "/a"},
		{".", "/a"},
		{"b", "/a/b"},
		{"..", "/"},
		{"/a/b", "/a/b"},
	}
	for _, tt := range tests {
		got, err := fs.AbsPath(tt.path)
		require.NoError(t, err, "path %q", tt.path)
		assert.Equal(t, tt.want, got, "path %q", tt.path)
	}

	_, err = fs.AbsPath("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFS_List_CreationOrder(t *testing.T) {
	fs := NewFS()
	names := []string{"zeta", "alpha.txt", "mid", "beta.txt"}
	for _, name := range names {
		var err error
		if name == "zeta" || name == "mid" {
			_, err = fs.MakeDir("/" + name)
		} else {
			_, err = fs.CreateFile("/"+name, []byte("x"))
		}
		require.NoError(t, err)
	}

	entries, err := fs.List("")
	require.NoError(t, err)
	require.Len(t, entries, len(names))
	for i, e := range entries {
		assert.Equal(t, names[i], e.Name)
	}
	assert.Equal(t, KindDir, entries[0].Kind)
	assert.Equal(t, KindFile, entries[1].Kind)
	assert.Equal(t, 1, entries[1].Size)
}

func TestFS_CreateFile(t *testing.T) {
	fs := NewFS()

	node, err := fs.CreateFile("/notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), node.Content())

	// A second create with the same name fails, file untouched
	_, err = fs.CreateFile("/notes.txt", []byte("other"))
	assert.ErrorIs(t, err, ErrExists)
	content, err := fs.ReadFile("/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestFS_WriteFile_Overwrites(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/notes.txt", []byte("old"))
	require.NoError(t, err)

	node, err := fs.WriteFile("/notes.txt", []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), node.Content())

	// Writing over a directory is rejected
	_, err = fs.MakeDir("/docs")
	require.NoError(t, err)
	_, err = fs.WriteFile("/docs", []byte("x"))
	assert.ErrorIs(t, err, ErrIsADirectory)
}

func TestFS_ReadFile(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/a.txt", []byte("content"))
	require.NoError(t, err)
	_, err = fs.MakeDir("/docs")
	require.NoError(t, err)

	content, err := fs.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)

	_, err = fs.ReadFile("/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fs.ReadFile("/docs")
	assert.ErrorIs(t, err, ErrIsADirectory)
}

func TestFS_Remove_File(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/a.txt", []byte("x"))
	require.NoError(t, err)

	p, err := fs.Remove("/a.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "/a.txt", p)

	_, err = fs.ReadFile("/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, fs.Index().Len())
}

func TestFS_Remove_MissingLeavesTreeUnchanged(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/keep.txt", nil)
	require.NoError(t, err)

	_, err = fs.Remove("/nope", false)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := fs.List("/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name)
}

func TestFS_Remove_DirNotEmpty(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/docs")
	require.NoError(t, err)
	_, err = fs.CreateFile("/docs/a.txt", nil)
	require.NoError(t, err)

	_, err = fs.Remove("/docs", false)
	assert.ErrorIs(t, err, ErrDirNotEmpty)

	// Recursive removal takes the whole subtree with it
	_, err = fs.Remove("/docs", true)
	require.NoError(t, err)
	_, err = fs.ChangeDir("/docs")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, fs.Index().Len())
}

func TestFS_Remove_Root(t *testing.T) {
	fs := NewFS()
	_, err := fs.Remove("/", true)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFS_Remove_RelocatesCwd(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/a")
	require.NoError(t, err)
	_, err = fs.MakeDir("/a/b")
	require.NoError(t, err)
	_, err = fs.ChangeDir("/a/b")
	require.NoError(t, err)

	// Removing an ancestor of the working directory moves cwd to the
	// removed node's parent.
	_, err = fs.Remove("/a", true)
	require.NoError(t, err)
	assert.Equal(t, "/", fs.CurrentPath())
}

func TestFS_RemoveDir_RejectsFiles(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/a.txt", nil)
	require.NoError(t, err)

	_, err = fs.RemoveDir("/a.txt", false)
	assert.ErrorIs(t, err, ErrNotADirectory)

	_, err = fs.MakeDir("/docs")
	require.NoError(t, err)
	_, err = fs.RemoveDir("/docs", false)
	assert.NoError(t, err)
}

func TestFS_Rename_File(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/old.txt", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, fs.Rename("/old.txt", "new.txt"))

	_, err = fs.ReadFile("/old.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	content, err := fs.ReadFile("/new.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), content)

	// Index follows the rename
	results := fs.Index().Search("new", -1, -1)
	require.Len(t, results, 1)
	assert.Equal(t, "/new.txt", results[0].Path)
	assert.Equal(t, "txt", results[0].Ext)
}

func TestFS_Rename_Dir_ReindexesSubtree(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/docs")
	require.NoError(t, err)
	_, err = fs.CreateFile("/docs/a.txt", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, fs.Rename("/docs", "papers"))

	results := fs.Index().Search("a.txt", -1, -1)
	require.Len(t, results, 1)
	assert.Equal(t, "/papers/a.txt", results[0].Path)
}

func TestFS_Rename_Errors(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/a.txt", nil)
	require.NoError(t, err)
	_, err = fs.CreateFile("/b.txt", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, fs.Rename("/a.txt", "b.txt"), ErrExists)
	assert.ErrorIs(t, fs.Rename("/a.txt", "bad/name"), ErrInvalidName)
	assert.ErrorIs(t, fs.Rename("/", "root"), ErrInvalidName)
	assert.ErrorIs(t, fs.Rename("/missing", "x"), ErrNotFound)
}

func TestFS_OpError(t *testing.T) {
	fs := NewFS()
	_, err := fs.ChangeDir("/nope")

	var opError *OpError
	require.True(t, errors.As(err, &opError))
	assert.Equal(t, "cd", opError.Op)
	assert.Equal(t, "/nope", opError.Path)
	assert.ErrorIs(t, opError, ErrNotFound)
}

func TestFS_Walk(t *testing.T) {
	fs := NewFS()
	_, err := fs.MakeDir("/a")
	require.NoError(t, err)
	_, err = fs.CreateFile("/a/f.txt", nil)
	require.NoError(t, err)
	_, err = fs.CreateFile("/g.txt", nil)
	require.NoError(t, err)

	var paths []string
	fs.Walk(func(_ *Node, path string) {
		paths = append(paths, path)
	})
	assert.Equal(t, []string{"/", "/a", "/a/f.txt", "/g.txt"}, paths)
}

func TestFS_RebuildIndex(t *testing.T) {
	fs := NewFS()
	_, err := fs.CreateFile("/a.txt", []byte("x"))
	require.NoError(t, err)
	_, err = fs.MakeDir("/docs")
	require.NoError(t, err)
	_, err = fs.CreateFile("/docs/b.txt", []byte("y"))
	require.NoError(t, err)

	fs.Index().Clear()
	require.Equal(t, 0, fs.Index().Len())

	fs.RebuildIndex()
	assert.Equal(t, 2, fs.Index().Len())
}

func TestFS_SetClock(t *testing.T) {
	fs := NewFS()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fs.SetClock(func() time.Time { return fixed })

	node, err := fs.CreateFile("/a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, fixed, node.CreatedAt())
	assert.Equal(t, fixed, node.ModifiedAt())
}

func TestFS_ConcurrentOperations(t *testing.T) {
	fs := NewFS()
	const numOps = 50

	var wg sync.WaitGroup
	for i := 0; i < numOps; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := fs.MakeDir(fmt.Sprintf("/dir%d", i))
			assert.NoError(t, err)
			_, err = fs.CreateFile(fmt.Sprintf("/file%d.txt", i), []byte("x"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := fs.List("/")
	require.NoError(t, err)
	assert.Len(t, entries, numOps*2)
	assert.Equal(t, numOps, fs.Index().Len())
}
