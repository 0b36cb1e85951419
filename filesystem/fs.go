package filesystem

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/memfsh/memfsh/internal/index"
	"github.com/memfsh/memfsh/internal/util"
)

// rootNodeID is the registry ID reserved for the tree root.
const rootNodeID = 1

// Separator is the path separator for the simulated tree.
const Separator = "/"

// invalidNameChars may not appear in a node name.
const invalidNameChars = `/\:*?"<>|`

// Entry is one row of a directory listing.
type Entry struct {
	Name       string
	Kind       Kind
	Size       int
	ModifiedAt time.Time
}

// FileSystem owns a single tree rooted at "/" and the working-directory
// reference. Public operations are serialized behind one RWMutex per
// instance: each either fully succeeds or fails with an *OpError and no tree
// mutation. Sessions must not share a FileSystem.
type FileSystem struct {
	mu           sync.RWMutex
	root         *Node
	cwd          *Node
	lastNodeID   atomic.Uint64             // Last registry NodeID assigned
	nodeRegistry *xsync.Map[uint64, *Node] // maps registry NodeIDs to Nodes
	index        *index.Index
	clock        func() time.Time
}

// NewFS creates an empty filesystem with the working directory at root.
func NewFS() *FileSystem {
	rootNode := NewDirNode("/", time.Now())
	rootNode.nodeID.Store(rootNodeID)

	fs := &FileSystem{
		root:         rootNode,
		cwd:          rootNode,
		nodeRegistry: xsync.NewMap[uint64, *Node](),
		index:        index.New(),
		clock:        time.Now,
	}
	fs.lastNodeID.Store(rootNodeID)
	fs.nodeRegistry.Store(rootNodeID, rootNode)
	return fs
}

// Root returns the tree root.
func (fs *FileSystem) Root() *Node { return fs.root }

// Cwd returns the current working directory node.
func (fs *FileSystem) Cwd() *Node {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.cwd
}

// Index returns the global file index kept current by file operations.
func (fs *FileSystem) Index() *index.Index { return fs.index }

// CurrentPath returns the absolute path of the working directory.
func (fs *FileSystem) CurrentPath() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	p, err := fs.cwd.Path()
	if err != nil {
		// cwd relocation happens inside Remove, so this is unreachable; be
		// safe anyway and report root.
		return Separator
	}
	return p
}

// AbsPath resolves path and returns its absolute form; the working
// directory's path when path is empty. Non-mutating.
func (fs *FileSystem) AbsPath(path string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.resolve("resolve", path)
	if err != nil {
		return "", err
	}
	return node.Path()
}

// resolve walks path from the working directory (or root for absolute
// paths) and returns the addressed node. Empty segments and "." are no-ops,
// ".." moves to the parent and is a no-op at root. Intermediate segments
// must be directories.
func (fs *FileSystem) resolve(op, path string) (*Node, error) {
	cur := fs.cwd
	if strings.HasPrefix(path, Separator) {
		cur = fs.root
	}

	for _, seg := range strings.Split(path, Separator) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if p := cur.Parent(); p != nil {
				cur = p
			}
			continue
		}
		if !cur.IsDir() {
			return nil, opErr(op, path, ErrNotADirectory)
		}
		child, ok := cur.GetChild(seg)
		if !ok {
			return nil, opErr(op, path, ErrNotFound)
		}
		cur = child
	}
	return cur, nil
}

// resolveDir resolves path and requires the result to be a directory.
func (fs *FileSystem) resolveDir(op, path string) (*Node, error) {
	node, err := fs.resolve(op, path)
	if err != nil {
		return nil, err
	}
	if !node.IsDir() {
		return nil, opErr(op, path, ErrNotADirectory)
	}
	return node, nil
}

// splitLeaf splits path into its parent directory path and leaf name.
func splitLeaf(path string) (dir, leaf string) {
	trimmed := strings.TrimSuffix(path, Separator)
	if i := strings.LastIndex(trimmed, Separator); i >= 0 {
		return trimmed[:i+1], trimmed[i+1:]
	}
	return "", trimmed
}

// validName rejects empty names, path traversal names and names containing
// separator or reserved characters.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, invalidNameChars)
}

// ChangeDir resolves path to a directory and moves the working directory
// there, returning the new absolute path.
func (fs *FileSystem) ChangeDir(path string) (string, error) {
	logger := util.GetLogger("fs.ChangeDir")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir, err := fs.resolveDir("cd", path)
	if err != nil {
		return "", err
	}
	fs.cwd = dir
	p, _ := dir.Path()
	logger.Debug().Str("path", p).Msg("Changed working directory")
	return p, nil
}

// MakeDir creates a new empty directory at path. The parent directory must
// already exist; the leaf must not.
func (fs *FileSystem) MakeDir(path string) (*Node, error) {
	logger := util.GetLogger("fs.MakeDir")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dirPath, name := splitLeaf(path)
	if !validName(name) {
		return nil, opErr("mkdir", path, ErrInvalidName)
	}
	parent, err := fs.resolveDir("mkdir", dirPath)
	if err != nil {
		return nil, err
	}
	if _, ok := parent.GetChild(name); ok {
		return nil, opErr("mkdir", path, ErrExists)
	}

	node := NewDirNode(name, fs.clock())
	parent.AddChild(node)
	fs.ensureNodeID(node)
	logger.Debug().Str("path", path).Msg("Added new dir node")
	return node, nil
}

// List returns the children of the directory at path (the working directory
// when path is empty) in creation order.
func (fs *FileSystem) List(path string) ([]Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir, err := fs.resolveDir("ls", path)
	if err != nil {
		return nil, err
	}
	children := dir.Children()
	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entries = append(entries, Entry{
			Name:       child.Name(),
			Kind:       child.Kind(),
			Size:       child.Size(),
			ModifiedAt: child.ModifiedAt(),
		})
	}
	return entries, nil
}

// CreateFile creates a file at path with the given content. Fails with
// ErrExists when any node already has that name.
func (fs *FileSystem) CreateFile(path string, content []byte) (*Node, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.createFileLocked("touch", path, content, false)
}

// WriteFile creates the file at path or overwrites its content when it
// already exists. Fails with ErrIsADirectory when path names a directory.
func (fs *FileSystem) WriteFile(path string, content []byte) (*Node, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.createFileLocked("touch", path, content, true)
}

func (fs *FileSystem) createFileLocked(op, path string, content []byte, overwrite bool) (*Node, error) {
	logger := util.GetLogger("fs.WriteFile")

	dirPath, name := splitLeaf(path)
	if !validName(name) {
		return nil, opErr(op, path, ErrInvalidName)
	}
	parent, err := fs.resolveDir(op, dirPath)
	if err != nil {
		return nil, err
	}

	if existing, ok := parent.GetChild(name); ok {
		if existing.IsDir() {
			return nil, opErr(op, path, ErrIsADirectory)
		}
		if !overwrite {
			return nil, opErr(op, path, ErrExists)
		}
		existing.SetContent(content, fs.clock())
		fs.indexFile(existing)
		logger.Debug().Str("path", path).Msg("Overwrote file node")
		return existing, nil
	}

	node := NewFileNode(name, content, fs.clock())
	parent.AddChild(node)
	fs.ensureNodeID(node)
	fs.indexFile(node)
	logger.Debug().Str("path", path).Msg("Added new file node")
	return node, nil
}

// ReadFile returns the content of the file at path.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.resolve("cat", path)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, opErr("cat", path, ErrIsADirectory)
	}
	return node.Content(), nil
}

// Remove deletes the node at path. Directories must be empty unless
// recursive is set, in which case all descendants are removed depth-first.
// If the working directory or one of its ancestors is removed, the working
// directory is relocated to the removed node's parent (the nearest
// surviving ancestor). Returns the absolute path that was removed.
func (fs *FileSystem) Remove(path string, recursive bool) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.removeLocked("rm", path, recursive, false)
}

// RemoveDir is like Remove but only accepts directories.
func (fs *FileSystem) RemoveDir(path string, recursive bool) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.removeLocked("rmdir", path, recursive, true)
}

func (fs *FileSystem) removeLocked(op, path string, recursive, dirOnly bool) (string, error) {
	logger := util.GetLogger("fs.Remove")

	node, err := fs.resolve(op, path)
	if err != nil {
		return "", err
	}
	if node.IsRoot() {
		return "", opErr(op, path, ErrInvalidName)
	}
	if dirOnly && !node.IsDir() {
		return "", opErr(op, path, ErrNotADirectory)
	}
	if node.IsDir() && node.NumChildren() > 0 && !recursive {
		return "", opErr(op, path, ErrDirNotEmpty)
	}

	absPath, _ := node.Path()
	parent := node.Parent()

	// Relocate the working directory before detaching when it is the target
	// or lives underneath it.
	if fs.isAncestorOrSelf(node, fs.cwd) {
		fs.cwd = parent
	}

	parent.RemoveChild(node.Name())
	fs.unregisterTree(node)
	if node.IsDir() {
		fs.index.RemovePrefix(absPath)
	} else {
		fs.index.Remove(absPath)
	}
	node.Del()

	logger.Debug().Str("path", absPath).Bool("recursive", recursive).Msg("Removed node")
	return absPath, nil
}

// Rename gives the node at path a new leaf name within the same directory.
func (fs *FileSystem) Rename(path, newName string) error {
	logger := util.GetLogger("fs.Rename")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !validName(newName) {
		return opErr("rename", newName, ErrInvalidName)
	}
	node, err := fs.resolve("rename", path)
	if err != nil {
		return err
	}
	if node.IsRoot() {
		return opErr("rename", path, ErrInvalidName)
	}
	parent := node.Parent()
	if _, ok := parent.GetChild(newName); ok {
		return opErr("rename", newName, ErrExists)
	}

	oldPath, _ := node.Path()
	node.rename(newName, fs.clock())
	newPath, _ := node.Path()

	if node.IsDir() {
		// Every descendant file moved with the directory; reindex them.
		fs.index.RemovePrefix(oldPath)
		fs.walk(node, func(n *Node, _ string) {
			if !n.IsDir() {
				fs.indexFile(n)
			}
		})
	} else {
		fs.index.Rename(oldPath, newPath, newName)
	}

	logger.Debug().Str("from", oldPath).Str("to", newPath).Msg("Renamed node")
	return nil
}

// Walk visits every node under root depth-first in creation order, passing
// each node with its absolute path.
func (fs *FileSystem) Walk(fn func(n *Node, path string)) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	fs.walk(fs.root, fn)
}

func (fs *FileSystem) walk(start *Node, fn func(n *Node, path string)) {
	p, err := start.Path()
	if err != nil {
		return
	}
	fn(start, p)
	if start.IsDir() {
		for _, child := range start.Children() {
			fs.walk(child, fn)
		}
	}
}

// RebuildIndex clears and repopulates the global file index from the tree.
func (fs *FileSystem) RebuildIndex() {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	fs.index.Clear()
	fs.walk(fs.root, func(n *Node, _ string) {
		if !n.IsDir() {
			fs.indexFile(n)
		}
	})
}

// indexFile inserts or refreshes the index entry for a file node.
func (fs *FileSystem) indexFile(n *Node) {
	p, err := n.Path()
	if err != nil {
		return
	}
	fs.index.Put(&index.Entry{
		Name:       n.Name(),
		Path:       p,
		SizeKB:     index.SizeKB(n.Size()),
		Ext:        n.Ext(),
		CreatedAt:  n.CreatedAt(),
		ModifiedAt: n.ModifiedAt(),
	})
}

// isAncestorOrSelf reports whether node is target or one of its ancestors.
func (fs *FileSystem) isAncestorOrSelf(node, target *Node) bool {
	for cur := target; cur != nil; cur = cur.Parent() {
		if cur == node {
			return true
		}
	}
	return false
}

// ensureNodeID retrieves or allocates the node's registry ID.
func (fs *FileSystem) ensureNodeID(n *Node) uint64 {
	// fast path
	if id := n.nodeID.Load(); id != 0 {
		return id
	}
	newID := fs.lastNodeID.Add(1)
	// only one CAS will succeed
	if n.nodeID.CompareAndSwap(0, newID) {
		fs.nodeRegistry.Store(newID, n)
		return newID
	}
	return n.nodeID.Load()
}

// GetNode returns the node registered under id, if any.
func (fs *FileSystem) GetNode(id uint64) (*Node, bool) {
	return fs.nodeRegistry.Load(id)
}

// unregisterTree drops the registry entries for node and all descendants.
func (fs *FileSystem) unregisterTree(node *Node) {
	if id := node.nodeID.Load(); id != 0 {
		fs.nodeRegistry.Delete(id)
	}
	if node.IsDir() {
		for _, child := range node.Children() {
			fs.unregisterTree(child)
		}
	}
}

// SetClock replaces the timestamp source. Intended for tests that need
// deterministic node metadata.
func (fs *FileSystem) SetClock(clock func() time.Time) {
	fs.clock = clock
}
