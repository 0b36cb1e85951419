package filesystem

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Kind tags a Node as a directory or a file.
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Node is a single entry in the tree: a directory owning children in
// creation order, or a file holding a content blob. The parent link is a
// non-owning back reference; ownership of a node belongs to exactly one
// parent directory (or to the FileSystem for the root).
type Node struct {
	name   string // last path component; immutable except via rename. Protected by mu
	parent *Node  // Protected by mu
	mu     sync.RWMutex

	kind       Kind
	nodeID     atomic.Uint64 // registry ID assigned by the owning FileSystem
	createdAt  time.Time
	modifiedAt time.Time // Protected by mu

	content []byte // file content; Protected by mu. Nil for directories

	children   *xsync.Map[string, *Node] // child nodes by name; directories only
	childOrder []string                  // child names in creation order. Protected by mu
	isDel      atomic.Bool
}

// NewDirNode creates a detached directory node.
//
// NOTE: Parent node is responsible for adding itself to the returned Node's
// parent ref when linking it as a child.
func NewDirNode(name string, now time.Time) *Node {
	return &Node{
		name:       name,
		kind:       KindDir,
		createdAt:  now,
		modifiedAt: now,
		children:   xsync.NewMap[string, *Node](),
	}
}

// NewFileNode creates a detached file node with the given content.
func NewFileNode(name string, content []byte, now time.Time) *Node {
	return &Node{
		name:       name,
		kind:       KindFile,
		createdAt:  now,
		modifiedAt: now,
		content:    content,
	}
}

// NodeID returns the registry ID of the node; 0 if not registered
func (n *Node) NodeID() uint64 {
	return n.nodeID.Load()
}

// Name returns the node's name.
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Kind returns the node's kind tag.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.kind == KindDir }

// CreatedAt returns the node's creation timestamp.
func (n *Node) CreatedAt() time.Time { return n.createdAt }

// ModifiedAt returns the node's last modification timestamp.
func (n *Node) ModifiedAt() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.modifiedAt
}

// Content returns a copy of the file content; nil for directories.
func (n *Node) Content() []byte {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.content == nil {
		return nil
	}
	out := make([]byte, len(n.content))
	copy(out, n.content)
	return out
}

// Size returns the content length in bytes; 0 for directories.
func (n *Node) Size() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.content)
}

// SetContent replaces the file content and bumps the modification time.
func (n *Node) SetContent(content []byte, now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.content = content
	n.modifiedAt = now
}

// SetModifiedAt overrides the modification timestamp. Used when restoring
// nodes whose history is already known.
func (n *Node) SetModifiedAt(at time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modifiedAt = at
}

// Ext returns the file extension without the dot, or "" when there is none.
func (n *Node) Ext() string {
	name := n.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return ""
}

// Parent returns the owning directory; nil for the root and detached nodes.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Path returns the absolute path of the node from root, "/" for the root.
//
// Returns an error if the node or an ancestor is detached or deleted, with
// the partial path assembled so far.
func (n *Node) Path() (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pathLocked()
}

// See [Node.Path]
func (n *Node) pathLocked() (string, error) {
	if n.isRootLocked() {
		return "/", nil
	}
	if n.isDel.Load() {
		return "", fmt.Errorf("deleted node: %s", n.name)
	}
	p := n.parent
	// handle detached node
	if p == nil {
		return n.name, fmt.Errorf("detached node: %s", n.name)
	}

	pPath, err := p.Path()
	if pPath == "/" {
		return pPath + n.name, err
	}
	return pPath + "/" + n.name, err
}

// AddChild adds a child node to the node's children map, appends it to the
// creation-order listing and sets the child's parent to this node.
func (n *Node) AddChild(child *Node) {
	childName := child.Name()

	n.mu.Lock()
	if _, exists := n.children.Load(childName); !exists {
		n.childOrder = append(n.childOrder, childName)
	}
	n.mu.Unlock()
	n.children.Store(childName, child)

	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = n
}

// GetChild returns a child node by name.
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children.Load(name)
}

// RemoveChild detaches the named child, clearing its parent reference and
// dropping it from the creation-order listing.
func (n *Node) RemoveChild(name string) bool {
	if n.children == nil {
		return false
	}
	if child, exists := n.children.LoadAndDelete(name); exists {
		n.mu.Lock()
		for i, cn := range n.childOrder {
			if cn == name {
				n.childOrder = append(n.childOrder[:i], n.childOrder[i+1:]...)
				break
			}
		}
		n.mu.Unlock()

		child.mu.Lock()
		defer child.mu.Unlock()
		child.parent = nil
		return true
	}
	return false
}

// Children returns the child nodes in creation order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	order := make([]string, len(n.childOrder))
	copy(order, n.childOrder)
	n.mu.RUnlock()

	out := make([]*Node, 0, len(order))
	for _, name := range order {
		if child, ok := n.children.Load(name); ok {
			out = append(out, child)
		}
	}
	return out
}

// NumChildren returns the number of children; 0 for files.
func (n *Node) NumChildren() int {
	if n.children == nil {
		return 0
	}
	return n.children.Size()
}

// rename updates the node's own name and its key within the parent's
// children map without changing creation order.
func (n *Node) rename(newName string, now time.Time) {
	n.mu.RLock()
	p := n.parent
	old := n.name
	n.mu.RUnlock()

	if p != nil {
		p.children.Delete(old)
	}
	n.mu.Lock()
	n.name = newName
	n.modifiedAt = now
	n.mu.Unlock()
	if p != nil {
		p.children.Store(newName, n)
		p.mu.Lock()
		for i, cn := range p.childOrder {
			if cn == old {
				p.childOrder[i] = newName
				break
			}
		}
		p.mu.Unlock()
	}
}

// IsDel reports whether the node was marked deleted.
func (n *Node) IsDel() bool {
	return n.isDel.Load()
}

// Del marks the node as deleted and detaches its parent reference.
func (n *Node) Del() {
	n.isDel.Store(true)
	n.mu.Lock()
	n.parent = nil
	n.mu.Unlock()
}

// IsRoot reports whether this node is the tree root.
func (n *Node) IsRoot() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.isRootLocked()
}

func (n *Node) isRootLocked() bool {
	// cover detached nodes: only the root carries registry ID 1 with no parent
	return n.parent == nil && n.nodeID.Load() == rootNodeID
}
