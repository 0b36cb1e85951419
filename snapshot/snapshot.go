// Package snapshot serializes the simulated tree to versioned JSON files and
// restores the newest one at startup. The format carries an explicit version
// tag so later revisions can migrate old snapshots.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memfsh/memfsh/filesystem"
	"github.com/memfsh/memfsh/internal/util"
)

// FormatVersion tags the on-disk snapshot layout.
const FormatVersion = 1

// ErrNoSnapshots is returned by LoadLatest when the snapshot directory holds
// no usable snapshot file.
var ErrNoSnapshots = errors.New("no snapshots found")

// Snapshot is the on-disk representation of a full session state.
type Snapshot struct {
	Version    int       `json:"version"`
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Cwd        string    `json:"cwd"`
	Operations []string  `json:"operations,omitempty"`
	Errors     []string  `json:"errors,omitempty"`
	Root       *TreeNode `json:"root"`
}

// TreeNode mirrors one filesystem node; children are stored in creation
// order so a restored tree lists identically to the saved one.
type TreeNode struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Content    string      `json:"content,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	ModifiedAt time.Time   `json:"modified_at"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// State carries the session state stored alongside the tree.
type State struct {
	Cwd        string
	Operations []string
	Errors     []string
}

// Manager writes and restores snapshots under a single directory.
type Manager struct {
	dir string
}

// NewManager creates a Manager rooted at dir. The directory is created on
// the first Save.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string { return m.dir }

// Build captures fs and state into an in-memory Snapshot.
func Build(fs *filesystem.FileSystem, state State) *Snapshot {
	return &Snapshot{
		Version:    FormatVersion,
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		Cwd:        state.Cwd,
		Operations: state.Operations,
		Errors:     state.Errors,
		Root:       buildTree(fs.Root()),
	}
}

func buildTree(n *filesystem.Node) *TreeNode {
	tn := &TreeNode{
		Name:       n.Name(),
		Kind:       n.Kind().String(),
		CreatedAt:  n.CreatedAt(),
		ModifiedAt: n.ModifiedAt(),
	}
	if n.IsDir() {
		for _, child := range n.Children() {
			tn.Children = append(tn.Children, buildTree(child))
		}
	} else {
		tn.Content = string(n.Content())
	}
	return tn
}

// Save writes a snapshot of fs and state and returns the file path.
func (m *Manager) Save(fs *filesystem.FileSystem, state State) (string, error) {
	logger := util.GetLogger("snapshot.Save")

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := Build(fs, state)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("snapshot_%s_%s.json",
		snap.CreatedAt.Format("20060102T150405"), snap.ID[:8])
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	logger.Debug().Str("path", path).Str("id", snap.ID).Msg("Snapshot written")
	return path, nil
}

// LoadLatest reads the newest snapshot file in the directory. File names
// embed the creation timestamp, so lexical order is chronological order.
func (m *Manager) LoadLatest() (*Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshots
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "snapshot_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoSnapshots
	}
	sort.Strings(names)

	path := filepath.Join(m.dir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", path, err)
	}
	if snap.Version != FormatVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, snap.Version)
	}
	if snap.Root == nil {
		return nil, fmt.Errorf("snapshot %s: missing root", path)
	}
	return &snap, nil
}

// Restore replays snap into fs, which must be freshly created, and returns
// the restored session state. Node timestamps are carried over from the
// snapshot. The global file index is rebuilt afterwards.
func (m *Manager) Restore(snap *Snapshot, fs *filesystem.FileSystem) (State, error) {
	logger := util.GetLogger("snapshot.Restore")

	if err := restoreChildren(fs, snap.Root, ""); err != nil {
		return State{}, err
	}
	fs.SetClock(time.Now)
	fs.RebuildIndex()

	cwd := snap.Cwd
	if cwd == "" {
		cwd = filesystem.Separator
	}
	if _, err := fs.ChangeDir(cwd); err != nil {
		// The stored working directory can be stale; fall back to root.
		logger.Warn().Str("cwd", cwd).Err(err).Msg("Stored working directory missing, using root")
		if _, err := fs.ChangeDir(filesystem.Separator); err != nil {
			return State{}, err
		}
	}

	logger.Info().Str("id", snap.ID).Time("created_at", snap.CreatedAt).Msg("Snapshot restored")
	return State{
		Cwd:        fs.CurrentPath(),
		Operations: snap.Operations,
		Errors:     snap.Errors,
	}, nil
}

func restoreChildren(fs *filesystem.FileSystem, dir *TreeNode, base string) error {
	for _, child := range dir.Children {
		path := base + filesystem.Separator + child.Name
		created := child.CreatedAt
		fs.SetClock(func() time.Time { return created })
		var node *filesystem.Node
		var err error
		switch child.Kind {
		case filesystem.KindDir.String():
			if node, err = fs.MakeDir(path); err != nil {
				return fmt.Errorf("restore dir %s: %w", path, err)
			}
			if err := restoreChildren(fs, child, path); err != nil {
				return err
			}
		default:
			if node, err = fs.WriteFile(path, []byte(child.Content)); err != nil {
				return fmt.Errorf("restore file %s: %w", path, err)
			}
		}
		// Creation pinned the clock, so the node came back with
		// ModifiedAt == CreatedAt; apply the stored modification time.
		if !child.ModifiedAt.IsZero() {
			node.SetModifiedAt(child.ModifiedAt)
		}
	}
	return nil
}
