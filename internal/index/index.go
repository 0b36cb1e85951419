// Package index maintains the global file index: every file in the tree is
// registered under its absolute path so name and size queries never have to
// walk the directory tree.
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Entry is the indexed metadata for a single file.
type Entry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	SizeKB     int       `json:"size_kb"`
	Ext        string    `json:"ext,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Index is a concurrent path-keyed registry of file entries.
type Index struct {
	entries *xsync.Map[string, *Entry]
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: xsync.NewMap[string, *Entry]()}
}

// SizeKB converts a byte count to the KB figure stored in entries.
// Rounds up so a 1-byte file indexes as 1 KB.
func SizeKB(sizeBytes int) int {
	if sizeBytes == 0 {
		return 0
	}
	return (sizeBytes + 1023) / 1024
}

// Put inserts or replaces the entry for its path.
func (ix *Index) Put(e *Entry) {
	ix.entries.Store(e.Path, e)
}

// Remove drops the entry for path.
func (ix *Index) Remove(path string) {
	ix.entries.Delete(path)
}

// RemovePrefix drops every entry whose path is prefix itself or lives under
// prefix. Used when a directory is removed or renamed.
func (ix *Index) RemovePrefix(prefix string) {
	dir := strings.TrimSuffix(prefix, "/") + "/"
	ix.entries.Range(func(path string, _ *Entry) bool {
		if path == prefix || strings.HasPrefix(path, dir) {
			ix.entries.Delete(path)
		}
		return true
	})
}

// Rename moves the entry at oldPath to newPath, updating the stored name.
func (ix *Index) Rename(oldPath, newPath, newName string) {
	if e, ok := ix.entries.LoadAndDelete(oldPath); ok {
		moved := *e
		moved.Path = newPath
		moved.Name = newName
		moved.Ext = extOf(newName)
		ix.entries.Store(newPath, &moved)
	}
}

// Clear empties the index.
func (ix *Index) Clear() {
	ix.entries.Clear()
}

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	return ix.entries.Size()
}

// Search returns entries whose name contains text (case-insensitive) and
// whose size falls within [minKB, maxKB]. Pass text == "" to skip the name
// filter and a negative bound to leave that side open. Results are sorted by
// path for deterministic output.
func (ix *Index) Search(text string, minKB, maxKB int) []*Entry {
	needle := strings.ToLower(text)
	var out []*Entry
	ix.entries.Range(func(_ string, e *Entry) bool {
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			return true
		}
		if minKB >= 0 && e.SizeKB < minKB {
			return true
		}
		if maxKB >= 0 && e.SizeKB > maxKB {
			return true
		}
		out = append(out, e)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return ""
}
