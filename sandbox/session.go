// Package sandbox keeps independent trees side by side, each one safe for
// concurrent use.
package sandbox

import (
	"sync"

	"github.com/brettbedarf/vdir/filesystem"
)

// Session owns one tree. A tree is not safe for concurrent use on its own, so
// every access goes through Update or View.
type Session struct {
	ID string

	mu   sync.RWMutex
	tree *filesystem.Dir
}

// NewSession wraps tree; it must not be used directly afterwards
func NewSession(id string, tree *filesystem.Dir) *Session {
	return &Session{ID: id, tree: tree}
}

// Update runs fn with exclusive access to the tree. Anything that changes the
// tree, including Cd and file reads and writes (which move cursors), needs
// Update.
func (s *Session) Update(fn func(tree *filesystem.Dir) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tree)
}

// View runs fn with shared access. fn must not change the tree: no Cd, no
// Read/Write/Seek/SetMode on files. Bytes, Size, Lookup and Walk are fine.
func (s *Session) View(fn func(tree *filesystem.Dir) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.tree)
}
