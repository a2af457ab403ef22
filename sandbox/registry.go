package sandbox

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/internal/util"
)

// ErrNotFound is returned for unknown session ids
var ErrNotFound = errors.New("session not found")

// Registry maps session ids to sessions
type Registry struct {
	sessions *xsync.Map[string, *Session]
}

func NewRegistry() *Registry {
	return &Registry{sessions: xsync.NewMap[string, *Session]()}
}

// Create starts a session over a new empty tree under a random id
func (r *Registry) Create() *Session {
	return r.Adopt(filesystem.NewDir(""))
}

// Adopt starts a session over an existing tree under a random id
func (r *Registry) Adopt(tree *filesystem.Dir) *Session {
	logger := util.GetLogger("Sandbox")

	for {
		s := NewSession(uuid.New().String(), tree)
		if _, loaded := r.sessions.LoadOrStore(s.ID, s); !loaded {
			logger.Debug().Str("session", s.ID).Msg("Created session")
			return s
		}
	}
}

func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete drops the session. Holders of the *Session may keep using it.
func (r *Registry) Delete(id string) error {
	if _, ok := r.sessions.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	logger := util.GetLogger("Sandbox")
	logger.Debug().Str("session", id).Msg("Deleted session")
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.sessions.Size()
}

// IDs returns the live session ids in no particular order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, r.sessions.Size())
	r.sessions.Range(func(id string, _ *Session) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
