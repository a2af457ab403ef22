package sandbox

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/vdir/filesystem"
)

func TestRegistry_Lifecycle(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	a := r.Create()
	b := r.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())
	assert.ElementsMatch(t, []string{a.ID, b.ID}, r.IDs())

	got, err := r.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, r.Delete(a.ID))
	_, err = r.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(a.ID), ErrNotFound)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	a, b := r.Create(), r.Create()

	require.NoError(t, a.Update(func(tree *filesystem.Dir) error {
		_, err := tree.Mkdir("only/in/a", true, false)
		return err
	}))

	require.NoError(t, b.View(func(tree *filesystem.Dir) error {
		assert.False(t, tree.IsDir("only"))
		return nil
	}))
}

func TestRegistry_Adopt(t *testing.T) {
	t.Parallel()
	tree := filesystem.NewDir("")
	_, err := tree.Mkdir("seed", false, false)
	require.NoError(t, err)

	s := NewRegistry().Adopt(tree)

	require.NoError(t, s.View(func(tree *filesystem.Dir) error {
		assert.True(t, tree.IsDir("seed"))
		return nil
	}))
}

func TestSession_ConcurrentUpdates(t *testing.T) {
	t.Parallel()
	s := NewRegistry().Create()

	const workers = 16
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(func(tree *filesystem.Dir) error {
				f, err := tree.OpenFile(fmt.Sprintf("w/%d", i), true, filesystem.ModeWrite)
				if err != nil {
					return err
				}
				_, err = f.WriteString("x")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, s.View(func(tree *filesystem.Dir) error {
		n, err := tree.Lookup("w")
		require.NoError(t, err)
		assert.Equal(t, workers, n.(*filesystem.Dir).Len())
		return nil
	}))
}

func TestSession_PropagatesErrors(t *testing.T) {
	t.Parallel()
	s := NewRegistry().Create()

	err := s.Update(func(tree *filesystem.Dir) error {
		_, err := tree.Cd("missing")
		return err
	})
	assert.ErrorIs(t, err, filesystem.ErrNotExist)
}
