package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDir_IsRoot(t *testing.T) {
	t.Parallel()

	root := NewDir("")

	assert.True(t, root.IsRoot())
	assert.Equal(t, root, root.Parent(), "root must be its own parent")
	assert.Equal(t, "", root.Path())
	assert.Equal(t, root, root.Current())
	assert.Equal(t, root, root.Previous())
}

func TestDir_SyntheticEntries(t *testing.T) {
	t.Parallel()

	root := NewDir("")
	sub := NewDir("sub")
	root.put(sub)

	for _, name := range []string{"", "."} {
		n, ok := sub.Child(name)
		require.True(t, ok)
		assert.Equal(t, Node(sub), n)
	}

	up, ok := sub.Child("..")
	require.True(t, ok)
	assert.Equal(t, Node(root), up)

	up, ok = root.Child("..")
	require.True(t, ok)
	assert.Equal(t, Node(root), up, "'..' at the root is the root")

	assert.Equal(t, 0, sub.Len(), "synthetic entries are not real content")
	assert.Equal(t, []string{"sub"}, root.Names())
}

func TestDir_PutKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	root := NewDir("")
	for _, name := range []string{"c", "a", "b"} {
		root.put(NewFile(name, ModeReadWrite))
	}
	assert.Equal(t, []string{"c", "a", "b"}, root.Names())

	// replacing keeps the slot and detaches the displaced node
	old, _ := root.Child("a")
	replacement := NewDir("a")
	root.put(replacement)

	assert.Equal(t, []string{"c", "a", "b"}, root.Names())
	got, _ := root.Child("a")
	assert.Equal(t, Node(replacement), got)
	assert.True(t, old.IsRoot(), "displaced node must be detached")
	assert.Nil(t, old.Parent())
}

func TestDir_Unattach(t *testing.T) {
	t.Parallel()

	root := NewDir("")
	sub := NewDir("sub")
	root.put(sub)
	f := NewFile("f", ModeReadWrite)
	sub.put(f)

	unattach(sub)

	assert.Equal(t, 0, root.Len())
	assert.True(t, sub.IsRoot())
	assert.Equal(t, "f", f.Path(), "paths are relative to the detached subtree")

	// second unattach is a no-op
	unattach(sub)
	assert.True(t, sub.IsRoot())
}

func TestNode_PathAndLess(t *testing.T) {
	t.Parallel()

	root := NewDir("")
	a := NewDir("a")
	root.put(a)
	f := NewFile("f.txt", ModeReadWrite)
	a.put(f)

	assert.Equal(t, "a", a.Path())
	assert.Equal(t, "a/f.txt", f.Path())
	assert.True(t, root.Less(a))
	assert.True(t, a.Less(f))
	assert.False(t, f.Less(f))
}

func TestDeepCopy_Dir(t *testing.T) {
	t.Parallel()

	root := NewDir("")
	_, err := root.OpenFile("src/a/x", true, ModeReadWrite)
	require.NoError(t, err)
	src, err := root.Lookup("src")
	require.NoError(t, err)

	dup, ok := DeepCopy(src).(*Dir)
	require.True(t, ok)

	assert.True(t, dup.IsRoot())
	assert.Equal(t, "src", dup.Name())
	assert.Equal(t, []string{"a"}, dup.Names())

	origA, _ := src.(*Dir).Child("a")
	dupA, _ := dup.Child("a")
	assert.NotSame(t, origA, dupA)
	assert.Equal(t, dup, dupA.Parent(), "parent links must point at the copies")

	x, err := dup.Lookup("a/x")
	require.NoError(t, err)
	assert.Equal(t, "a/x", x.Path())
}
