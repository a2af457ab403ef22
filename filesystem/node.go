package filesystem

import (
	"slices"
	"strings"
	"sync/atomic"
)

// lastID is the last node identity handed out; shared by every tree in the process
var lastID atomic.Uint64

// Node is either a *File or a *Dir. Two nodes are equal only if they are the
// same value; compare them with ==.
type Node interface {
	// Name returns the node's name (last path component)
	Name() string

	// Parent returns the owning directory, or nil for a detached file.
	// A root directory is its own parent.
	Parent() *Dir

	// IsRoot reports whether the node heads its own tree
	IsRoot() bool

	// Path returns the slash separated path from the node's root; "" for the root
	Path() string

	// ID returns the node's process-unique identity
	ID() uint64

	// Less orders nodes by identity. It carries no meaning beyond being stable.
	Less(other Node) bool

	base() *node
	clone() Node
	detach()
}

// node holds the fields common to both variants
type node struct {
	id     uint64
	name   string
	parent *Dir // non-owning; the parent's children entry is the owning edge
}

func newNode(name string) node {
	return node{id: lastID.Add(1), name: name}
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Parent() *Dir {
	return n.parent
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Less(other Node) bool {
	return n.id < other.ID()
}

func (n *node) base() *node {
	return n
}

// pathOf joins the names from n's root down to n
func pathOf(n Node) string {
	var names []string
	for cur := n; !cur.IsRoot(); cur = cur.Parent() {
		names = append(names, cur.Name())
	}
	slices.Reverse(names)
	return strings.Join(names, "/")
}

// displayPath renders a node's path for error messages
func displayPath(n Node) string {
	return "/" + n.Path()
}

// rootOf returns the directory heading the tree n belongs to, or nil when n
// is a detached file
func rootOf(n Node) *Dir {
	cur := n
	for !cur.IsRoot() {
		cur = cur.Parent()
	}
	d, _ := cur.(*Dir)
	return d
}

// unattach removes n from its parent's children, making n the root of its own
// detached subtree. No-op for roots.
func unattach(n Node) {
	if n.IsRoot() {
		return
	}
	p := n.Parent()
	if cur, ok := p.children.get(n.Name()); ok && cur == n {
		p.children.remove(n.Name())
	}
	n.detach()
}

// DeepCopy returns an independent copy of n: fresh file buffers, fresh directory
// mappings and parent links pointing at the new nodes. The copy is detached.
func DeepCopy(n Node) Node {
	return n.clone()
}
