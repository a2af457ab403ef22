package filesystem

import "slices"

// entries is an insertion-ordered name -> Node mapping
type entries struct {
	names []string
	index map[string]Node
}

func (e *entries) get(name string) (Node, bool) {
	n, ok := e.index[name]
	return n, ok
}

// set stores n under name. An existing name keeps its position.
func (e *entries) set(name string, n Node) {
	if e.index == nil {
		e.index = make(map[string]Node)
	}
	if _, ok := e.index[name]; !ok {
		e.names = append(e.names, name)
	}
	e.index[name] = n
}

func (e *entries) remove(name string) {
	if _, ok := e.index[name]; !ok {
		return
	}
	delete(e.index, name)
	if i := slices.Index(e.names, name); i >= 0 {
		e.names = slices.Delete(e.names, i, i+1)
	}
}

// Dir is a directory node. Besides its children it tracks a current working
// directory inside its subtree and the previous one, for Cd("-").
//
// The names "", "." and ".." are never stored; Child resolves them.
type Dir struct {
	node
	children entries
	cur      *Dir
	prev     *Dir
}

// NewDir creates an empty root directory
func NewDir(name string) *Dir {
	d := &Dir{node: newNode(name)}
	d.parent = d
	d.cur = d
	d.prev = d
	return d
}

func (d *Dir) IsRoot() bool {
	return d.parent == d
}

func (d *Dir) Path() string {
	return pathOf(d)
}

func (d *Dir) detach() {
	d.parent = d
}

func (d *Dir) clone() Node {
	dup := NewDir(d.name)
	for _, name := range d.children.names {
		dup.put(d.children.index[name].clone())
	}
	return dup
}

// put links n as a child under its own name. A node already stored under that
// name is detached and dropped.
func (d *Dir) put(n Node) {
	if old, ok := d.children.get(n.Name()); ok && old != n {
		old.detach()
	}
	d.children.set(n.Name(), n)
	n.base().parent = d
}

// Child returns the entry for name. "" and "." resolve to d itself and ".."
// to its parent (itself at the root).
func (d *Dir) Child(name string) (Node, bool) {
	switch name {
	case "", ".":
		return d, true
	case "..":
		return d.parent, true
	}
	return d.children.get(name)
}

// Children returns the real entries in insertion order
func (d *Dir) Children() []Node {
	out := make([]Node, 0, len(d.children.names))
	for _, name := range d.children.names {
		out = append(out, d.children.index[name])
	}
	return out
}

// Names returns the real entry names in insertion order
func (d *Dir) Names() []string {
	return slices.Clone(d.children.names)
}

// Len returns the number of real entries
func (d *Dir) Len() int {
	return len(d.children.names)
}

// Current returns the working directory used to resolve relative paths
func (d *Dir) Current() *Dir {
	return d.cur
}

// Previous returns the directory Cd("-") switches back to
func (d *Dir) Previous() *Dir {
	return d.prev
}

// Root returns the root of the tree holding the current directory
func (d *Dir) Root() *Dir {
	return rootOf(d.cur)
}

var _ Node = (*Dir)(nil)
