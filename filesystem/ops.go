package filesystem

import (
	"path"
	"strings"

	"github.com/brettbedarf/vdir/internal/util"
)

// resolve finds the node p names. For paths ending in a directory name ("",
// ".", "..") the directory is drilled directly and returned as both parent and
// node; otherwise the containing directory is drilled and base is looked up in
// it (node is nil when missing).
func (d *Dir) resolve(op, p string, create bool) (parent *Dir, base string, n Node, err error) {
	_, base = path.Split(p)
	if isDirName(base) {
		dir, err := d.drill(op, p, create, true, false)
		if err != nil {
			return nil, "", nil, err
		}
		return dir, base, dir, nil
	}

	parent, err = d.drill(op, p, create, false, false)
	if err != nil {
		return nil, "", nil, err
	}
	n, _ = parent.children.get(base)
	return parent, base, n, nil
}

// Open returns the node at p. Missing intermediate directories and a missing
// file are created when create is set; an existing file gets mode applied (see
// [File.SetMode]). Paths naming a directory return that directory.
func (d *Dir) Open(p string, create bool, mode Mode) (Node, error) {
	parent, base, n, err := d.resolve("open", p, create)
	if err != nil {
		return nil, err
	}

	switch c := n.(type) {
	case nil:
		if !create {
			return nil, newPathError("open", p, ErrNotExist)
		}
		f := NewFile(base, mode)
		parent.put(f)
		return f, nil
	case *File:
		c.SetMode(mode)
		return c, nil
	default:
		return n, nil
	}
}

// OpenFile is like Open but fails with ErrIsDir when p names a directory
func (d *Dir) OpenFile(p string, create bool, mode Mode) (*File, error) {
	n, err := d.Open(p, create, mode)
	if err != nil {
		return nil, err
	}
	f, ok := n.(*File)
	if !ok {
		return nil, newPathError("open", p, ErrIsDir)
	}
	return f, nil
}

// Lookup returns the existing node at p without creating anything or touching
// file modes
func (d *Dir) Lookup(p string) (Node, error) {
	_, _, n, err := d.resolve("lookup", p, false)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, newPathError("lookup", p, ErrNotExist)
	}
	return n, nil
}

// IsDir reports whether p names an existing directory. The empty path is the
// current directory.
func (d *Dir) IsDir(p string) bool {
	if p == "" {
		return true
	}
	n, err := d.Lookup(p)
	if err != nil {
		return false
	}
	_, ok := n.(*Dir)
	return ok
}

// IsFile reports whether p names an existing file
func (d *Dir) IsFile(p string) bool {
	if p == "" {
		return false
	}
	n, err := d.Lookup(p)
	if err != nil {
		return false
	}
	_, ok := n.(*File)
	return ok
}

// Mkdir creates the directory p, treating every component as a directory, and
// returns it. Existing directories are reused.
//
// Without createIntermediate or overwrite the parent of p must already exist,
// else ErrNotDir naming the parent is returned. With overwrite, files in the
// way are replaced by empty directories.
func (d *Dir) Mkdir(p string, createIntermediate, overwrite bool) (*Dir, error) {
	if !createIntermediate && !overwrite {
		if container := dirname(p); !d.IsDir(container) {
			return nil, newPathError("mkdir", container, ErrNotDir)
		}
	}
	// at most the basename can be missing now
	return d.drill("mkdir", p, true, true, overwrite)
}

// Cd changes the current directory and returns it. "-" swaps back to the
// previous directory; only one step of history is kept, so two consecutive
// Cd("-") calls return to where they started. A failed Cd changes nothing.
//
// "/" goes to the root. A run of two or more slashes alone is a doubled
// separator naming nothing and leaves the current directory as it is.
func (d *Dir) Cd(p string) (*Dir, error) {
	switch {
	case p == "-":
		d.cur, d.prev = d.prev, d.cur
		return d.cur, nil
	case len(p) > 1 && strings.Trim(p, "/") == "":
		return d.cur, nil
	}

	target, err := d.drill("cd", p, false, true, false)
	if err != nil {
		return nil, err
	}
	d.prev, d.cur = d.cur, target
	return d.cur, nil
}

// Pwd renders the current directory relative to the root, which is shown as ".":
// "." at the root, "./foo/bar" below it.
func (d *Dir) Pwd() string {
	if p := d.cur.Path(); p != "" {
		return "./" + p
	}
	return "."
}

// Attach inserts the detached node n at dst and returns the node that now holds
// its content.
//
// When either side is a file the destination slot is replaced by n, renamed to
// the destination basename. When both are directories n is merged into the
// destination under n's own name: missing entries are added, files are
// overwritten by n's version, directories present on both sides are merged
// recursively and everything else at the destination is kept.
//
// dst naming a directory ("x/", ".", "..") targets that directory; a plain name
// that does not exist yet receives n under that name.
func (d *Dir) Attach(n Node, dst string) (Node, error) {
	logger := util.GetLogger("Attach")

	if d.within(n, dst) {
		return nil, newPathError("attach", dst, ErrInvalid)
	}
	dstDir, base, existing, err := d.resolve("attach", dst, true)
	if err != nil {
		return nil, err
	}
	if existing == n {
		return n, nil
	}
	root := d.Root()
	if !n.IsRoot() {
		unattach(n)
	}

	var placed Node
	destDir, destIsDir := existing.(*Dir)
	srcDir, srcIsDir := n.(*Dir)
	switch {
	case destIsDir && srcIsDir:
		placed = mergeInto(destDir, srcDir)
	case existing == nil:
		n.base().name = base
		dstDir.put(n)
		placed = n
	default:
		// either side is a file: take over the destination slot
		if existing.IsRoot() {
			return nil, newPathError("attach", dst, ErrInvalid)
		}
		owner := existing.Parent()
		n.base().name = existing.Name()
		owner.put(n)
		placed = n
	}

	d.repairCursors(root)
	logger.Debug().Str("dst", dst).Str("path", displayPath(placed)).Msg("Attached node")
	return placed, nil
}

// mergeInto places src under dst by name, merging with a directory already there.
// A copied root has no name of its own and is merged into dst itself.
func mergeInto(dst, src *Dir) Node {
	if isDirName(src.name) {
		mergeContents(dst, src)
		return dst
	}
	existing, ok := dst.children.get(src.name)
	if ed, isDir := existing.(*Dir); ok && isDir {
		mergeContents(ed, src)
		return ed
	}
	dst.put(src)
	return src
}

// mergeContents moves src's children into dst. Children are re-parented as they
// are, not copied again.
func mergeContents(dst, src *Dir) {
	for _, c := range src.Children() {
		if cd, ok := c.(*Dir); ok {
			if existing, ok := dst.children.get(cd.name); ok {
				if ed, ok := existing.(*Dir); ok {
					mergeContents(ed, cd)
					continue
				}
			}
		}
		src.children.remove(c.Name())
		dst.put(c)
	}
}

// within reports whether attaching at dst would put n inside itself. Only
// existing directories are looked at, so nothing is created.
func (d *Dir) within(n Node, dst string) bool {
	_, base := path.Split(dst)
	return isAncestor(n, d.reach(dst, isDirName(base)))
}

// isAncestor reports whether a is n or one of n's ancestors
func isAncestor(a, n Node) bool {
	cur := n
	for {
		if cur == a {
			return true
		}
		if cur.IsRoot() {
			return false
		}
		cur = cur.Parent()
	}
}

// Cp deep-copies the node at src and attaches the copy at dst (see [Dir.Attach]).
// A missing src is an ErrNotExist error; it is never created.
func (d *Dir) Cp(src, dst string) (Node, error) {
	orig, err := d.Lookup(src)
	if err != nil {
		return nil, err
	}
	return d.CpNode(orig, dst)
}

// CpNode deep-copies n and attaches the copy at dst
func (d *Dir) CpNode(n Node, dst string) (Node, error) {
	return d.Attach(DeepCopy(n), dst)
}

// Mv copies the node at src to dst and then unattaches the original. Moving a
// node into its own subtree is an ErrInvalid error.
func (d *Dir) Mv(src, dst string) (Node, error) {
	orig, err := d.Lookup(src)
	if err != nil {
		return nil, err
	}
	return d.MvNode(orig, dst)
}

// MvNode copies n to dst and then unattaches n from its parent
func (d *Dir) MvNode(n Node, dst string) (Node, error) {
	logger := util.GetLogger("Mv")

	if n.IsRoot() {
		return nil, newPathError("mv", displayPath(n), ErrInvalid)
	}
	if d.within(n, dst) {
		return nil, newPathError("mv", dst, ErrInvalid)
	}
	from := displayPath(n)
	placed, err := d.CpNode(n, dst)
	if err != nil {
		return nil, err
	}

	// A directory moved onto itself is merged into itself, so n stays attached
	if !isAncestor(n, placed) {
		root := d.Root()
		unattach(n)
		d.repairCursors(root)
	}
	logger.Debug().Str("from", from).Str("dst", dst).Msg("Moved node")
	return placed, nil
}

// Rm unattaches the node at p from its parent. The empty path removes the
// current directory.
func (d *Dir) Rm(p string) error {
	n, err := d.Lookup(p)
	if err != nil {
		return err
	}
	return d.RmNode(n)
}

// RmNode unattaches n from its parent; the root cannot be removed
func (d *Dir) RmNode(n Node) error {
	logger := util.GetLogger("Rm")

	if n.IsRoot() {
		return newPathError("rm", displayPath(n), ErrInvalid)
	}
	from := displayPath(n)

	root := d.Root()
	unattach(n)
	d.repairCursors(root)
	logger.Debug().Str("path", from).Msg("Removed node")
	return nil
}

// repairCursors points the current and previous directories back at root when
// they were cut out of its tree
func (d *Dir) repairCursors(root *Dir) {
	if rootOf(d.cur) != root {
		d.cur = root
	}
	if rootOf(d.prev) != root {
		d.prev = root
	}
}
