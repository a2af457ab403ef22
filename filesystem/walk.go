package filesystem

import (
	"iter"
	"path"
)

// Listing describes one directory visited by Walk. Base is the directory's path
// relative to the walk's starting point ("" for the start itself).
type Listing struct {
	Base      string
	DirNames  []string
	Dirs      []*Dir
	FileNames []string
	Files     []*File
}

func newListing(d *Dir, base string) Listing {
	l := Listing{Base: base}
	for _, name := range d.children.names {
		switch c := d.children.index[name].(type) {
		case *Dir:
			l.DirNames = append(l.DirNames, name)
			l.Dirs = append(l.Dirs, c)
		case *File:
			l.FileNames = append(l.FileNames, name)
			l.Files = append(l.Files, c)
		}
	}
	return l
}

// Walk lazily lists every directory below the current directory, pre-order:
// a directory comes before its subdirectories, which follow insertion order.
//
// Each listing is built when it is reached, so changes made while iterating
// show up in directories not yet visited. Every call starts a fresh walk.
func (d *Dir) Walk() iter.Seq[Listing] {
	return func(yield func(Listing) bool) {
		type frame struct {
			dir  *Dir
			base string
		}
		stack := []frame{{dir: d.cur}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			l := newListing(f.dir, f.base)
			if !yield(l) {
				return
			}
			for i := len(l.Dirs) - 1; i >= 0; i-- {
				stack = append(stack, frame{dir: l.Dirs[i], base: path.Join(f.base, l.DirNames[i])})
			}
		}
	}
}
