package filesystem

import (
	"path"
	"strings"

	"github.com/brettbedarf/vdir/internal/util"
)

// drill walks p from the root (paths starting with "/") or the current directory and
// returns the directory reached. The basename is only walked when asDir is set,
// so open-style callers land on the containing directory.
//
// Missing components are created as empty directories when create is set.
// Files in the way are replaced by empty directories when overwrite is set.
// Empty and "." components are skipped; ".." steps to the parent.
func (d *Dir) drill(op, p string, create, asDir, overwrite bool) (*Dir, error) {
	logger := util.GetLogger("drill")

	cur, frags := d.components(p, asDir)
	created := 0
	for _, frag := range frags {
		switch frag {
		case "", ".":
			continue
		case "..":
			cur = cur.parent
			continue
		}

		child, ok := cur.children.get(frag)
		if !ok {
			if !create {
				return nil, newPathError(op, path.Join(displayPath(cur), frag), ErrNotExist)
			}
			sub := NewDir(frag)
			cur.put(sub)
			created++
			cur = sub
			continue
		}

		switch c := child.(type) {
		case *Dir:
			cur = c
		case *File:
			if !overwrite {
				return nil, newPathError(op, displayPath(c), ErrNotDir)
			}
			logger.Debug().Str("path", displayPath(c)).Msg("Replacing file with directory")
			sub := NewDir(frag)
			cur.put(sub)
			cur = sub
		}
	}

	if created > 0 {
		logger.Debug().Str("op", op).Str("path", p).Int("created", created).Msg("Created intermediate dir(s)")
	}
	return cur, nil
}

// components returns the directory a walk of p starts from and the components
// to walk. The basename is included only when asDir is set.
func (d *Dir) components(p string, asDir bool) (*Dir, []string) {
	dirPart, base := path.Split(p)
	frags := strings.Split(dirPart, "/")
	if asDir && base != "" {
		frags = append(frags, base)
	}
	if strings.HasPrefix(p, "/") {
		return d.Root(), frags
	}
	return d.cur, frags
}

// reach walks p like drill but never creates or replaces anything. It returns
// the deepest existing directory on the way.
func (d *Dir) reach(p string, asDir bool) *Dir {
	cur, frags := d.components(p, asDir)
	for _, frag := range frags {
		switch frag {
		case "", ".":
			continue
		case "..":
			cur = cur.parent
			continue
		}
		child, _ := cur.children.get(frag)
		sub, ok := child.(*Dir)
		if !ok {
			return cur
		}
		cur = sub
	}
	return cur
}

// isDirName reports whether a basename denotes the directory itself rather
// than an entry in it
func isDirName(base string) bool {
	return base == "" || base == "." || base == ".."
}

// dirname returns everything before the last slash, trailing slashes removed
// unless the result is only slashes ("/a" -> "/", "a/b/" -> "a/b", "a" -> "").
func dirname(p string) string {
	head := p[:strings.LastIndex(p, "/")+1]
	if trimmed := strings.TrimRight(head, "/"); trimmed != "" {
		return trimmed
	}
	return head
}
