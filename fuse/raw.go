// Package fuse serves a tree read-only over the raw FUSE protocol
package fuse

import (
	"os"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/vdir/config"
	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/internal/util"
)

const (
	dirMode  = syscall.S_IFDIR | 0o555
	fileMode = syscall.S_IFREG | 0o444
)

// Viewer grants shared access to a tree, see sandbox.Session
type Viewer interface {
	View(fn func(tree *filesystem.Dir) error) error
}

// known is a node the kernel holds a reference to. lookups is only touched
// inside nodes.Compute.
type known struct {
	node    filesystem.Node
	lookups uint64
}

// Raw implements the low-level FUSE wire protocol
// It serves as protocol adapter between FUSE and a tree.
// Only lookups and reads are implemented; everything else falls through to
// go-fuse's defaults (ENOSYS).
// See https://www.man7.org/linux//man-pages/man4/fuse.4.html
type Raw struct {
	fuse.RawFileSystem
	tree    Viewer
	cfg     *config.Config
	nodes   *xsync.Map[uint64, *known] // kernel NodeIDs (other than the root) to nodes
	mounted time.Time
	server  *fuse.Server
}

func NewRaw(tree Viewer, cfg *config.Config) *Raw {
	return &Raw{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		tree:          tree,
		cfg:           cfg,
		nodes:         xsync.NewMap[uint64, *known](),
		mounted:       time.Now(),
	}
}

func (r *Raw) Init(s *fuse.Server) {
	logger := util.GetLogger("Fuse.Init")
	logger.Debug().Msg("FUSE initialized")
	r.server = s
}

func (r *Raw) OnUnmount() {
	logger := util.GetLogger("Fuse.OnUnmount")
	logger.Info().Msg("FUSE unmounted")
}

func (r *Raw) String() string {
	return "vdir"
}

// nodeID maps a node to its kernel NodeID. The root is always FUSE_ROOT_ID;
// other ids are offset by one so they never collide with it.
func nodeID(n filesystem.Node) uint64 {
	if d, ok := n.(*filesystem.Dir); ok && d.IsRoot() {
		return fuse.FUSE_ROOT_ID
	}
	return n.ID() + 1
}

// resolve finds the node for a kernel NodeID
func (r *Raw) resolve(tree *filesystem.Dir, id uint64) (filesystem.Node, bool) {
	if id == fuse.FUSE_ROOT_ID {
		return tree.Root(), true
	}
	k, ok := r.nodes.Load(id)
	if !ok {
		return nil, false
	}
	return k.node, true
}

// view runs fn under the tree's shared lock and turns a failed View into EIO
func (r *Raw) view(op string, fn func(tree *filesystem.Dir) fuse.Status) fuse.Status {
	status := fuse.OK
	err := r.tree.View(func(tree *filesystem.Dir) error {
		status = fn(tree)
		return nil
	})
	if err != nil {
		logger := util.GetLogger("Fuse." + op)
		logger.Error().Err(err).Msg("Failed to access tree")
		return fuse.EIO
	}
	return status
}

func (r *Raw) fillAttr(n filesystem.Node, out *fuse.Attr) {
	t := uint64(r.mounted.Unix())
	ns := uint32(r.mounted.Nanosecond())
	*out = fuse.Attr{
		Ino:   nodeID(n),
		Nlink: 1,
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
		Atime:     t,
		Mtime:     t,
		Ctime:     t,
		Atimensec: ns,
		Mtimensec: ns,
		Ctimensec: ns,
		Blksize:   4096, // preferred size for fs ops
	}
	switch c := n.(type) {
	case *filesystem.Dir:
		out.Mode = dirMode
		out.Nlink = 2
	case *filesystem.File:
		out.Mode = fileMode
		out.Size = uint64(c.Size())
		out.Blocks = (out.Size + 511) / 512
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Lookup is called by the kernel when the VFS wants to know
// about a file inside a directory. Many lookup calls can
// occur in parallel, but only one call happens for each (dir,
// name) pair.
// Lookup retrieves a child node by name and registers its NodeID
func (r *Raw) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	logger := util.GetLogger("Fuse.Lookup")
	logger.Trace().Uint64("parent", header.NodeId).Str("name", name).Msg("Lookup called")

	return r.view("Lookup", func(tree *filesystem.Dir) fuse.Status {
		parent, ok := r.resolve(tree, header.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		dir, ok := parent.(*filesystem.Dir)
		if !ok {
			return fuse.ENOTDIR
		}
		child, ok := dir.Child(name)
		if !ok {
			return fuse.ENOENT
		}

		id := nodeID(child)
		if id != fuse.FUSE_ROOT_ID {
			r.nodes.Compute(id, func(k *known, loaded bool) (*known, xsync.ComputeOp) {
				if !loaded {
					k = &known{node: child}
				}
				k.lookups++
				return k, xsync.UpdateOp
			})
		}
		out.NodeId = id
		r.fillAttr(child, &out.Attr)
		out.SetEntryTimeout(seconds(r.cfg.EntryTimeout))
		out.SetAttrTimeout(seconds(r.cfg.AttrTimeout))
		return fuse.OK
	})
}

// Forget is called when the kernel discards entries from its
// dentry cache. This happens on unmount, and when the kernel
// is short on memory. Since it is not guaranteed to occur at
// any moment, and since there is no return value, Forget
// should not do I/O, as there is no channel to report back
// I/O errors.
func (r *Raw) Forget(nodeid, nlookup uint64) {
	r.nodes.Compute(nodeid, func(k *known, loaded bool) (*known, xsync.ComputeOp) {
		switch {
		case !loaded:
			return k, xsync.CancelOp
		case nlookup >= k.lookups:
			return k, xsync.DeleteOp
		}
		k.lookups -= nlookup
		return k, xsync.UpdateOp
	})
}

func (r *Raw) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	return r.view("GetAttr", func(tree *filesystem.Dir) fuse.Status {
		n, ok := r.resolve(tree, input.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		r.fillAttr(n, &out.Attr)
		out.SetTimeout(seconds(r.cfg.AttrTimeout))
		return fuse.OK
	})
}

func (r *Raw) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	if input.Flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return fuse.EROFS
	}
	return r.view("Open", func(tree *filesystem.Dir) fuse.Status {
		n, ok := r.resolve(tree, input.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		if _, ok := n.(*filesystem.File); !ok {
			return fuse.EISDIR
		}
		if r.cfg.DirectIO {
			out.OpenFlags |= fuse.FOPEN_DIRECT_IO
		}
		return fuse.OK
	})
}

func (r *Raw) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	var data []byte
	status := r.view("Read", func(tree *filesystem.Dir) fuse.Status {
		n, ok := r.resolve(tree, input.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		f, ok := n.(*filesystem.File)
		if !ok {
			return fuse.EISDIR
		}
		data = f.Bytes()
		return fuse.OK
	})
	if !status.Ok() {
		return nil, status
	}

	off := min(input.Offset, uint64(len(data)))
	end := min(off+uint64(input.Size), uint64(len(data)))
	return fuse.ReadResultData(data[off:end]), fuse.OK
}

func (r *Raw) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	return r.view("OpenDir", func(tree *filesystem.Dir) fuse.Status {
		n, ok := r.resolve(tree, input.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		if _, ok := n.(*filesystem.Dir); !ok {
			return fuse.ENOTDIR
		}
		return fuse.OK
	})
}

// ReadDir lists ".", ".." and then the children in insertion order. The
// offset is an index into that listing.
func (r *Raw) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	logger := util.GetLogger("Fuse.ReadDir")
	logger.Trace().Uint64("nodeID", input.NodeId).Uint64("offset", input.Offset).Msg("ReadDir called")

	return r.view("ReadDir", func(tree *filesystem.Dir) fuse.Status {
		n, ok := r.resolve(tree, input.NodeId)
		if !ok {
			return fuse.ENOENT
		}
		dir, ok := n.(*filesystem.Dir)
		if !ok {
			return fuse.ENOTDIR
		}

		entries := []fuse.DirEntry{
			{Name: ".", Mode: dirMode, Ino: nodeID(dir)},
			{Name: "..", Mode: dirMode, Ino: nodeID(dir.Parent())},
		}
		for _, c := range dir.Children() {
			mode := uint32(fileMode)
			if _, isDir := c.(*filesystem.Dir); isDir {
				mode = dirMode
			}
			entries = append(entries, fuse.DirEntry{Name: c.Name(), Mode: mode, Ino: nodeID(c)})
		}

		for i := input.Offset; i < uint64(len(entries)); i++ {
			if !out.AddDirEntry(entries[i]) {
				// buffer full; the kernel calls again with a new offset
				break
			}
		}
		return fuse.OK
	})
}

// StatFs reports an empty read-only filesystem so tools like df work
func (r *Raw) StatFs(cancel <-chan struct{}, input *fuse.InHeader, out *fuse.StatfsOut) fuse.Status {
	out.Bsize = 4096
	out.NameLen = 255
	out.Frsize = 4096
	return fuse.OK
}

var _ fuse.RawFileSystem = (*Raw)(nil)
