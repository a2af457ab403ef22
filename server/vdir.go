package server

import (
	"fmt"

	"github.com/hanwen/go-fuse/v2/fuse"
	"go.uber.org/multierr"

	"github.com/brettbedarf/vdir/archive"
	"github.com/brettbedarf/vdir/config"
	"github.com/brettbedarf/vdir/filesystem"
	vfuse "github.com/brettbedarf/vdir/fuse"
	"github.com/brettbedarf/vdir/internal/util"
	"github.com/brettbedarf/vdir/requests"
	"github.com/brettbedarf/vdir/sandbox"
)

// VDir is a configured tree that is safe for concurrent use, with manifest
// loading, archive export and a read-only FUSE mount on top
type VDir struct {
	*sandbox.Session
	cfg    *config.Config
	server *fuse.Server
}

// New creates a VDir over an empty tree given your config.
func New(cfg *config.Config) *VDir {
	return NewFromSession(sandbox.NewSession("", filesystem.NewDir("")), cfg)
}

// NewFromSession serves an existing session, e.g. one from a sandbox.Registry
func NewFromSession(s *sandbox.Session, cfg *config.Config) *VDir {
	return &VDir{
		Session: s,
		cfg:     cfg,
	}
}

// Config returns the config the VDir was created with
func (v *VDir) Config() *config.Config {
	return v.cfg
}

// AddDirNode creates the requested directory and any missing parents.
// Existing directories are reused.
func (v *VDir) AddDirNode(req *requests.DirRequest) (*filesystem.Dir, error) {
	logger := util.GetLogger("AddDirNode")

	var dir *filesystem.Dir
	err := v.Update(func(tree *filesystem.Dir) error {
		var err error
		dir, err = tree.Mkdir(req.Path, true, req.Overwrite)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.UUID, err)
	}
	logger.Debug().Str("path", req.Path).Str("uuid", req.UUID).Msg("Added dir node")
	return dir, nil
}

// AddFileNode creates (or reopens) the requested file and writes the request
// content at its start, then leaves it open with the requested mode or the
// configured default.
func (v *VDir) AddFileNode(req *requests.FileRequest) (*filesystem.File, error) {
	logger := util.GetLogger("AddFileNode")

	modeStr := req.Mode
	if modeStr == "" {
		modeStr = v.cfg.DefaultMode
	}
	mode, err := filesystem.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.UUID, err)
	}

	var file *filesystem.File
	err = v.Update(func(tree *filesystem.Dir) error {
		f, err := tree.OpenFile(req.Path, true, filesystem.ModeWrite)
		if err != nil {
			return err
		}
		if _, err := f.Write(req.Content); err != nil {
			return err
		}
		f.SetMode(mode)
		file = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.UUID, err)
	}
	logger.Debug().
		Str("path", req.Path).
		Str("uuid", req.UUID).
		Str("mode", mode.String()).
		Int("size", len(req.Content)).
		Msg("Added file node")
	return file, nil
}

// Apply runs every request in order. Failed requests are skipped; their errors
// are combined into the returned error. It returns how many succeeded.
func (v *VDir) Apply(reqs []requests.Request) (int, error) {
	var errs error
	applied := 0
	for _, req := range reqs {
		var err error
		switch r := req.(type) {
		case *requests.DirRequest:
			_, err = v.AddDirNode(r)
		case *requests.FileRequest:
			_, err = v.AddFileNode(r)
		default:
			err = fmt.Errorf("%w: %T", requests.ErrUnknownType, req)
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		applied++
	}
	return applied, errs
}

// ExportOptions translates the archive settings of the config
func (v *VDir) ExportOptions() ([]archive.Option, error) {
	method, err := archive.ParseMethod(v.cfg.Compression)
	if err != nil {
		return nil, err
	}
	return []archive.Option{
		archive.WithMethod(method),
		archive.WithLevel(v.cfg.CompressionLevel),
		archive.WithExclude(v.cfg.ExcludeFromCompression...),
		archive.WithStoreCompressed(v.cfg.StoreCompressedContent),
	}, nil
}

// Export archives the tree below its current directory using the configured
// compression settings
func (v *VDir) Export() (*filesystem.File, error) {
	opts, err := v.ExportOptions()
	if err != nil {
		return nil, err
	}

	var out *filesystem.File
	err = v.View(func(tree *filesystem.Dir) error {
		var err error
		out, err = archive.Export(tree, opts...)
		return err
	})
	return out, err
}

// Serve mounts the tree read-only at the given mountPoint.
func (v *VDir) Serve(mountPoint string) error {
	raw := vfuse.NewRaw(v.Session, v.cfg)
	opts := v.cfg.MountOptions
	srv, err := fuse.NewServer(raw, mountPoint, &fuse.MountOptions{
		Name:               opts.Name,
		FsName:             opts.FsName,
		Debug:              opts.Debug || v.cfg.LogLvl == util.TraceLevel,
		Logger:             util.NewLogLogger("FuseServer", util.DebugLevel),
		DisableReadDirPlus: true,
		Options:            []string{"ro"},
	})
	if err != nil {
		return err
	}
	v.server = srv

	go srv.Serve()
	return srv.WaitMount()
}

func (v *VDir) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- v.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Unmount cleanly unmounts the filesystem.
func (v *VDir) Unmount() error {
	if v.server == nil {
		return nil
	}
	return v.server.Unmount()
}
