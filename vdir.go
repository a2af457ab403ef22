// Package vdir builds in-memory directory trees from manifests, exports them
// as zip archives and mounts them read-only over FUSE.
package vdir

import (
	"go.uber.org/multierr"

	"github.com/brettbedarf/vdir/config"
	"github.com/brettbedarf/vdir/internal/util"
	"github.com/brettbedarf/vdir/requests"
	"github.com/brettbedarf/vdir/server"
)

// New creates a VDir instance given your config.
func New(cfg *config.Config) *server.VDir {
	return server.New(cfg)
}

// Load creates a VDir and applies every request of the manifest at
// manifestPath. Requests that fail are skipped; the returned error combines
// their failures with any manifest decoding errors, so the VDir is usable
// even when err is non-nil.
func Load(cfg *config.Config, manifestPath string) (*server.VDir, error) {
	logger := util.GetLogger("Load")

	v := server.New(cfg)
	reqs, parseErr := requests.LoadManifestFile(manifestPath)
	applied, applyErr := v.Apply(reqs)
	logger.Info().
		Str("manifest", manifestPath).
		Int("requests", len(reqs)).
		Int("applied", applied).
		Msg("Loaded manifest")

	return v, multierr.Append(parseErr, applyErr)
}
