package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/brettbedarf/vdir"
	"github.com/brettbedarf/vdir/config"
	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/internal/util"
	"github.com/brettbedarf/vdir/server"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		nodesDef   string
		outPath    string
		list       bool
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (.yaml, .yml or .json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&nodesDef, "nodes", "", "Path to nodes manifest (.yaml, .yml or .json)")
	flag.StringVar(&nodesDef, "n", "", "--nodes (shorthand)")
	flag.StringVar(&outPath, "out", "", "Write the tree as a zip archive to this path")
	flag.StringVar(&outPath, "o", "", "--out (shorthand)")
	flag.BoolVar(&list, "list", false, "Print every directory and file of the tree to stdout")
	flag.BoolVar(&list, "l", false, "--list (shorthand)")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	// Flags win over the config file
	override := &config.ConfigOverride{}
	if configPath != "" {
		var err error
		override, err = config.LoadConfigOverrideFile(configPath)
		if err != nil {
			util.InitializeLogger(config.DefaultLogLvl)
			logger := util.GetLogger("main")
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbose" || f.Name == "v" {
			override.LogLvl = &verbose
		}
	})
	cfg := config.NewConfig(override)

	// Initialize logger
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	mnt := flag.Arg(0)
	logger.Info().
		Str("config", configPath).
		Str("nodes", nodesDef).
		Str("out", outPath).
		Str("mnt", mnt).
		Msg("VDir initializing")
	if mnt == "" && outPath == "" && !list {
		logger.Fatal().Msg("Nothing to do; pass a mount point as the argument, --out or --list")
	}

	// Load nodes
	var fs *server.VDir
	if nodesDef != "" {
		var err error
		fs, err = vdir.Load(cfg, nodesDef)
		if err != nil {
			logger.Error().Err(err).Str("nodes", nodesDef).Msg("Some nodes could not be added")
		}
	} else {
		logger.Warn().Msg("No nodes file provided")
		fs = vdir.New(cfg)
	}

	if list {
		err := fs.View(func(tree *filesystem.Dir) error {
			return printTree(os.Stdout, tree)
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list tree")
		}
	}

	if outPath != "" {
		archive, err := fs.Export()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to export archive")
		}
		if err := os.WriteFile(outPath, archive.Bytes(), 0o644); err != nil {
			logger.Fatal().Err(err).Str("out", outPath).Msg("Failed to write archive")
		}
		logger.Info().
			Str("out", outPath).
			Str("size", humanize.Bytes(uint64(archive.Size()))).
			Msg("Archive written")
	}

	if mnt == "" {
		return
	}

	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	// Serve
	if err := fs.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	// Unmount the filesystem
	if err := fs.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}

// printTree writes one line per directory (with a trailing slash) and per
// file (with its human readable size), in walk order
func printTree(w io.Writer, tree *filesystem.Dir) error {
	for l := range tree.Walk() {
		for _, name := range l.DirNames {
			if _, err := fmt.Fprintf(w, "%s/\n", path.Join(l.Base, name)); err != nil {
				return err
			}
		}
		for i, f := range l.Files {
			p := path.Join(l.Base, l.FileNames[i])
			if _, err := fmt.Fprintf(w, "%s\t%s\n", p, humanize.Bytes(uint64(f.Size()))); err != nil {
				return err
			}
		}
	}
	return nil
}
