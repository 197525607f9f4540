package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"emergence.ai/internal/logging"
	"emergence.ai/internal/sim/catalogs"
	"emergence.ai/internal/sim/tuning"
)

type rootFlags struct {
	config     string
	manifests  string
	strictness string
	verbose    bool
	jsonLogs   bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "manifestctl",
		Short: "Load, check and export item and recipe manifests",
		Long: `manifestctl loads the item and recipe manifests of a content directory the
same way the simulation does, then reports integrity findings, resolves names
to handles, or exports the processed world.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.config, "config", "./configs/tuning.yaml", "tuning file (defaults apply when missing)")
	root.PersistentFlags().StringVar(&f.manifests, "manifests", "", "content root holding manifests/ (overrides manifest_dir)")
	root.PersistentFlags().StringVar(&f.strictness, "strictness", "", "tolerant, warn or strict (overrides the tuning file)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&f.jsonLogs, "json-logs", false, "log as JSON instead of pretty console output")

	root.AddCommand(newCheckCmd(&f))
	root.AddCommand(newLookupCmd(&f))
	root.AddCommand(newDumpCmd(&f))
	root.AddCommand(newIndexCmd(&f))
	return root
}

// session is the loaded state shared by every subcommand.
type session struct {
	tune tuning.Tuning
	log  *logging.Logger
	cats *catalogs.Catalogs
}

func (f *rootFlags) load(cmd *cobra.Command, metrics *catalogs.Metrics) (*session, error) {
	tune, err := tuning.Load(f.config)
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return nil, fmt.Errorf("load tuning: %w", err)
	}
	if missing {
		tune = tuning.Defaults()
	}
	if strings.TrimSpace(f.manifests) != "" {
		tune.ManifestDir = f.manifests
	}
	if strings.TrimSpace(f.strictness) != "" {
		tune.Strictness = tuning.Strictness(f.strictness)
	}
	if f.jsonLogs {
		tune.Log.Format = "json"
	}
	if err := tune.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(logging.Options{
		Level:   tune.Log.Level,
		Format:  tune.Log.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: f.verbose,
	})
	if missing {
		log.Debug().Str("path", f.config).Msg("tuning not found; using defaults")
	}

	cats, err := catalogs.Load(tune.ManifestDir, catalogs.Options{
		Strictness: tune.Strictness,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}
	return &session{tune: tune, log: log, cats: cats}, nil
}
