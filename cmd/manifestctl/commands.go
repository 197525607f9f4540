package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"emergence.ai/internal/persistence/indexdb"
	persistlog "emergence.ai/internal/persistence/log"
	"emergence.ai/internal/sim/catalogs"
)

func newCheckCmd(f *rootFlags) *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load manifests and print a summary with integrity findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			metrics, err := catalogs.NewMetrics(reg)
			if err != nil {
				return err
			}
			s, err := f.load(cmd, metrics)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "items: %d (%d names)\n", s.cats.Items.Len(), s.cats.Items.Names().Len())
			fmt.Fprintf(out, "recipes: %d\n", s.cats.Recipes.Len())
			for _, d := range s.cats.Report.Duplicates {
				fmt.Fprintf(out, "duplicate: %s %q x%d\n", d.Category, d.Name, d.Count)
			}
			for _, d := range s.cats.Report.Dangling {
				fmt.Fprintf(out, "dangling: %s\n", d)
			}
			if s.cats.Report.Empty() {
				fmt.Fprintln(out, "ok")
			}
			if withMetrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print load metrics in the prometheus text format")
	return cmd
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func newLookupCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <item|recipe> <name>",
		Short: "Resolve a name to its handle and print its processed data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			category, name := strings.ToLower(args[0]), args[1]
			switch category {
			case catalogs.Item{}.CategoryName():
				id, ok := s.cats.ItemID(name)
				if !ok {
					return fmt.Errorf("unknown item %q", name)
				}
				data, ok := s.cats.Item(id)
				if !ok {
					fmt.Fprintf(out, "%s %s: referenced but not defined\n", id, name)
					return nil
				}
				fmt.Fprintf(out, "%s %s: stack_size=%d\n", id, name, data.StackSize)
			case catalogs.Recipe{}.CategoryName():
				id, ok := s.cats.RecipeID(name)
				if !ok {
					return fmt.Errorf("unknown recipe %q", name)
				}
				data, _ := s.cats.Recipe(id)
				fmt.Fprintf(out, "%s %s: craft_time=%s work_required=%t\n", id, name, data.CraftTime, data.WorkRequired)
				printCounts := func(label string, counts []catalogs.ItemCount) {
					for _, ic := range counts {
						itemName, _ := s.cats.Items.Name(ic.Item)
						fmt.Fprintf(out, "  %s %s %s x%d\n", label, ic.Item, itemName, ic.Count)
					}
				}
				printCounts("in ", data.Inputs)
				printCounts("out", data.Outputs)
				if data.Energy != nil {
					fmt.Fprintf(out, "  energy %g\n", float64(*data.Energy))
				}
			default:
				return fmt.Errorf("unknown category %q (want item or recipe)", args[0])
			}
			return nil
		},
	}
}

func newDumpCmd(f *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the processed manifests as zstd-compressed JSONL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			path := outPath
			if path == "" {
				path = s.tune.Dump.Path
			}
			n, err := persistlog.DumpCatalogs(path, s.cats)
			if err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			s.log.Info().Str("path", path).Int("records", n).Msg("dump written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: dump.path from tuning)")
	return cmd
}

func newIndexCmd(f *rootFlags) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write names, handles and digests into a sqlite index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			path := dbPath
			if path == "" {
				path = s.tune.Index.Path
			}
			idx, err := indexdb.OpenSQLite(path)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer idx.Close()

			start := time.Now()
			if err := idx.UpsertCatalogs(cmd.Context(), s.cats); err != nil {
				return fmt.Errorf("index: %w", err)
			}
			s.log.Info().Str("path", path).Dur("took", time.Since(start)).Msg("index updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite path (default: index.path from tuning)")
	return cmd
}
