package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/camatlas/camatlas/internal/classify"
	"github.com/camatlas/camatlas/internal/fetcher"
	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/internal/registry"
	"github.com/camatlas/camatlas/internal/store"
)

var registryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Download and classify the register into operators",
	Long: `Download the current register ZIP (or use --input to supply a local ZIP
or CSV), stream its rows through the classification rules, and upsert the
resulting operators. Re-running converges: rows merge by slug.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "registry.import"))

		input, _ := cmd.Flags().GetString("input")
		snapshot, _ := cmd.Flags().GetString("snapshot")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		rules, err := classify.LoadRules(cfg.Rules.File)
		if err != nil {
			return err
		}

		csvPath, cleanup, err := resolveRegisterCSV(ctx, input)
		if err != nil {
			return err
		}
		defer cleanup()

		source := input
		if source == "" {
			source = "ico-download"
		}

		var st store.Store
		var importID string
		if !dryRun {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			importID, err = st.StartImport(ctx, source)
			if err != nil {
				return eris.Wrap(err, "registry import: start")
			}
		}

		eng, err := classifyRegisterCSV(ctx, csvPath, rules)
		if err != nil {
			if importID != "" {
				_ = st.FailImport(ctx, importID, err.Error())
			}
			return err
		}

		operators := eng.Operators()
		scanned, kept, rejected := eng.Stats()
		log.Info("register classified",
			zap.Int("scanned", scanned),
			zap.Int("kept", kept),
			zap.Int("rejected", rejected),
		)

		if snapshot != "" {
			if err := writeOperatorSnapshot(snapshot, operators); err != nil {
				return err
			}
			log.Info("snapshot written", zap.String("path", snapshot), zap.Int("operators", len(operators)))
		}

		if !dryRun {
			var failed int
			for _, op := range operators {
				if err := st.UpsertOperator(ctx, op); err != nil {
					log.Warn("upsert failed", zap.String("operator", op.ID), zap.Error(err))
					failed++
				}
			}
			if err := st.CompleteImport(ctx, importID, scanned, kept); err != nil {
				return eris.Wrap(err, "registry import: complete")
			}
			if failed > 0 {
				log.Warn("some operators not stored", zap.Int("failed", failed))
			}
		}

		formatTierSummary(os.Stdout, eng.TierCounts(), scanned, kept, rejected)
		return nil
	},
}

func init() {
	registryImportCmd.Flags().String("input", "", "local register ZIP or CSV; skips the download")
	registryImportCmd.Flags().String("snapshot", "", "write the classified operators as JSON to this path")
	registryImportCmd.Flags().Bool("dry-run", false, "classify without writing to the store")
	registryCmd.AddCommand(registryImportCmd)
}

// resolveRegisterCSV returns a path to the register CSV, downloading and
// extracting the daily ZIP when no local input was given. The cleanup
// removes any temporary run directory.
func resolveRegisterCSV(ctx context.Context, input string) (string, func(), error) {
	noop := func() {}

	if strings.HasSuffix(strings.ToLower(input), ".csv") {
		return input, noop, nil
	}

	if err := os.MkdirAll(cfg.Registry.TempDir, 0o755); err != nil {
		return "", noop, eris.Wrapf(err, "registry import: create temp dir %s", cfg.Registry.TempDir)
	}
	runDir := filepath.Join(cfg.Registry.TempDir, fmt.Sprintf("import-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", noop, eris.Wrapf(err, "registry import: create run dir %s", runDir)
	}
	cleanup := func() { _ = os.RemoveAll(runDir) }

	zipPath := input
	if zipPath == "" {
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Registry.UserAgent,
			Timeout:    30 * time.Minute,
			MaxRetries: 3,
			Progress:   true,
		})

		locator := registry.Locator{
			BaseURL:      cfg.Registry.BaseURL,
			DownloadPage: cfg.Registry.DownloadPage,
			Fetcher:      f,
		}
		zipURL, err := locator.ZIPURL(ctx)
		if err != nil {
			cleanup()
			return "", noop, err
		}

		zap.L().Info("downloading register", zap.String("url", zipURL))
		zipPath = filepath.Join(runDir, "register.zip")
		if _, err := f.DownloadToFile(ctx, zipURL, zipPath); err != nil {
			cleanup()
			return "", noop, eris.Wrap(err, "registry import: download")
		}
	}

	csvPath, err := fetcher.ExtractZIPFile(zipPath, registry.CSVNameInZIP, runDir)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return csvPath, cleanup, nil
}

// classifyRegisterCSV streams the CSV through a fresh classification engine.
func classifyRegisterCSV(ctx context.Context, path string, rules classify.Rules) (*classify.Engine, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry import: open %s", path)
	}
	defer file.Close() //nolint:errcheck

	eng := classify.NewEngine(rules)
	rows, errs := fetcher.StreamCSVRecords(ctx, file)
	for row := range rows {
		eng.Add(registry.Row(row))
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "registry import: read csv")
	}
	return eng, nil
}

// writeOperatorSnapshot writes the classified operators as indented JSON.
func writeOperatorSnapshot(path string, operators []model.Operator) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "registry import: create snapshot %s", path)
	}
	defer file.Close() //nolint:errcheck

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(operators); err != nil {
		return eris.Wrap(err, "registry import: write snapshot")
	}
	return nil
}

// formatTierSummary writes the per-tier keep counts to w.
func formatTierSummary(out io.Writer, counts map[model.Tier]int, scanned, kept, rejected int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Rows scanned:\t%d\n", scanned)
	_, _ = fmt.Fprintf(w, "Operators kept:\t%d\n", kept)
	_, _ = fmt.Fprintf(w, "Rows rejected:\t%d\n", rejected)

	tiers := make([]model.Tier, 0, len(counts))
	for t := range counts {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	for _, t := range tiers {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", t, counts[t])
	}
	_ = w.Flush()
}
