package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/camatlas/camatlas/internal/identity"
	"github.com/camatlas/camatlas/internal/locate"
	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/pkg/overpass"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Geolocate operator estates via OpenStreetMap",
	Long: `Resolve a search name per stored operator, query Overpass for matching
brand and name features, and store the results as camera sites. Queries run
sequentially with a politeness delay; one operator failing never aborts the
run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		only, _ := cmd.Flags().GetString("only")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		minResults, _ := cmd.Flags().GetInt("min-results")
		showNames, _ := cmd.Flags().GetBool("show-names")
		snapshot, _ := cmd.Flags().GetString("snapshot")
		input, _ := cmd.Flags().GetString("input")

		resolver, err := identity.LoadResolver(cfg.Rules.OverridesFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var operators []model.Operator
		if input != "" {
			operators, err = readOperatorSnapshot(input)
		} else {
			operators, err = st.ListOperators(ctx)
		}
		if err != nil {
			return err
		}

		if only != "" {
			op, err := findOperator(operators, only)
			if err != nil {
				return err
			}
			if id := resolver.Resolve(*op); !id.Queryable() {
				return eris.Errorf("locate: operator %s has no usable search name (resolved %q)", only, id.Value)
			}
			operators = []model.Operator{*op}
		}

		if showNames {
			formatIdentities(os.Stdout, operators, resolver)
			return nil
		}

		if minResults <= 0 {
			minResults = cfg.Locate.MinResults
		}

		delay := time.Duration(cfg.Overpass.QueryDelaySecs * float64(time.Second))
		client := overpass.NewClient(overpass.Options{
			Endpoints:  cfg.Overpass.Endpoints,
			Timeout:    time.Duration(cfg.Overpass.TimeoutSecs+30) * time.Second,
			MaxRetries: cfg.Overpass.MaxRetries,
			Limiter:    rate.NewLimiter(rate.Every(delay), 1),
		})

		engine := locate.NewEngine(resolver, client, st, locate.Options{
			Area:        cfg.Overpass.Area,
			MinResults:  minResults,
			BatchSize:   cfg.Locate.BatchSize,
			TimeoutSecs: cfg.Overpass.TimeoutSecs,
			DryRun:      dryRun,
		})

		zap.L().Info("starting locate run",
			zap.Int("operators", len(operators)),
			zap.Bool("dry_run", dryRun),
		)

		summary, err := engine.Run(ctx, operators)
		if err != nil {
			return eris.Wrap(err, "locate")
		}

		if snapshot != "" {
			if err := writeLocateSnapshot(snapshot, summary); err != nil {
				return err
			}
		}

		formatLocateSummary(os.Stdout, summary)
		return nil
	},
}

func init() {
	locateCmd.Flags().String("only", "", "restrict the run to a single operator slug")
	locateCmd.Flags().Bool("dry-run", false, "query without writing to the store")
	locateCmd.Flags().Int("min-results", 0, "skip persisting operators with fewer camera sites")
	locateCmd.Flags().Bool("show-names", false, "print the resolved search names and exit")
	locateCmd.Flags().String("snapshot", "", "write the run summary as JSON to this path")
	locateCmd.Flags().String("input", "", "load operators from a JSON snapshot instead of the store")
	rootCmd.AddCommand(locateCmd)
}

// readOperatorSnapshot loads operators from a JSON file written by
// `registry import --snapshot`.
func readOperatorSnapshot(path string) ([]model.Operator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "locate: read snapshot %s", path)
	}
	var operators []model.Operator
	if err := json.Unmarshal(raw, &operators); err != nil {
		return nil, eris.Wrapf(err, "locate: parse snapshot %s", path)
	}
	return operators, nil
}

// findOperator returns the operator with the given slug.
func findOperator(operators []model.Operator, slug string) (*model.Operator, error) {
	for i := range operators {
		if operators[i].ID == slug {
			return &operators[i], nil
		}
	}
	return nil, eris.Errorf("locate: unknown operator %q", slug)
}

// writeLocateSnapshot writes the run summary as indented JSON.
func writeLocateSnapshot(path string, summary locate.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "locate: create snapshot %s", path)
	}
	defer file.Close() //nolint:errcheck

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return eris.Wrap(err, "locate: write snapshot")
	}
	return nil
}

// formatIdentities writes the slug to search-name mapping to w.
func formatIdentities(out io.Writer, operators []model.Operator, resolver *identity.Resolver) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLUG\tSEARCH NAME\tSOURCE")
	_, _ = fmt.Fprintln(w, "----\t-----------\t------")
	for _, op := range operators {
		id := resolver.Resolve(op)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", op.ID, id.Value, id.Source)
	}
	_ = w.Flush()
}

// formatLocateSummary writes the run totals to w.
func formatLocateSummary(out io.Writer, s locate.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Operators processed:\t%d\n", s.Processed)
	_, _ = fmt.Fprintf(w, "Camera sites:\t%d\n", s.Cameras)
	_, _ = fmt.Fprintf(w, "Skipped (no identity):\t%d\n", s.Skipped)
	_, _ = fmt.Fprintf(w, "Failed queries:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Zero results:\t%d\n", len(s.NoResults))
	for _, id := range s.NoResults {
		_, _ = fmt.Fprintf(w, "  %s\n", id)
	}
	_ = w.Flush()
}
