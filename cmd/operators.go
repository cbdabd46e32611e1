package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/camatlas/camatlas/internal/model"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "Inspect stored operators",
}

var operatorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored operators",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		operators, err := st.ListOperators(ctx)
		if err != nil {
			return eris.Wrap(err, "operators list")
		}

		tierStr, _ := cmd.Flags().GetString("tier")
		if tierStr != "" {
			tier := model.ParseTier(tierStr)
			if tier == model.TierUnknown {
				return eris.Errorf("operators list: unknown tier %q", tierStr)
			}
			operators = filterByTier(operators, tier)
		}

		if len(operators) == 0 {
			fmt.Fprintln(os.Stderr, "No operators found.")
			return nil
		}

		counts, _ := cmd.Flags().GetBool("counts")
		var cameraCounts map[string]int64
		if counts {
			cameraCounts = make(map[string]int64, len(operators))
			for _, op := range operators {
				n, err := st.CountCameras(ctx, op.ID)
				if err != nil {
					return eris.Wrap(err, "operators list")
				}
				cameraCounts[op.ID] = n
			}
		}

		formatOperatorsList(os.Stdout, operators, cameraCounts)
		return nil
	},
}

func init() {
	operatorsListCmd.Flags().String("tier", "", "filter by payment tier (e.g. \"Tier 3\")")
	operatorsListCmd.Flags().Bool("counts", false, "include stored camera counts per operator")

	operatorsCmd.AddCommand(operatorsListCmd)
	rootCmd.AddCommand(operatorsCmd)
}

// clipName shortens a name for column display, never splitting a rune.
func clipName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut] + "..."
}

func filterByTier(operators []model.Operator, tier model.Tier) []model.Operator {
	out := operators[:0:0]
	for _, op := range operators {
		if op.Tier == tier {
			out = append(out, op)
		}
	}
	return out
}

// formatOperatorsList writes a tabular list of operators to w.
func formatOperatorsList(out io.Writer, operators []model.Operator, cameraCounts map[string]int64) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if cameraCounts != nil {
		_, _ = fmt.Fprintln(w, "SLUG\tNAME\tTIER\tREG\tCAMERAS")
		_, _ = fmt.Fprintln(w, "----\t----\t----\t---\t-------")
	} else {
		_, _ = fmt.Fprintln(w, "SLUG\tNAME\tTIER\tREG")
		_, _ = fmt.Fprintln(w, "----\t----\t----\t---")
	}

	for _, op := range operators {
		name := clipName(op.Name, 40)
		if cameraCounts != nil {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", op.ID, name, op.Tier, op.ICOReg, cameraCounts[op.ID])
		} else {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.ID, name, op.Tier, op.ICOReg)
		}
	}
	_ = w.Flush()
}
