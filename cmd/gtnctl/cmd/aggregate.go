package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"GtnPortal/internal/aggregate"
)

var (
	groupBy         string
	claimBasis      string
	rollUpQuarters  bool
	aggregateSchema string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Aggregate a contracts upload into per-contract period series",
	Args:  cobra.ExactArgs(1),
	RunE:  runAggregate,
}

func init() {
	addAggregateFlags(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggregateSchema, "schema", "s", "contracts", "upload schema (gtn, contracts)")
}

func addAggregateFlags(c *cobra.Command) {
	c.Flags().StringVar(&groupBy, "group-by", string(aggregate.ByCustomer), "contract key (customer, customer_sku)")
	c.Flags().StringVar(&claimBasis, "claim-basis", "", "claim basis (claim_column, discounts_rebates; empty picks automatically)")
	c.Flags().BoolVar(&rollUpQuarters, "quarters", false, "roll monthly periods up to quarters")
}

func aggregateOptions() aggregate.Options {
	return aggregate.Options{
		GroupBy:        aggregate.GroupBy(groupBy),
		ClaimBasis:     aggregate.ClaimBasis(claimBasis),
		RollUpQuarters: rollUpQuarters,
	}
}

func runAggregate(cmd *cobra.Command, args []string) error {
	up, err := normalizeFile(args[0], aggregateSchema)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !up.Report.OK() {
		printReport(out, up)
		return fmt.Errorf("%s failed schema validation", up.FileName)
	}
	res, err := aggregate.Aggregate(up.Rows, aggregateOptions())
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, res)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "contract\tperiod\trevenue\tclaim\tnet\tgrowth %\ttotal %\toutperform\tshare")
	for _, a := range res.Aggregates {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			a.Contract, a.Period, a.Revenue, a.ClaimAmount, a.NetRevenue,
			optional(a.GrowthPct), optional(a.TotalGrowthPct), yesNo(a.Outperform), optional(a.ContributionShare))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "period\trevenue\tclaim\tnet\tcontracts\tgrowth %")
	for _, t := range res.Totals {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t%s\n", t.Period, t.Revenue, t.ClaimAmount, t.NetRevenue, t.Contracts, optional(t.GrowthPct))
	}
	return tw.Flush()
}

func optional(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return "-"
	case *b:
		return "yes"
	default:
		return "no"
	}
}
