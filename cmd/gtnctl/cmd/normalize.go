package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"GtnPortal/internal/aggregate"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/normalize"
)

var schemaName string

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Normalize an upload and print its validation report",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&schemaName, "schema", "s", "gtn", "upload schema (gtn, contracts)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	up, err := normalizeFile(args[0], schemaName)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, up)
	}

	printReport(out, up)
	if up.Schema == normalize.GTN.Name && len(up.Rows) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "step\tkind\tamount\trunning\t")
		for _, s := range aggregate.Waterfall(up.Rows) {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t\n", s.Field, s.Kind, s.Amount, s.Running)
		}
		tw.Flush()
	}
	if !up.Report.OK() {
		return fmt.Errorf("%s failed schema validation", up.FileName)
	}
	return nil
}

func normalizeFile(path, schema string) (*ingest.Upload, error) {
	s, err := normalize.SchemaByName(schema)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	return svc.Normalize(path, data, s)
}

func printReport(w io.Writer, up *ingest.Upload) {
	fmt.Fprintf(w, "file:      %s (%s, sha256 %s)\n", up.FileName, up.Format, up.FileHash[:12])
	fmt.Fprintf(w, "schema:    %s\n", up.Schema)
	fmt.Fprintf(w, "rows:      %d\n", len(up.Rows))
	fmt.Fprintf(w, "corrected: %d, dropped: %d, duplicates: %d, mismatches: %d\n",
		up.Report.CorrectedCount, up.Report.DroppedRows, up.Report.Duplicates, up.Report.Mismatches)
	for _, m := range up.Resolution.Matches {
		fmt.Fprintf(w, "  %-22s <- %q (%s)\n", m.Field, m.Header, m.Method)
	}
	for _, e := range up.Report.Errors {
		fmt.Fprintf(w, "ERROR   %s\n", e)
	}
	for _, warn := range up.Report.Warnings {
		fmt.Fprintf(w, "WARNING %s\n", warn)
	}
}
