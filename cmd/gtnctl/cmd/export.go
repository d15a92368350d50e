package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"GtnPortal/internal/aggregate"
	"GtnPortal/internal/export"
)

var (
	dataset      string
	formatName   string
	outputPath   string
	exportSchema string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Normalize an upload and write rows, aggregates or the waterfall to csv/xlsx",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&dataset, "dataset", "d", "rows", "dataset (rows, aggregates, waterfall)")
	exportCmd.Flags().StringVarP(&formatName, "format", "f", "xlsx", "output format (csv, xlsx)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default derived from input)")
	exportCmd.Flags().StringVarP(&exportSchema, "schema", "s", "", "upload schema (default gtn; contracts for aggregates)")
	addAggregateFlags(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	schema := exportSchema
	if schema == "" {
		schema = "gtn"
		if dataset == "aggregates" {
			schema = "contracts"
		}
	}
	up, err := normalizeFile(args[0], schema)
	if err != nil {
		return err
	}
	if !up.Report.OK() {
		printReport(cmd.ErrOrStderr(), up)
		return fmt.Errorf("%s failed schema validation", up.FileName)
	}

	var buf bytes.Buffer
	switch dataset {
	case "rows":
		err = export.Rows(&buf, format, up.Rows)
	case "waterfall":
		err = export.Waterfall(&buf, format, aggregate.Waterfall(up.Rows))
	case "aggregates":
		var res aggregate.Result
		if res, err = aggregate.Aggregate(up.Rows, aggregateOptions()); err == nil {
			err = export.Aggregates(&buf, format, res)
		}
	default:
		return fmt.Errorf("unknown dataset %q", dataset)
	}
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		path = base + "_" + dataset + format.Ext()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(up.Rows), path)
	return nil
}
