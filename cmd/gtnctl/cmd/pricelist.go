package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"GtnPortal/internal/pricelist"
)

var productsFile string

var pricelistCmd = &cobra.Command{
	Use:   "pricelist <file.pdf|file.txt>",
	Short: "Parse a published price-ceiling list",
	Long: `Parse a price-ceiling document into registration numbers and unit prices.

With --products the ceilings are compared against a product master given as
JSON (array of {sku, name, registrationNumber, unitPrice}) or CSV with the
columns sku;name;registration_number;unit_price.`,
	Args: cobra.ExactArgs(1),
	RunE: runPricelist,
}

func init() {
	pricelistCmd.Flags().StringVarP(&productsFile, "products", "p", "", "product master to compare against (.json or .csv)")
}

func runPricelist(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	up, err := svc.ParsePriceList(args[0], data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if productsFile != "" {
		products, err := loadProducts(productsFile)
		if err != nil {
			return err
		}
		res := pricelist.Compare(up.Rows, products)
		if jsonOutput {
			return writeJSON(out, res)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "sku\tregistration\tprice\tceiling\texcess\texcess %")
		for _, c := range res.Matched {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n", c.SKU, c.RegistrationNumber, c.UnitPrice, c.Ceiling, c.Excess, optional(c.ExcessPct))
		}
		tw.Flush()
		fmt.Fprintf(out, "\n%d above ceiling, %d without ceiling\n", res.AboveCeiling, len(res.Unmatched))
		return nil
	}

	if jsonOutput {
		return writeJSON(out, up)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "registration\tprice\tunit\tvalid from\tsection")
	for _, r := range up.Rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%d\n", r.RegistrationNumber, r.UnitPriceEUR, r.Unit, r.ValidFrom, r.Section)
	}
	tw.Flush()
	rep := up.Report
	fmt.Fprintf(out, "\n%d sections, %d without price, %d without registration numbers, %d overridden, %d orphan tokens\n",
		rep.Sections, rep.SectionsWithoutPrice, rep.SectionsWithoutTokens, rep.Overridden, rep.OrphanTokens)
	return nil
}

func loadProducts(path string) ([]pricelist.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []pricelist.Product
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &products)
	case ".csv":
		err = gocsv.UnmarshalBytes(data, &products)
	default:
		return nil, fmt.Errorf("unsupported product file %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
