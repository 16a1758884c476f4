package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

var printer = message.NewPrinter(language.English)

func newOverviewCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print the headline metrics and group summaries of the three datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeLog, err := opts.reportApp(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			ov, err := a.DashboardService.Overview(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ov)
			}
			return writeOverview(cmd.OutOrStdout(), ov)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func newLowestBrandsCmd(opts *globalOptions) *cobra.Command {
	var (
		all        bool
		airlines   []string
		sortBy     string
		desc       bool
		brandsOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "lowest-brands",
		Short: "Print the lowest brand of every airline as seen by each dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeLog, err := opts.reportApp(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			q := domain.ComparisonQuery{
				ShowAll:   all,
				Airlines:  airlines,
				SortBy:    sortBy,
				Ascending: !desc,
			}
			if len(airlines) > 0 && !cmd.Flags().Changed("all") {
				q.ShowAll = false
			}

			cmp, err := a.DashboardService.LowestBrands(cmd.Context(), q)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cmp)
			}
			return writeComparison(cmd.OutOrStdout(), cmp, brandsOnly)
		},
	}

	cmd.Flags().BoolVar(&all, "all", true, "include every airline (default true unless --airline is given)")
	cmd.Flags().StringSliceVar(&airlines, "airline", nil, "airlines to include; repeat or separate with commas")
	cmd.Flags().StringVar(&sortBy, "sort", domain.CmpAirline, "sort column: "+strings.Join(domain.ComparisonSortKeys, ", "))
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&brandsOnly, "brands-only", false, "print only the brand columns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOverview(w io.Writer, ov *domain.Overview) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	h := ov.Headline
	fmt.Fprintln(tw, "HEADLINE")
	fmt.Fprintf(tw, "Airline-level carriers\t%d\n", h.AirlineLevelCarriers)
	fmt.Fprintf(tw, "Source-level carriers\t%d\n", h.SourceLevelCarriers)
	fmt.Fprintf(tw, "Airlines with detections\t%d\n", h.DetectionAirlines)
	fmt.Fprintf(tw, "Total ODs\t%s\n", h.TotalODsDisplay)

	writeTotals(tw, "TOP CARRIERS BY ODS", "Carrier", ov.AirlineLevel.TopCarriers)
	writeTotals(tw, "TOP FARE FAMILIES BY ODS", "Fare family", ov.AirlineLevel.TopFareFamilies)

	fmt.Fprintln(tw, "\nSOURCE DISTRIBUTION")
	fmt.Fprintln(tw, "Source\tODs\tShare")
	for _, s := range ov.SourceLevel.SourceDistribution {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Key, printer.Sprintf("%d", s.Total), printer.Sprintf("%.1f%%", s.Share*100))
	}

	writeTotals(tw, "TOP CARRIER-SOURCE PAIRS BY ODS", "Carrier - Source", ov.SourceLevel.TopCarrierSources)

	d := ov.Detections
	fmt.Fprintln(tw, "\nBRAND DETECTION")
	fmt.Fprintf(tw, "Records\t%s\n", printer.Sprintf("%d", d.Records))
	fmt.Fprintf(tw, "Identification rate\t%s\n", printer.Sprintf("%.1f%%", d.IdentificationRate))
	fmt.Fprintf(tw, "Avg brands per record\t%.2f\n", d.AvgBrandsPerRecord)
	fmt.Fprintf(tw, "Avg min price\t%s\n", printer.Sprintf("%.2f", d.AvgMinPrice))

	hist := d.PriceDistribution
	if len(hist.Bins) > 0 {
		fmt.Fprintf(tw, "\nMIN PRICE DISTRIBUTION (below %.2f, %d excluded)\n", hist.Cutoff, hist.Excluded)
		fmt.Fprintln(tw, "From\tTo\tCount")
		for _, b := range hist.Bins {
			fmt.Fprintf(tw, "%.2f\t%.2f\t%d\n", b.Lower, b.Upper, b.Count)
		}
	}

	return tw.Flush()
}

func writeTotals(w io.Writer, title, keyHeader string, totals []domain.GroupTotal) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "%s\tODs\n", keyHeader)
	for _, g := range totals {
		fmt.Fprintf(w, "%s\t%s\n", g.Key, printer.Sprintf("%d", g.Total))
	}
}

func writeComparison(w io.Writer, cmp *domain.Comparison, brandsOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if brandsOnly {
		fmt.Fprintln(tw, strings.Join(domain.BrandColumns, "\t"))
		for _, r := range cmp.Rows {
			fmt.Fprintln(tw, strings.Join(r.Brands().Cells(), "\t"))
		}
	} else {
		fmt.Fprintln(tw, strings.Join(domain.ComparisonColumns, "\t"))
		for _, r := range cmp.Rows {
			fmt.Fprintln(tw, strings.Join(r.Cells(), "\t"))
		}
	}

	fmt.Fprintf(tw, "\n%d of %d airlines\n", len(cmp.Rows), len(cmp.Universe))
	return tw.Flush()
}
