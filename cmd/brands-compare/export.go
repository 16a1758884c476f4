package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teozeng1205/brands-compare/internal/exporter"
	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

type exportOptions struct {
	format string
	out    string
	bom    bool
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dataset view or the lowest brands comparison to a file",
	}
	cmd.AddCommand(newExportRawCmd(opts), newExportLowestBrandsCmd(opts))
	return cmd
}

func (e *exportOptions) register(cmd *cobra.Command, formats []exporter.Format) {
	cmd.Flags().StringVar(&e.format, "format", string(exporter.FormatCSV), "file format: "+strings.Join(exporter.FormatNames(formats), ", "))
	cmd.Flags().StringVarP(&e.out, "out", "o", ".", "output directory, or a file path ending in the format extension; - writes to stdout")
	cmd.Flags().BoolVar(&e.bom, "bom", false, "start CSV files with a UTF-8 byte order mark")
}

func newExportRawCmd(opts *globalOptions) *cobra.Command {
	var (
		eo                       exportOptions
		carrier, source, airline string
	)

	ids := make([]string, len(domain.AllDatasets))
	for i, id := range domain.AllDatasets {
		ids[i] = string(id)
	}

	cmd := &cobra.Command{
		Use:       "raw <dataset>",
		Short:     "Export a filtered dataset (" + strings.Join(ids, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: ids,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeLog, err := opts.reportApp(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			a.Exporter.WithCSVBOM(eo.bom)

			q := services.RawDataQuery{
				Dataset: domain.DatasetID(args[0]),
				Carrier: carrier,
				Source:  source,
				Airline: airline,
			}
			dl, err := a.DashboardService.ExportRawData(cmd.Context(), q, eo.format)
			if err != nil {
				return err
			}
			return eo.write(cmd, dl)
		},
	}

	eo.register(cmd, exporter.TableFormats)
	cmd.Flags().StringVar(&carrier, services.FilterCarrier, "", "keep only this carrier")
	cmd.Flags().StringVar(&source, services.FilterSource, "", "keep only this source")
	cmd.Flags().StringVar(&airline, services.FilterAirline, "", "keep only this airline")
	return cmd
}

func newExportLowestBrandsCmd(opts *globalOptions) *cobra.Command {
	var (
		eo       exportOptions
		airlines []string
		sortBy   string
		desc     bool
	)

	cmd := &cobra.Command{
		Use:   "lowest-brands",
		Short: "Export the full lowest brands comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeLog, err := opts.reportApp(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			a.Exporter.WithCSVBOM(eo.bom)

			q := domain.ComparisonQuery{
				ShowAll:   len(airlines) == 0,
				Airlines:  airlines,
				SortBy:    sortBy,
				Ascending: !desc,
			}
			dl, err := a.DashboardService.ExportLowestBrands(cmd.Context(), q, eo.format)
			if err != nil {
				return err
			}
			return eo.write(cmd, dl)
		},
	}

	eo.register(cmd, exporter.ComparisonFormats)
	cmd.Flags().StringSliceVar(&airlines, "airline", nil, "airlines to include; default is every airline")
	cmd.Flags().StringVar(&sortBy, "sort", domain.CmpAirline, "sort column: "+strings.Join(domain.ComparisonSortKeys, ", "))
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}

// write renders dl to stdout, into a directory under its fixed file name, or to an explicit file
func (e *exportOptions) write(cmd *cobra.Command, dl *services.Download) error {
	if e.out == "-" {
		_, err := dl.WriteTo(cmd.Context(), cmd.OutOrStdout())
		return err
	}

	path := e.out
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, dl.FileName)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	n, err := dl.WriteTo(cmd.Context(), f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d rows, %d bytes)\n", path, dl.Rows(), n)
	return nil
}
