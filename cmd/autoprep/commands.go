package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/autoprep/internal/config"
	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/logging"
	"github.com/JonMunkholm/autoprep/internal/persist"
)

// loadWorkspace reads the CSV named by path ("-" for stdin) into a fresh
// workspace. Parse warnings go to the error stream.
func loadWorkspace(cmd *cobra.Command, path string) (core.Workspace, int64, error) {
	limit, _ := cmd.Flags().GetInt64("max-size")

	var (
		r    io.Reader
		name string
	)
	if path == "-" {
		r, name = cmd.InOrStdin(), "stdin.csv"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return core.Workspace{}, 0, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r, name = f, filepath.Base(path)
	}

	cr := &countingReader{r: r}
	t, warnings, err := core.ParseReader(cr, limit)
	if err != nil {
		return core.Workspace{}, 0, fmt.Errorf("%s: %w", name, err)
	}
	if len(t.Headers) == 0 && len(warnings) == 0 {
		return core.Workspace{}, 0, fmt.Errorf("no csv provided: %s is empty", name)
	}

	ws := core.NewWorkspace().LoadParsed(name, t, warnings)
	for _, w := range ws.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
	}
	return ws, cr.n, nil
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// addOptionFlags registers one flag per cleaning stage, defaulting to
// the options preselected for a fresh dataset.
func addOptionFlags(cmd *cobra.Command) {
	def := core.DefaultCleaningOptions()
	f := cmd.Flags()
	f.Bool("trim", def.TrimWhitespace, "trim whitespace in text cells")
	f.Bool("remove-empty", def.RemoveEmptyRows, "remove rows where every cell is missing")
	f.Bool("impute-numeric", def.ImputeNumeric, "fill missing numeric cells with the column mean")
	f.Bool("impute-categorical", def.ImputeCategorical, "fill missing text cells with the column mode")
}

func optionsFromFlags(cmd *cobra.Command) core.CleaningOptions {
	f := cmd.Flags()
	var o core.CleaningOptions
	o.TrimWhitespace, _ = f.GetBool("trim")
	o.RemoveEmptyRows, _ = f.GetBool("remove-empty")
	o.ImputeNumeric, _ = f.GetBool("impute-numeric")
	o.ImputeCategorical, _ = f.GetBool("impute-categorical")
	return o
}

func newProfileCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profile <file|->",
		Short: "Show dataset summary, column stats and issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := loadWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"file_name": ws.FileName,
					"summary":   ws.Summary(),
					"columns":   ws.ColumnStats(),
					"issues":    ws.Issues(),
				})
			}

			s := ws.Summary()
			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetTitle(ws.FileName)
			tw.AppendRows([]table.Row{
				{"Rows", s.RowCount},
				{"Columns", s.ColCount},
				{"Missing cells", s.MissingCellCount},
				{"Quality score", fmt.Sprintf("%d%%", s.QualityScore)},
			})
			tw.SetStyle(table.StyleLight)
			tw.Render()

			fmt.Fprintln(out, core.RenderColumnProfile(ws.ColumnStats()))
			for _, is := range ws.Issues() {
				fmt.Fprintf(out, "- %s\n", is.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}

func newCleanCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "clean <file|->",
		Short: "Apply the cleaning pipeline and write the cleaned dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := loadWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			ws = ws.WithOptions(optionsFromFlags(cmd)).ApplyFixes()

			if format == "" {
				format = "csv"
				if strings.EqualFold(filepath.Ext(output), ".xlsx") {
					format = "xlsx"
				}
			}

			var buf bytes.Buffer
			switch format {
			case "csv":
				err = core.WriteCSV(&buf, ws.Table)
			case "xlsx":
				err = core.WriteXLSX(&buf, ws.Table)
			default:
				err = fmt.Errorf("unknown export format %q", format)
			}
			if err != nil {
				return err
			}

			for _, st := range ws.Steps {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d\n", st.Name, st.Affected)
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	addOptionFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from the output extension)")
	return cmd
}

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <file|->",
		Short: "Clean the dataset and print the explanation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := loadWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			ws = ws.WithOptions(optionsFromFlags(cmd)).ApplyFixes().Explain()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ws.Explanation)
			return err
		},
	}
	addOptionFlags(cmd)
	return cmd
}

func newPipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline <file|->",
		Short: "Print the pandas script reproducing the cleaning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := loadWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), ws.WithOptions(optionsFromFlags(cmd)).PipelineScript())
			return err
		},
	}
	addOptionFlags(cmd)
	return cmd
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples [key]",
		Short: "List the built-in sample datasets or print one as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				sm, ok := core.LookupSample(args[0])
				if !ok {
					return fmt.Errorf("unknown sample %q", args[0])
				}
				_, err := io.WriteString(out, sm.CSV)
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.AppendHeader(table.Row{"Key", "Name"})
			for _, sm := range core.Samples() {
				tw.AppendRow(table.Row{sm.Key, sm.Name})
			}
			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "save <file|->",
		Short: "Save the dataset and its analysis as a project",
		Long: `save stores the dataset (first rows up to PROCESSING_SAVE_ROW_LIMIT)
and its analysis through the configured backend, or the local store
when BACKEND_URL is unset. Without --project a new project is created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			ws, size, err := loadWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := saveWorkspace(cmd.Context(), cfg, logger, project, ws, size)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "existing project id to save into")
	return cmd
}

func saveWorkspace(ctx context.Context, cfg *config.Config, logger *slog.Logger, project string, ws core.Workspace, size int64) (*persist.SaveResult, error) {
	svc, closeStore, err := persist.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	if project != "" {
		return svc.SaveTable(ctx, project, ws.Table, cfg.Processing.SaveRowLimit)
	}
	return svc.CreateFromTable(ctx, ws.FileName, size, ws.Table, cfg.Processing.SaveRowLimit)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
