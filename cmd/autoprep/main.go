// Command autoprep runs the dataset cleaning pipeline on local CSV files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/autoprep/internal/core"
)

func main() {
	// .env is optional; existing variables win over it.
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		os.Exit(1)
	}
}

// errorText is the line printed for a failed command. Known failures show
// the mapped message and code with the original error after it.
func errorText(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("Error: %s\n  cause: %v", core.FormatUserError(err), err)
	}
	return "Error: " + err.Error()
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "autoprep",
		Short: "Profile, clean and export CSV datasets",
		Long: `autoprep profiles a CSV file, applies the cleaning pipeline and
writes the cleaned dataset, an explanation report or a pandas pipeline
script.

Examples:
  autoprep profile data.csv
  autoprep clean data.csv -o cleaned.csv
  autoprep clean data.csv --impute-categorical -o cleaned.xlsx
  autoprep explain data.csv
  autoprep pipeline data.csv > pipeline.py
  autoprep samples titanic | autoprep profile -
  autoprep save data.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().Int64("max-size", 100<<20, "largest accepted input in bytes")

	root.AddCommand(
		newProfileCmd(),
		newCleanCmd(),
		newExplainCmd(),
		newPipelineCmd(),
		newSamplesCmd(),
		newSaveCmd(),
	)
	return root
}
