package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// BuildPipelineScript returns a pandas script reproducing the selected
// cleaning steps. Output depends only on its arguments.
func BuildPipelineScript(stats []ColumnStat, opts CleaningOptions) string {
	numCols := NumericColumns(stats)
	objCols := CategoricalColumns(stats)

	lines := []string{
		"# Auto-generated by AutoPrep",
		"import pandas as pd",
		"",
		"# 1) Read input",
		`df = pd.read_csv("input.csv")`,
		"",
	}

	if opts.TrimWhitespace && len(objCols) > 0 {
		lines = append(lines,
			"# 2) Trim whitespace in categorical/text columns",
			"for col in "+pyList(objCols)+":",
			"    if col in df.columns:",
			"        df[col] = df[col].astype(str).str.strip()",
			"",
		)
	}

	if opts.RemoveEmptyRows {
		lines = append(lines,
			"# 3) Remove fully empty rows",
			`df.dropna(how="all", inplace=True)`,
			"",
		)
	}

	if opts.ImputeNumeric && len(numCols) > 0 {
		lines = append(lines,
			"# 4) Impute numeric columns with mean",
			"for col in "+pyList(numCols)+":",
			"    if col in df.columns:",
			"        df[col] = df[col].fillna(df[col].mean())",
			"",
		)
	}

	if opts.ImputeCategorical && len(objCols) > 0 {
		lines = append(lines,
			"# 5) Impute categorical columns with mode",
			"for col in "+pyList(objCols)+":",
			"    if col in df.columns:",
			"        mode = df[col].mode()",
			"        if not mode.empty:",
			"            df[col] = df[col].fillna(mode.iloc[0])",
			"",
		)
	}

	lines = append(lines,
		"# 6) Write output",
		`df.to_csv("output.csv", index=False)`,
	)

	return strings.Join(lines, "\n")
}

// pyList renders names as a list literal. JSON string literals are valid
// Python string literals.
func pyList(names []string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		// []string always encodes
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
