package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPipelineScript_AllSteps(t *testing.T) {
	tbl := mustParse(t, "name,age,city\nann,3,Oslo\n,4,")

	script := BuildPipelineScript(ColumnStats(tbl), allOptions())

	want := `# Auto-generated by AutoPrep
import pandas as pd

# 1) Read input
df = pd.read_csv("input.csv")

# 2) Trim whitespace in categorical/text columns
for col in ["name","city"]:
    if col in df.columns:
        df[col] = df[col].astype(str).str.strip()

# 3) Remove fully empty rows
df.dropna(how="all", inplace=True)

# 4) Impute numeric columns with mean
for col in ["age"]:
    if col in df.columns:
        df[col] = df[col].fillna(df[col].mean())

# 5) Impute categorical columns with mode
for col in ["name","city"]:
    if col in df.columns:
        mode = df[col].mode()
        if not mode.empty:
            df[col] = df[col].fillna(mode.iloc[0])

# 6) Write output
df.to_csv("output.csv", index=False)`

	assert.Equal(t, want, script)
}

func TestBuildPipelineScript_NoOptions(t *testing.T) {
	tbl := mustParse(t, "name,age\nann,3")

	script := BuildPipelineScript(ColumnStats(tbl), CleaningOptions{})

	assert.Equal(t, "# Auto-generated by AutoPrep\nimport pandas as pd\n\n# 1) Read input\n"+
		"df = pd.read_csv(\"input.csv\")\n\n# 6) Write output\ndf.to_csv(\"output.csv\", index=False)", script)
}

func TestBuildPipelineScript_SkipsStepsWithoutColumns(t *testing.T) {
	tbl := mustParse(t, "a,b\n1,2")

	script := BuildPipelineScript(ColumnStats(tbl), allOptions())

	assert.NotContains(t, script, "# 2) Trim")
	assert.NotContains(t, script, "# 5) Impute categorical")
	assert.Contains(t, script, "# 3) Remove fully empty rows")
	assert.Contains(t, script, `for col in ["a","b"]:`)
}

func TestBuildPipelineScript_EscapesColumnNames(t *testing.T) {
	stats := []ColumnStat{{Name: `say "hi"`}, {Name: `<tag> & \path`}}

	script := BuildPipelineScript(stats, CleaningOptions{TrimWhitespace: true})

	assert.Contains(t, script, `for col in ["say \"hi\"","<tag> & \\path"]:`)
}

func TestBuildPipelineScript_Deterministic(t *testing.T) {
	tbl := mustParse(t, "x,y,z\n1,a,\n,b,2")
	stats := ColumnStats(tbl)

	first := BuildPipelineScript(stats, allOptions())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildPipelineScript(stats, allOptions()))
	}
}
