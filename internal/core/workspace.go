package core

// Tab names the view a workspace is showing.
type Tab string

const (
	TabColumns Tab = "columns"
	TabIssues  Tab = "issues"
	TabPreview Tab = "preview"
	TabExplain Tab = "explain"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabColumns, TabIssues, TabPreview, TabExplain:
		return true
	}
	return false
}

// Workspace is the state of one editing session. It is a value: every
// reducer returns a new Workspace and leaves the receiver untouched.
//
// Generation increases whenever the dataset is replaced. Work started
// against an older generation must be discarded when it completes, see
// Current.
type Workspace struct {
	FileName    string          `json:"file_name"`
	Source      string          `json:"-"`
	Original    Table           `json:"-"`
	Table       Table           `json:"table"`
	Warnings    []ParseWarning  `json:"warnings,omitempty"`
	Options     CleaningOptions `json:"options"`
	Steps       []Step          `json:"steps,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Tab         Tab             `json:"tab"`
	Generation  uint64          `json:"generation"`
}

// NewWorkspace returns an empty workspace with default options.
func NewWorkspace() Workspace {
	empty := Table{Headers: []string{}, Rows: []Row{}}
	return Workspace{
		Original: empty,
		Table:    empty,
		Options:  DefaultCleaningOptions(),
		Tab:      TabColumns,
	}
}

// Load parses text and makes it the current dataset.
func (w Workspace) Load(fileName, text string) Workspace {
	t, warnings := Parse(text)
	w = w.LoadParsed(fileName, t, warnings)
	w.Source = text
	return w
}

// LoadParsed makes a table parsed elsewhere, with its parse warnings, the
// current dataset.
func (w Workspace) LoadParsed(fileName string, t Table, warnings []ParseWarning) Workspace {
	w.FileName = fileName
	w.Source = ""
	w.Original = t
	w.Table = t
	w.Warnings = warnings
	w.Steps = nil
	w.Explanation = ""
	w.Generation++
	return w
}

// LoadTable makes an already parsed table the current dataset, as when a
// saved project is reopened.
func (w Workspace) LoadTable(fileName string, t Table) Workspace {
	w = w.LoadParsed(fileName, t, nil)
	w.Tab = TabPreview
	return w
}

// WithOptions replaces the cleaning options.
func (w Workspace) WithOptions(opts CleaningOptions) Workspace {
	w.Options = opts
	return w
}

// WithTab switches the active view. Unknown tabs are ignored.
func (w Workspace) WithTab(t Tab) Workspace {
	if t.Valid() {
		w.Tab = t
	}
	return w
}

// ApplyFixes runs the cleaning pipeline over the current table.
func (w Workspace) ApplyFixes() Workspace {
	t, steps := ApplyWithLog(w.Table, w.Options)
	w.Table = t
	w.Steps = append(append([]Step(nil), w.Steps...), steps...)
	return w
}

// Explain renders the explanation for the current table and switches to
// the explanation view.
func (w Workspace) Explain() Workspace {
	w.Explanation = BuildExplanation(w.Summary(), w.ColumnStats(), w.Options)
	w.Tab = TabExplain
	return w
}

// Reset discards applied fixes and restores the dataset as loaded.
func (w Workspace) Reset() Workspace {
	w.Table = w.Original
	w.Steps = nil
	w.Explanation = ""
	return w
}

// Current reports whether work started at generation gen still applies.
func (w Workspace) Current(gen uint64) bool {
	return w.Generation == gen
}

// Summary computes the summary of the current table.
func (w Workspace) Summary() Summary {
	return Summarize(w.Table)
}

// ColumnStats computes the column stats of the current table.
func (w Workspace) ColumnStats() []ColumnStat {
	return ColumnStats(w.Table)
}

// PipelineScript renders the pandas script for the current options.
func (w Workspace) PipelineScript() string {
	return BuildPipelineScript(w.ColumnStats(), w.Options)
}

// Issues lists the data-quality problems found in the current table.
func (w Workspace) Issues() []Issue {
	return DetectIssues(w.Summary())
}

// Issue is one detected data-quality problem.
type Issue struct {
	Kind    string `json:"kind"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Issue kinds.
const (
	IssueMissingValues = "missing_values"
	IssueDuplicateRows = "duplicate_rows"
)

// DetectIssues reports the problems visible in s. An empty result means
// the data has no detected issues.
func DetectIssues(s Summary) []Issue {
	var out []Issue
	if s.MissingCellCount > 0 {
		out = append(out, Issue{
			Kind:    IssueMissingValues,
			Count:   s.MissingCellCount,
			Message: "Missing values detected. Use the preprocessing options to impute them.",
		})
	}
	if s.DuplicateRows > 0 {
		out = append(out, Issue{
			Kind:    IssueDuplicateRows,
			Count:   s.DuplicateRows,
			Message: "Duplicate rows detected. Review them before exporting.",
		})
	}
	return out
}
