// Package core holds the dataset logic of AutoPrep, independent of any
// transport: CSV parsing, quality summaries, the cleaning pipeline, and the
// explanation, script and file exports built from them.
//
// # Data Flow
//
//	text ──Parse──▶ Table ──Summarize/ColumnStats──▶ Summary, []ColumnStat
//	                  │
//	                  └──Apply(opts)──▶ Table ──▶ WriteCSV / WriteXLSX
//	                                          ──▶ BuildExplanation / BuildPipelineScript
//
// Every function that takes a Table treats it as read-only and returns a
// new Table. Summary values are recomputed on demand and never cached.
//
// # Cleaning Stages
//
// [Apply] runs the enabled stages in a fixed order:
//
//  1. Trim whitespace in string cells
//  2. Remove rows whose every value is missing
//  3. Fill missing numeric cells with the column mean
//  4. Fill missing categorical cells with the column mode
//
// Numeric versus categorical is decided once, before stage 3.
//
// # Workspace
//
// [Workspace] bundles the dataset with the options and view of one editing
// session. Its methods are reducers returning an updated copy. The
// Generation counter lets callers drop results computed for a dataset that
// has since been replaced.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - VAL001-VAL003: request validation
//   - FILE001, FILE004: input files
//   - PRJ001-PRJ003: project lookup
//   - STORE001: local storage
//   - NET001-NET004: backend and network
//   - RATE001-RATE002: throttling
package core
