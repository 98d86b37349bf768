package persist

import (
	"sort"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// DatasetTypeOriginal marks the dataset saved as uploaded.
const DatasetTypeOriginal = "original"

// DatasetMetadata describes the rows of a dataset. Older clients send
// the column list as headers rather than columns.
type DatasetMetadata struct {
	Columns   []string `json:"columns,omitempty"`
	Headers   []string `json:"headers,omitempty"`
	TotalRows int      `json:"totalRows,omitempty"`
}

// ColumnNames returns Columns, or Headers when Columns is empty.
func (m DatasetMetadata) ColumnNames() []string {
	if len(m.Columns) > 0 {
		return m.Columns
	}
	return m.Headers
}

// DatasetInput is the client-side shape of a dataset save.
type DatasetInput struct {
	Type     string          `json:"type,omitempty" validate:"max=50"`
	Data     []core.Row      `json:"data"`
	Metadata DatasetMetadata `json:"metadata"`
}

// Dataset is a stored dataset as the backend returns it.
type Dataset struct {
	ID        string     `json:"id"`
	Type      string     `json:"type,omitempty"`
	Columns   []string   `json:"columns"`
	Rows      []core.Row `json:"rows"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// datasetPayload is the body the backend accepts for a dataset.
type datasetPayload struct {
	Columns []string   `json:"columns"`
	Rows    []core.Row `json:"rows"`
}

// localDataset is a dataset as the local store keeps it. The type tag is
// local only; pickDataset reads it back.
type localDataset struct {
	Type string `json:"type,omitempty"`
	datasetPayload
}

func (in DatasetInput) toPayload() datasetPayload {
	cols := in.Metadata.ColumnNames()
	if cols == nil {
		cols = []string{}
	}
	rows := in.Data
	if rows == nil {
		rows = []core.Row{}
	}
	return datasetPayload{Columns: cols, Rows: rows}
}

// Input converts a stored dataset back to the client-side shape.
func (d Dataset) Input() DatasetInput {
	return DatasetInput{
		Type: d.Type,
		Data: d.Rows,
		Metadata: DatasetMetadata{
			Columns:   d.Columns,
			TotalRows: len(d.Rows),
		},
	}
}

// Table rebuilds the dataset as a table. Without a stored column list the
// headers are the keys of the first row in sorted order.
func (d Dataset) Table() core.Table {
	headers := d.Columns
	if len(headers) == 0 && len(d.Rows) > 0 {
		for k := range d.Rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}
	return core.NewTable(headers, d.Rows)
}

// NewDatasetInput builds the save request for the original upload. At
// most limit rows are kept; limit <= 0 keeps everything.
func NewDatasetInput(t core.Table, limit int) DatasetInput {
	head := t
	if limit > 0 {
		head = t.Head(limit)
	}
	return DatasetInput{
		Type: DatasetTypeOriginal,
		Data: head.Rows,
		Metadata: DatasetMetadata{
			Headers:   append([]string{}, t.Headers...),
			TotalRows: len(t.Rows),
		},
	}
}

// pickDataset returns the original dataset, or the first one.
func pickDataset(ds []Dataset) (Dataset, bool) {
	for _, d := range ds {
		if d.Type == DatasetTypeOriginal {
			return d, true
		}
	}
	if len(ds) == 0 {
		return Dataset{}, false
	}
	return ds[0], true
}
