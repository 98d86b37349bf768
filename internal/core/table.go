package core

// Row maps a column name to its cell value.
type Row map[string]Value

// Clone returns a shallow copy of the row. Values are immutable so a
// shallow copy is a full copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether every value in the row is missing.
func (r Row) IsEmpty() bool {
	for _, v := range r {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// Table is the in-memory working dataset: ordered rows plus ordered,
// unique headers. Transformations never modify a Table in place; they
// return a new one.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// NewTable builds a table, filling any header a row lacks with a missing
// value so every row carries exactly the header key set.
func NewTable(headers []string, rows []Row) Table {
	t := Table{
		Headers: append([]string{}, headers...),
		Rows:    make([]Row, len(rows)),
	}
	for i, r := range rows {
		nr := make(Row, len(headers))
		for _, h := range headers {
			nr[h] = r[h]
		}
		t.Rows[i] = nr
	}
	return t
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Headers: append([]string{}, t.Headers...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Column returns the values of one column in row order.
func (t Table) Column(name string) []Value {
	vals := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r[name]
	}
	return vals
}

// Head returns a table holding at most n leading rows.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Headers: t.Headers, Rows: t.Rows[:n]}
}

// Records returns the table as string records, header first, the shape
// encoding/csv and spreadsheet writers expect.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string{}, t.Headers...))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			rec[i] = r[h].Text()
		}
		out = append(out, rec)
	}
	return out
}
