package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSV(t *testing.T) {
	tbl := NewTable([]string{"name", "score"}, []Row{
		{"name": String("Ann, Jr."), "score": Number(9.5)},
		{"name": String(" Bob"), "score": Missing()},
		{"name": Missing(), "score": Number(1e21)},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	assert.Equal(t, "name,score\n\"Ann, Jr.\",9.5\n\" Bob\",\n,1e+21\n", buf.String())
}

func TestWriteCSV_SingleColumnMissing(t *testing.T) {
	tbl := NewTable([]string{"only"}, []Row{{"only": Missing()}, {"only": String("x")}, {"only": String("  ")}})

	out := FormatCSV(tbl)

	assert.Equal(t, "only\n\"\"\nx\n\"\"\n", out)

	back, warnings := Parse(out)
	assert.Empty(t, warnings)
	assert.Len(t, back.Rows, 3)
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	assert.Equal(t, "", FormatCSV(Table{}))
}

func TestWriteXLSX(t *testing.T) {
	tbl := NewTable([]string{"name", "score"}, []Row{
		{"name": String("Ann"), "score": Number(9.5)},
		{"name": Missing(), "score": Number(3)},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsxSheet}, f.GetSheetList())

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "score"}, rows[0])
	assert.Equal(t, []string{"Ann", "9.5"}, rows[1])
	assert.Equal(t, []string{"", "3"}, rows[2])

	cellType, err := f.GetCellType(xlsxSheet, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}
