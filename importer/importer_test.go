package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"entityblock/blocking"
)

func TestCSVReader_Read(t *testing.T) {
	input := "id,title,authors,venue\n" +
		"1,Pedram Navid,\"john, doe\",VLDB\n" +
		"2,Pedram Novar,doe,SIGMOD\n"

	set, err := NewCSVReader(DefaultReaderConfig()).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, blocking.Record{ID: "1", Title: "Pedram Navid", Authors: "john, doe", Venue: "VLDB"}, set["1"])
	assert.Equal(t, "SIGMOD", set["2"].Venue)
}

func TestCSVReader_HeaderOrderAndCase(t *testing.T) {
	input := "\ufeffVenue;AUTHORS;Title;Id;year\n" +
		"VLDB;doe;A title;42;1999\n"

	cfg := DefaultReaderConfig()
	cfg.Delimiter = ';'
	set, err := NewCSVReader(cfg).Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, blocking.Record{ID: "42", Title: "A title", Authors: "doe", Venue: "VLDB"}, set["42"])
}

func TestCSVReader_LastWriteWins(t *testing.T) {
	input := "id,title,authors,venue\n" +
		"1,old,a,v\n" +
		"1,new,a,v\n"
	set, err := NewCSVReader(DefaultReaderConfig()).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "new", set["1"].Title)
}

func TestCSVReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", "header row is missing"},
		{"missing columns", "id,title\n1,x\n", "authors, venue"},
		{"short row", "id,title,authors,venue\n1,x\n", "line 2"},
		{"empty id", "id,title,authors,venue\n ,x,y,z\n", "empty id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVReader(DefaultReaderConfig()).Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, blocking.IsIngestion(err), "err = %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCSVReader_Encoding(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().String("id,title,authors,venue\n1,Поиск дубликатов,Иванов,ГОСТ\n")
	require.NoError(t, err)

	cfg := DefaultReaderConfig()
	cfg.Encoding = "windows-1251"
	set, err := NewCSVReader(cfg).Read(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Поиск дубликатов", set["1"].Title)
	assert.Equal(t, "Иванов", set["1"].Authors)

	cfg.Encoding = "no-such-charset"
	_, err = NewCSVReader(cfg).Read(strings.NewReader(raw))
	assert.True(t, blocking.IsIngestion(err))
}

func TestCSVReader_StripHTML(t *testing.T) {
	input := "id,title,authors,venue\n" +
		"1,<i>XML</i> query   processing &amp; indexing,doe,<b>VLDB</b>\n"

	cfg := DefaultReaderConfig()
	cfg.StripHTML = true
	set, err := NewCSVReader(cfg).Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "XML query processing & indexing", set["1"].Title)
	assert.Equal(t, "VLDB", set["1"].Venue)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("plain text"))
	assert.Equal(t, "H2O", StripHTML("H<sub>2</sub>O"))
	assert.Equal(t, "a < b", StripHTML("a &lt; b"))
}

func TestReadFiles_Merge(t *testing.T) {
	dir := t.TempDir()
	dblp := filepath.Join(dir, "dblp.csv")
	acm := filepath.Join(dir, "acm.csv")
	require.NoError(t, os.WriteFile(dblp, []byte("id,title,authors,venue\n1,dblp title,doe,VLDB\n2,only dblp,ann,VLDB\n"), 0o644))
	require.NoError(t, os.WriteFile(acm, []byte("id,title,authors,venue\n1,acm title,doe,SIGMOD\n3,only acm,bob,SIGMOD\n"), 0o644))

	set, err := ReadFiles([]string{dblp, acm}, DefaultReaderConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, set.SortedIDs())
	assert.Equal(t, "acm title", set["1"].Title)
}

func TestReadFiles_Errors(t *testing.T) {
	_, err := ReadFiles(nil, DefaultReaderConfig())
	assert.True(t, blocking.IsIngestion(err))

	_, err = ReadFiles([]string{filepath.Join(t.TempDir(), "missing.csv")}, DefaultReaderConfig())
	assert.True(t, blocking.IsIngestion(err))

	_, err = ReadFile("records.parquet", DefaultReaderConfig())
	assert.True(t, blocking.IsIngestion(err))
}

func TestReadFile_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.tsv")
	require.NoError(t, os.WriteFile(path, []byte("id\ttitle\tauthors\tvenue\n7\tt\tjohn, doe\tv\n"), 0o644))

	cfg := DefaultReaderConfig()
	cfg.Delimiter = 0
	set, err := ReadFile(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, "john, doe", set["7"].Authors)
}

func TestXLSXReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"ID", "Title", "Authors", "Venue"},
		{"1", "Pedram Navid", "john, doe", "VLDB"},
		{},
		{"2", "Pedram Novar", "doe"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	set, err := ReadFile(path, DefaultReaderConfig())
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "john, doe", set["1"].Authors)
	assert.Equal(t, "", set["2"].Venue)
}
