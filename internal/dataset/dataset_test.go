package dataset

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleRows = []string{
	"No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,station",
	"1,2021,1,1,0,12,20,4,30,300,50,25,Aotizhongxin",
	"2,2021,1,1,1,NA,22,5,,400,60,30,Aotizhongxin",
	"3,2021,12,2,0,8,15,3,28,250,40,-2.5,Changping",
	"4,2022,6,3,0,30,45,7,abc,600,90,31,Aotizhongxin",
}

func writeFixture(t *testing.T, name string, lines []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return p
}

func TestLoadCSV(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, f.Table.Len())
	assert.Len(t, f.Checksum, 16)

	year, ok := f.Table.Column(ColYear)
	require.True(t, ok)
	assert.Equal(t, KindInt, year.Kind)

	o3, ok := f.Table.Column("O3")
	require.True(t, ok)
	assert.Equal(t, KindText, o3.Kind, "measurements stay text until coerced")

	stations, err := f.Table.DistinctTexts(ColStation)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aotizhongxin", "Changping"}, stations)

	years, err := f.Table.DistinctInts(ColYear)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022}, years)
}

func TestLoadCSVStripsBOMAndTSV(t *testing.T) {
	lines := []string{
		"\ufeffyear\tmonth\tstation\tO3",
		"2020\t3\t Dongsi \t41",
	}
	p := writeFixture(t, "data.tsv", lines)
	tbl, err := LoadCSV(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "month", "station", "O3"}, tbl.Names())
	assert.Equal(t, "Dongsi", tbl.Row(0).Text(ColStation))
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{})
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
	t.Run("missing station column", func(t *testing.T) {
		p := writeFixture(t, "bad.csv", []string{"year,month,O3", "2021,1,5"})
		_, err := Load(p, LoadOptions{})
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ColStation, le.Column)
	})
	t.Run("wrong field count", func(t *testing.T) {
		p := writeFixture(t, "bad.csv", []string{"year,month,station", "2021,1,A", "2021,2"})
		_, err := Load(p, LoadOptions{})
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, 2, le.Row)
	})
	t.Run("non-integer year", func(t *testing.T) {
		p := writeFixture(t, "bad.csv", []string{"year,month,station", "twenty,1,A"})
		_, err := Load(p, LoadOptions{})
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ColYear, le.Column)
		assert.Equal(t, 1, le.Row)
	})
	t.Run("empty file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		_, err := Load(p, LoadOptions{})
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
	})
}

func TestCoerce(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	once, stats, err := Coerce(f.Table, "PM2.5", "NO2", "TEMP")
	require.NoError(t, err)
	assert.Equal(t, 1, stats["PM2.5"])
	assert.Equal(t, 2, stats["NO2"], "empty and 'abc' become missing")

	assert.False(t, once.Row(1).Number("PM2.5").Valid)
	assert.Equal(t, Num(-2.5), once.Row(2).Number("TEMP"))

	so2, _ := once.Column("SO2")
	assert.Equal(t, KindText, so2.Kind, "columns not named are never coerced")

	twice, _, err := Coerce(once, "PM2.5", "NO2", "TEMP")
	require.NoError(t, err)
	assert.Equal(t, once.Records(), twice.Records())
	for _, name := range []string{"PM2.5", "NO2", "TEMP"} {
		a, _ := once.Column(name)
		b, _ := twice.Column(name)
		assert.Same(t, a, b, "coercing a numeric column is a no-op")
	}

	orig, _ := f.Table.Column("NO2")
	assert.Equal(t, KindText, orig.Kind, "input table is not mutated")

	_, _, err = Coerce(f.Table, "XYZ")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"3,5", 3.5, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"1e3", 1000, true},
		{"NA", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
}

func TestNormalizeMonths(t *testing.T) {
	months := []int{12, 1, 7, 3, 11, 2, 6, 4, 10, 5, 9, 8}
	station := make([]string, len(months))
	for i := range station {
		station[i] = "A"
	}
	tbl, err := NewTable(NewIntColumn(ColMonth, months), NewTextColumn(ColStation, station))
	require.NoError(t, err)

	norm, err := NormalizeMonths(tbl, MonthReject)
	require.NoError(t, err)
	col, _ := norm.Column(ColMonth)
	assert.Equal(t, KindLabel, col.Kind)
	for i, m := range months {
		label := norm.Row(i).Text(ColMonth)
		assert.Equal(t, m-1, MonthRank(label))
		assert.Equal(t, m-1, col.Rank(label))
	}
	assert.Less(t, MonthRank("Jan"), MonthRank("Dec"), "calendar order, not lexical")

	again, err := NormalizeMonths(norm, MonthReject)
	require.NoError(t, err)
	assert.Same(t, norm, again)
}

func TestNormalizeMonthsOutOfRange(t *testing.T) {
	tbl, err := NewTable(NewIntColumn(ColMonth, []int{1, 13, 0}))
	require.NoError(t, err)

	_, err = NormalizeMonths(tbl, MonthReject)
	var me *InvalidMonthError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 2, me.Row)
	assert.Equal(t, 13, me.Value)

	pass, err := NormalizeMonths(tbl, MonthPassThrough)
	require.NoError(t, err)
	assert.Equal(t, "13", pass.Row(1).Text(ColMonth))
	col, _ := pass.Column(ColMonth)
	assert.Equal(t, 12, col.Rank("0"))
	assert.Equal(t, 13, col.Rank("13"))
}

func TestParseMonthPolicy(t *testing.T) {
	p, err := ParseMonthPolicy("passthrough")
	require.NoError(t, err)
	assert.Equal(t, MonthPassThrough, p)
	p, err = ParseMonthPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MonthReject, p)
	_, err = ParseMonthPolicy("drop")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	sub := f.Table.Filter(func(r Row) bool {
		y, _ := r.Int(ColYear)
		return y == 2021 && r.Text(ColStation) == "Aotizhongxin"
	})
	require.Equal(t, 2, sub.Len())
	for i := 0; i < sub.Len(); i++ {
		y, _ := sub.Row(i).Int(ColYear)
		assert.Equal(t, 2021, y)
		assert.Equal(t, "Aotizhongxin", sub.Row(i).Text(ColStation))
	}
	assert.Equal(t, 4, f.Table.Len())
	assert.Equal(t, 1, f.Table.Head(1).Len())
}

func TestCacheReusesTable(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	c := NewCache(nil)
	a, err := c.Load(p, LoadOptions{})
	require.NoError(t, err)
	b, err := c.Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	_, err = c.Load(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestExportRoundTrip(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	coerced, _, err := Coerce(f.Table, "O3")
	require.NoError(t, err)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(coerced, &csvBuf))
	assert.True(t, strings.HasPrefix(csvBuf.String(), "No,year,month"))

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSX(coerced, &xlsxBuf, "filtered"))
	xp := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(xp, xlsxBuf.Bytes(), 0o644))

	back, err := LoadXLSX(xp, LoadOptions{Sheet: "filtered"})
	require.NoError(t, err)
	require.Equal(t, coerced.Len(), back.Len())
	assert.Equal(t, "Changping", back.Row(2).Text(ColStation))
	n, ok := ParseNumber(back.Row(3).Text("O3"))
	require.True(t, ok)
	assert.InDelta(t, 90, n, 1e-9)
}

func TestWriteCSVEmptyTable(t *testing.T) {
	p := writeFixture(t, "main_data.csv", sampleRows)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	empty := f.Table.Filter(func(Row) bool { return false })
	require.Equal(t, 0, empty.Len())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(empty, &buf))
	assert.Equal(t, sampleRows[0]+"\n", buf.String())
}

func TestWriteCSVKeepsUnnamedIndexColumn(t *testing.T) {
	lines := []string{
		",year,month,station,O3",
		"0,2021,1,A,5",
		"1,2021,2,A,",
	}
	p := writeFixture(t, "indexed.csv", lines)
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", f.Table.Names()[0])

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(f.Table, &buf))
	assert.Equal(t, strings.Join(lines, "\n")+"\n", buf.String())
}

func TestLoadXLSXSkipsBlankRows(t *testing.T) {
	wb := excelize.NewFile()
	for cell, row := range map[string][]interface{}{
		"A1": {"year", "month", "station", "O3"},
		"A2": {2021, 1, "A", 5},
		"A4": {2021, 2, "B", 7},
	} {
		row := row
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	p := filepath.Join(t.TempDir(), "gaps.xlsx")
	require.NoError(t, wb.SaveAs(p))
	require.NoError(t, wb.Close())

	tbl, err := LoadXLSX(p, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "B", tbl.Row(1).Text(ColStation))

	csvTbl, err := LoadCSV(writeFixture(t, "gaps.csv", []string{"year,month,station,O3", "2021,1,A,5", "", "2021,2,B,7"}), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, csvTbl.Records(), tbl.Records())
}
