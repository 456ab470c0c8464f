package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/aqdash/internal/dataset"
)

func numbers(vals ...any) []dataset.Number {
	out := make([]dataset.Number, len(vals))
	for i, v := range vals {
		if f, ok := v.(float64); ok {
			out[i] = dataset.Num(f)
		}
	}
	return out
}

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(
		dataset.NewIntColumn("year", []int{2013, 2013, 2014, 2015, 2015, 2015}),
		dataset.NewIntColumn("month", []int{12, 1, 1, 3, 12, 3}),
		dataset.NewTextColumn("station", []string{"A", "A", "B", "A", "B", "B"}),
		dataset.NewNumberColumn("O3", numbers(10.0, 20.0, nil, 10.0, 20.0, 30.0)),
	)
	require.NoError(t, err)
	return tbl
}

func TestComputeMedian(t *testing.T) {
	assert.Equal(t, dataset.Num(20), Compute(Median, []float64{30, 10, 20}))
	assert.Equal(t, dataset.Num(15), Compute(Median, []float64{20, 10}))
	assert.False(t, Compute(Median, nil).Valid)
	assert.Equal(t, dataset.Num(0), Compute(Count, nil))
	assert.False(t, Compute(Max, nil).Valid)
	assert.Equal(t, dataset.Num(60), Compute(Max, []float64{50, 60}))
	assert.Equal(t, dataset.Num(50), Compute(Min, []float64{50, 60}))
}

func TestComputeDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Compute(Median, in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestGroupByYearDescending(t *testing.T) {
	res, err := GroupBy(sampleTable(t), Spec{By: "year", Value: "O3", Stats: []Stat{Median, Count}, Order: OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"2015", "2014", "2013"}, res.Keys())

	m, ok := res.Get("2015", Median)
	require.True(t, ok)
	assert.Equal(t, dataset.Num(20), m)

	m, _ = res.Get("2013", Median)
	assert.Equal(t, dataset.Num(15), m)

	m, _ = res.Get("2014", Median)
	assert.False(t, m.Valid, "all-missing group reports no data")
	c, _ := res.Get("2014", Count)
	assert.Equal(t, dataset.Num(0), c)
	assert.Equal(t, 1, res.Groups[1].Size)
}

func TestGroupByMonthCalendarOrder(t *testing.T) {
	norm, err := dataset.NormalizeMonths(sampleTable(t), dataset.MonthReject)
	require.NoError(t, err)
	res, err := GroupBy(norm, Spec{By: "month", Value: "O3", Stats: []Stat{Median, Count}, Order: OrderCalendar})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan", "Mar", "Dec"}, res.Keys(), "Dec sorts after Jan")

	recs := res.Records(nil)
	require.Len(t, recs, 3)
	assert.Equal(t, "Jan", recs[0]["month"])
	assert.Equal(t, 20.0, recs[0]["median"])
	assert.Equal(t, 1, recs[0]["count"])
	assert.Equal(t, 20.0, recs[1]["median"])
	assert.Equal(t, 15.0, recs[2]["median"])
}

func TestGroupByTextKeysAndRecordsOverride(t *testing.T) {
	res, err := GroupBy(sampleTable(t), Spec{By: "station", Value: "O3", Stats: []Stat{Max}, Order: OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Keys())

	recs := res.Records(map[Stat]string{Max: "O3"})
	assert.Equal(t, map[string]any{"station": "A", "O3": 20.0}, recs[0])
	assert.Equal(t, map[string]any{"station": "B", "O3": 30.0}, recs[1])
}

func TestGroupByRecordsYearAsInt(t *testing.T) {
	res, err := GroupBy(sampleTable(t), Spec{By: "year", Value: "O3", Order: OrderDesc})
	require.NoError(t, err)
	recs := res.Records(map[Stat]string{Median: "O3"})
	assert.Equal(t, 2015, recs[0]["year"])
	assert.Nil(t, recs[1]["O3"])
}

func TestGroupByErrors(t *testing.T) {
	tbl := sampleTable(t)
	_, err := GroupBy(tbl, Spec{By: "nope", Value: "O3"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
	_, err = GroupBy(tbl, Spec{By: "year", Value: "station"})
	assert.Error(t, err)
}

func TestPearson(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewIntColumn("year", []int{2021, 2021}),
		dataset.NewTextColumn("station", []string{"A", "A"}),
		dataset.NewNumberColumn("O3", numbers(50.0, 60.0)),
		dataset.NewNumberColumn("TEMP", numbers(25.0, 30.0)),
	)
	require.NoError(t, err)
	r, err := Pearson(tbl, "TEMP", "O3")
	require.NoError(t, err)
	require.True(t, r.Valid)
	assert.InDelta(t, 1.0, r.Value, 1e-12)
}

func TestPearsonSkipsMissingAndDegenerate(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewNumberColumn("x", numbers(1.0, 2.0, nil, 4.0)),
		dataset.NewNumberColumn("y", numbers(2.0, 4.0, 100.0, 8.0)),
		dataset.NewNumberColumn("flat", numbers(5.0, 5.0, 5.0, 5.0)),
	)
	require.NoError(t, err)

	r, err := Pearson(tbl, "x", "y")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Value, 1e-12)

	r, err = Pearson(tbl, "x", "flat")
	require.NoError(t, err)
	assert.False(t, r.Valid)

	_, err = Pearson(tbl, "x", "missing")
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestExtremes(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewNumberColumn("O3", numbers(50.0, 60.0)),
		dataset.NewNumberColumn("CO", numbers(nil, nil)),
	)
	require.NoError(t, err)
	ex, err := Extremes(tbl, []string{"O3", "CO"})
	require.NoError(t, err)
	require.Len(t, ex, 2)
	assert.Equal(t, Extreme{Column: "O3", Max: dataset.Num(60), Min: dataset.Num(50)}, ex[0])
	assert.False(t, ex[1].Max.Valid)
	assert.False(t, ex[1].Min.Valid)
}

func TestParseStat(t *testing.T) {
	s, err := ParseStat("MAX")
	require.NoError(t, err)
	assert.Equal(t, Max, s)
	_, err = ParseStat("mean")
	assert.Error(t, err)
}

func TestPearsonAndExtremesRequireNumericColumns(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("O3", []string{"50", "60"}),
		dataset.NewNumberColumn("TEMP", numbers(25.0, 30.0)),
	)
	require.NoError(t, err)

	_, err = Pearson(tbl, "TEMP", "O3")
	assert.ErrorContains(t, err, "coerce it first")
	_, err = Extremes(tbl, []string{"O3"})
	assert.ErrorContains(t, err, "coerce it first")

	_, err = Extremes(tbl, []string{"CO"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}
