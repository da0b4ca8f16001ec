package table

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

const bme = `2024-12-19 11:25:29,!a1b2ca0c,21.5,40.1,1012,,14
2024-12-19 11:26:29,!a1b24004,21.7,39.9,1011.5,5.5,13
2024-12-19 11:27:29,!a1b2ca0c,21.9,nan,1011,,14
bogus,!a1b24004,22.0,39.0,1011,6,12
`

var bmeHeaders = []string{"datetime", "from_node", "temperature", "relativeHumidity", "barometricPressure", "rxSnr", "hopLimit"}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(bme), "bme688", ReadOptions{
		Headers:    bmeHeaders,
		StringCols: []string{NodeCol},
	})
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, bmeHeaders, tbl.Names())

	times := tbl.Times(TimeCol)
	require.Equal(t, time.Date(2024, 12, 19, 11, 25, 29, 0, time.UTC), times[0])
	require.True(t, times[3].IsZero(), "unparseable time must be missing")

	hum := tbl.Floats("relativeHumidity")
	require.True(t, math.IsNaN(hum[2]))
	snr := tbl.Floats("rxSnr")
	require.True(t, math.IsNaN(snr[0]))
	require.Equal(t, 5.5, snr[1])

	require.Equal(t, []string{"!a1b2ca0c", "!a1b24004", "!a1b2ca0c", "!a1b24004"}, tbl.Strings(NodeCol))
}

func TestReadCSVShortAndLongRows(t *testing.T) {
	short := "2024-12-19 11:25:29,!a1b2ca0c,21.5\n"
	tbl, err := ReadCSV(strings.NewReader(short), "x", ReadOptions{
		Headers:    []string{"datetime", "from_node", "a", "b"},
		StringCols: []string{NodeCol},
	})
	require.NoError(t, err)
	require.True(t, math.IsNaN(tbl.Floats("b")[0]))

	long := "2024-12-19 11:25:29,!a1b2ca0c,21.5,1,2\n"
	_, err = ReadCSV(strings.NewReader(long), "x", ReadOptions{
		Headers: []string{"datetime", "from_node", "a"},
	})
	require.Error(t, err)
}

func TestReadCSVHeaderRow(t *testing.T) {
	data := "time,stationID,temp\n2025-01-07 17:31:26,42,3.5\n"
	tbl, err := ReadCSV(strings.NewReader(data), "n5", ReadOptions{
		HasHeader:  true,
		StringCols: []string{"stationID"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"time", "stationID", "temp"}, tbl.Names())
	require.Equal(t, []string{"42"}, tbl.Strings("stationID"))
	require.NoError(t, tbl.Rename("time", TimeCol))
	require.True(t, tbl.Has(TimeCol))
	require.False(t, tbl.Has("time"))
}

func TestNonNumericColumnIsText(t *testing.T) {
	data := "2024-12-19 11:25:29,abc\n2024-12-19 11:25:30,1\n"
	tbl, err := ReadCSV(strings.NewReader(data), "x", ReadOptions{
		Headers: []string{"datetime", "v"},
	})
	require.NoError(t, err)
	k, err := tbl.Kind("v")
	require.NoError(t, err)
	require.Equal(t, String, k)
}

func TestParseTime(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{"2024-12-19 11:25:29", time.Date(2024, 12, 19, 11, 25, 29, 0, time.UTC)},
		{"2024-12-19T11:25:29", time.Date(2024, 12, 19, 11, 25, 29, 0, time.UTC)},
		{"2024-12-19 11:25:29.250", time.Date(2024, 12, 19, 11, 25, 29, 250e6, time.UTC)},
		{"2024-12-19T12:25:29+01:00", time.Date(2024, 12, 19, 11, 25, 29, 0, time.UTC)},
		{"2024/12/19 11:25:29", time.Date(2024, 12, 19, 11, 25, 29, 0, time.UTC)},
	} {
		got, err := ParseTime(tc.in)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	_, err := ParseTime("")
	if err == nil {
		t.Errorf("expected an error for an empty time")
	}
}

func TestShortName(t *testing.T) {
	got := ShortNames([]string{"!a1b2ca0c", "0ff4", "ab", ""})
	want := []string{"ca0c", "0ff4", "ab", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("short names mismatch (-want +got):\n%s", diff)
	}
}

func TestAddShortName(t *testing.T) {
	tbl := New("x")
	require.NoError(t, tbl.AddTime(TimeCol, []time.Time{{}, {}}))
	err := AddShortName(tbl)
	require.True(t, errors.Is(err, ErrNoColumn))

	require.NoError(t, tbl.AddString(NodeCol, []string{"!1234abcd", "!5678ef01"}))
	require.NoError(t, AddShortName(tbl))
	require.Equal(t, []string{"abcd", "ef01"}, tbl.Strings(ShortNameCol))
}

func TestSortGroupConcat(t *testing.T) {
	a := New("a")
	require.NoError(t, a.AddTime(TimeCol, []time.Time{ts("2024-12-19 12:00:00"), {}, ts("2024-12-19 10:00:00")}))
	require.NoError(t, a.AddString(ShortNameCol, []string{"ca0c", "4004", "4004"}))
	require.NoError(t, a.AddFloat("v", []float64{1, 2, 3}))

	b := New("b")
	require.NoError(t, b.AddTime(TimeCol, []time.Time{ts("2024-12-19 11:00:00")}))
	require.NoError(t, b.AddString(ShortNameCol, []string{"ca0c"}))
	require.NoError(t, b.AddFloat("v", []float64{4}))

	c, err := Concat("c", a, b)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	s, err := c.SortByTime(TimeCol)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 4, 1, 2}, s.Floats("v"))

	groups, err := s.GroupBy(ShortNameCol)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "4004", groups[0].Key)
	require.Equal(t, []float64{3, 2}, groups[0].Rows.Floats("v"))
	require.Equal(t, "ca0c", groups[1].Key)
	require.Equal(t, []float64{4, 1}, groups[1].Rows.Floats("v"))

	dropped, n, err := s.DropNaT(TimeCol)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 3, dropped.Len())

	bad := New("bad")
	require.NoError(t, bad.AddFloat("v", []float64{1}))
	_, err = Concat("c", a, bad)
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	tbl := New("x")
	require.NoError(t, tbl.AddTime(TimeCol, []time.Time{{}}))
	require.NoError(t, tbl.AddFloat("a", []float64{1}))
	require.NoError(t, tbl.AddFloat("b", []float64{2}))

	sel, err := tbl.Select("b", TimeCol)
	require.NoError(t, err)
	require.Equal(t, []string{"b", TimeCol}, sel.Names())

	sel.Floats("b")[0] = 42
	require.Equal(t, 2.0, tbl.Floats("b")[0], "select must copy")

	_, err = tbl.Select("nope")
	require.True(t, errors.Is(err, ErrNoColumn))

	require.Error(t, tbl.AddFloat("c", []float64{1, 2}))
}

func TestTrim(t *testing.T) {
	tbl := New("x")
	require.NoError(t, tbl.AddTime(TimeCol, []time.Time{
		ts("2024-12-19 09:59:59"),
		ts("2024-12-19 10:00:00"),
		{},
		ts("2024-12-19 11:00:00"),
		ts("2024-12-19 11:00:01"),
	}))
	require.NoError(t, tbl.AddFloat("v", []float64{1, 2, 3, 4, 5}))

	set := NewSet()
	set.Add("s", tbl, []string{"v"})

	got, err := Trim(set, ts("2024-12-19 10:00:00"), ts("2024-12-19 11:00:00"))
	require.NoError(t, err)
	require.Equal(t, []string{"s"}, got.Names())
	require.Equal(t, []float64{2, 4}, got.Table("s").Floats("v"))
	require.Equal(t, []string{"v"}, got.Vars("s"))
}

func TestRangeDir(t *testing.T) {
	root := t.TempDir()

	dir, err := RangeDir(root, time.Time{}, ts("2024-12-19 10:00:00"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "full_timeseries"), dir)

	dir, err = RangeDir(root, ts("2024-12-19 10:00:00"), ts("2024-12-20 08:30:00"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "2024-12-19_10-00-00_2024-12-20_08-30-00"), dir)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestWriteCSV(t *testing.T) {
	tbl := New("x")
	require.NoError(t, tbl.AddTime(TimeCol, []time.Time{ts("2024-12-19 10:00:00"), {}}))
	require.NoError(t, tbl.AddString(NodeCol, []string{"!ca0c", "!4004"}))
	require.NoError(t, tbl.AddFloat("v", []float64{1.5, math.NaN()}))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	want := "datetime,from_node,v\n2024-12-19 10:00:00,!ca0c,1.5\n,!4004,\n"
	require.Equal(t, want, buf.String())
}

func TestSpan(t *testing.T) {
	tbl := New("x")
	require.NoError(t, tbl.AddTime(TimeCol, []time.Time{
		ts("2024-12-19 12:00:00"), {}, ts("2024-12-19 10:00:00"),
	}))
	beg, end, ok := tbl.Span(TimeCol)
	require.True(t, ok)
	require.Equal(t, ts("2024-12-19 10:00:00"), beg)
	require.Equal(t, ts("2024-12-19 12:00:00"), end)
}
