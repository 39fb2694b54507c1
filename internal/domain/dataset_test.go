package domain

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset_GlobalRangeAcrossYears(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "5", "B": "15"},
		{"Jahr": "1992", "A": "8", "B": "20"},
	})
	require.NoError(t, err)

	assert.Equal(t, Range{Min: 5, Max: 20}, ds.GlobalRange())
	assert.Equal(t, []int{1991, 1992}, ds.Years())
	assert.Equal(t, []string{"A", "B"}, ds.Columns())
}

func TestLoadDataset_EmptyCellsExcluded(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "5", "B": ""},
		{"Jahr": "1992", "A": "10", "B": "3"},
	})
	require.NoError(t, err)

	assert.Equal(t, Range{Min: 3, Max: 10}, ds.GlobalRange())

	row, err := ds.RowForYear(1991)
	require.NoError(t, err)
	_, ok := row.Value("B")
	assert.False(t, ok, "empty cell must be missing, not zero")
}

func TestLoadDataset_RowWithOnlyEmptyCellsContributesNothing(t *testing.T) {
	ds, err := LoadDataset(Sunshine, []RawRow{
		{"Jahr": "1991", "A": "", "B": "  "},
		{"Jahr": "1992", "A": "1500", "B": "1700"},
	})
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 1500, Max: 1700}, ds.GlobalRange())
}

func TestLoadDataset_NonNumericCellsSkipped(t *testing.T) {
	ds, err := LoadDataset(Precipitation, []RawRow{
		{"Jahr": "1991", "A": "n/a", "B": "700.5"},
		{"Jahr": "1992", "A": "650", "B": "-"},
	})
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 650, Max: 700.5}, ds.GlobalRange())
}

func TestLoadDataset_NegativeValues(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "-2.5", "B": "-0.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, Range{Min: -2.5, Max: -0.5}, ds.GlobalRange())
}

func TestLoadDataset_CommutativeRange(t *testing.T) {
	rows := []RawRow{
		{"Jahr": "1991", "A": "8.1", "B": "9.4", "C": ""},
		{"Jahr": "1992", "A": "8.9", "B": "7.2", "C": "10.3"},
		{"Jahr": "1993", "A": "", "B": "8.0", "C": "6.6"},
		{"Jahr": "1994", "A": "9.9", "B": "", "C": "9.1"},
		{"Jahr": "1995", "A": "7.7", "B": "11.0", "C": "8.8"},
	}
	ref, err := LoadDataset(Temperature, rows)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]RawRow, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		ds, err := LoadDataset(Temperature, shuffled)
		require.NoError(t, err)
		assert.Equal(t, ref.GlobalRange(), ds.GlobalRange())
		assert.Equal(t, ref.Years(), ds.Years())
	}
	assert.Equal(t, Range{Min: 6.6, Max: 11.0}, ref.GlobalRange())
}

func TestLoadDataset_SingleDistinctValue(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "7", "B": "7"},
		{"Jahr": "1992", "A": "7", "B": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 7, Max: 7}, ds.GlobalRange())
}

func TestLoadDataset_MissingYearField(t *testing.T) {
	_, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "5"},
		{"Year": "1992", "A": "6"},
	})
	require.Error(t, err)

	var dfe *DataFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, 2, dfe.Row)
	assert.Contains(t, err.Error(), "Jahr")
}

func TestLoadDataset_InvalidYear(t *testing.T) {
	_, err := LoadDataset(Temperature, []RawRow{{"Jahr": "neunzehn", "A": "5"}})
	var dfe *DataFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Contains(t, dfe.Reason, "invalid year")
}

func TestLoadDataset_DuplicateYear(t *testing.T) {
	_, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1991", "A": "5"},
		{"Jahr": "1991", "A": "6"},
	})
	var dfe *DataFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Contains(t, dfe.Reason, "duplicate year 1991")
}

func TestLoadDataset_NoNumericValues(t *testing.T) {
	_, err := LoadDataset(Temperature, []RawRow{{"Jahr": "1991", "A": ""}})
	var dfe *DataFormatError
	require.ErrorAs(t, err, &dfe)

	_, err = LoadDataset(Temperature, nil)
	require.ErrorAs(t, err, &dfe)
}

func TestRowForYear(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{
		{"Jahr": "1992", "A": "8", "B": "20"},
		{"Jahr": "1991", "A": "5", "B": "15"},
	})
	require.NoError(t, err)

	row, err := ds.RowForYear(1992)
	require.NoError(t, err)
	assert.Equal(t, 1992, row.Year)
	v, ok := row.Value("B")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	_, ok = row.Value("Unknown")
	assert.False(t, ok)

	_, err = ds.RowForYear(2050)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrYearNotFound)
}

func TestDataset_HasColumn(t *testing.T) {
	ds, err := LoadDataset(Temperature, []RawRow{{"Jahr": "1991", "Bayern": "8", "Deutschland": "9"}})
	require.NoError(t, err)

	assert.True(t, ds.HasColumn("Bayern"))
	assert.True(t, ds.HasColumn("Deutschland"))
	assert.False(t, ds.HasColumn("Jahr"))
	assert.False(t, ds.HasColumn("Berlin"))
}

func TestLoadDataset_LoadedAtUsesClock(t *testing.T) {
	frozen := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	ds, err := LoadDataset(Temperature, []RawRow{{"Jahr": "1991", "A": "5"}})
	require.NoError(t, err)
	assert.Equal(t, frozen, ds.LoadedAt)
}
