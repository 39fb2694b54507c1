package csvtable

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

func TestParse_Comma(t *testing.T) {
	data := "Jahr,Bayern,Berlin\n1991,7.9,9.5\n1992,8.6,\n"
	rows, err := Parse("tm", []byte(data))
	require.NoError(t, err)

	want := []domain.RawRow{
		{"Jahr": "1991", "Bayern": "7.9", "Berlin": "9.5"},
		{"Jahr": "1992", "Bayern": "8.6", "Berlin": ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SemicolonAndBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Jahr;Bayern;Berlin;\n1991; 7.9 ;9.5;\n")...)
	rows, err := Parse("tm", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RawRow{"Jahr": "1991", "Bayern": "7.9", "Berlin": "9.5"}, rows[0])
}

func TestParse_ShortRowsPadWithMissing(t *testing.T) {
	rows, err := Parse("tm", []byte("Jahr,A,B\n1991,5\n\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1, "blank lines are skipped")
	assert.Equal(t, "", rows[0]["B"])

	ds, err := domain.LoadDataset(domain.Temperature, rows)
	require.NoError(t, err)
	assert.Equal(t, domain.Range{Min: 5, Max: 5}, ds.GlobalRange())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		reason string
	}{
		{"empty", "", "empty table"},
		{"duplicate column", "Jahr,A,A\n1991,1,2\n", "duplicate column"},
		{"empty header", "Jahr,,B\n1991,1,2\n", "empty header"},
		{"too many fields", "Jahr,A\n1991,1,2\n", "3 fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("tm", []byte(tt.data))
			var dfe *domain.DataFormatError
			require.ErrorAs(t, err, &dfe)
			assert.Equal(t, "tm", dfe.Source)
			assert.Contains(t, dfe.Reason, tt.reason)
		})
	}
}

func TestParse_MissingYearColumnFailsOnLoad(t *testing.T) {
	rows, err := Parse("tm", []byte("Year,A\n1991,1\n"))
	require.NoError(t, err)

	_, err = domain.LoadDataset(domain.Temperature, rows)
	var dfe *domain.DataFormatError
	require.ErrorAs(t, err, &dfe)
}

const dwdExport = `Zeitreihen fuer Gebietsmittel fuer Bundeslaender und Kombinationen von Bundeslaendern (Quelle: DWD)
Jahr;Monat;Brandenburg/Berlin;Brandenburg;Baden-Wuerttemberg;Niedersachsen/Hamburg/Bremen;Thueringen/Sachsen-Anhalt;Thueringen;Deutschland;
1991;year;   9.01;   8.98;   8.52;   8.83;   8.33;   7.91;   8.53;
1992;year;   9.99;   9.96;   9.38;   9.65;   9.46;   9.01;   9.44;
`

func TestParseDWD(t *testing.T) {
	rows, err := ParseDWD("regional_averages_tm_year.txt", []byte(dwdExport))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	want := domain.RawRow{
		"Jahr":              "1991",
		"Berlin":            "9.01",
		"Brandenburg":       "8.98",
		"Baden-Württemberg": "8.52",
		"Hamburg":           "8.83",
		"Bremen":            "8.83",
		"Thüringen":         "7.91",
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, rows[1], "Monat")
	assert.NotContains(t, rows[1], "Deutschland")
	assert.NotContains(t, rows[1], "Thüringen/Sachsen-Anhalt")
}

func TestParseDWD_MissingTitle(t *testing.T) {
	_, err := ParseDWD("x", []byte("only a title"))
	var dfe *domain.DataFormatError
	require.ErrorAs(t, err, &dfe)
}

func TestWrite_RoundTripsThroughParse(t *testing.T) {
	rows, err := ParseDWD("tm", []byte(dwdExport))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("Jahr,Baden-Württemberg,Berlin,")))

	back, err := Parse("tm", buf.Bytes())
	require.NoError(t, err)
	if diff := cmp.Diff(rows, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
