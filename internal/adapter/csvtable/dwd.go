package csvtable

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

// DWD export columns that never map to a single region.
const (
	dwdMonth    = "Monat"
	dwdNational = "Deutschland"
)

// dwdRenames maps combined DWD regions onto boundary names. The key is the
// header after umlaut normalization.
var dwdRenames = map[string]string{
	"Brandenburg/Berlin": "Berlin",
}

// dwdSplits lists combined regions whose values are copied to each member.
var dwdSplits = map[string][]string{
	"Niedersachsen/Hamburg/Bremen": {"Hamburg", "Bremen"},
}

// dwdDropped lists combined regions whose members appear separately.
var dwdDropped = map[string]bool{
	"Thüringen/Sachsen-Anhalt": true,
}

// ParseDWD reads a raw DWD regional_averages_*_year.txt export: one title
// line, then a ';' separated table with Jahr, Monat, the regions and a
// national average. Headers are normalized to the boundary file names.
func ParseDWD(source string, data []byte) ([]domain.RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	br := bufio.NewReader(bytes.NewReader(data))
	if _, err := br.ReadString('\n'); err != nil {
		return nil, &domain.DataFormatError{Source: source, Reason: "missing title line"}
	}
	return read(source, br, ';', normalizeDWDHeader)
}

func normalizeDWDHeader(header []string) (map[int]bool, []columnCopy) {
	drop := make(map[int]bool)
	var copies []columnCopy
	for i, h := range header {
		h = strings.ReplaceAll(h, "ue", "ü")
		switch {
		case h == dwdMonth, h == dwdNational, dwdDropped[h]:
			drop[i] = true
		case dwdRenames[h] != "":
			h = dwdRenames[h]
		case dwdSplits[h] != nil:
			names := dwdSplits[h]
			h = names[0]
			for _, n := range names[1:] {
				copies = append(copies, columnCopy{from: i, name: n})
			}
		}
		header[i] = h
	}
	return drop, copies
}
