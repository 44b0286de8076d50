package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yurifrl/finsight/pkg/models"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV reads a delimited export. The delimiter is sniffed from the
// header line; semicolons win over commas, as bank exports with decimal
// commas use them.
func (p *Parser) ParseCSV(data []byte) (models.RowSet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return models.RowSet{}, fmt.Errorf("failed to read csv: %w", err)
	}
	p.logger.Debug("parsing csv", "total_records", len(records), "delimiter", string(r.Comma))
	return p.tableToRows(records), nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, count := ',', bytes.Count(line, []byte(","))
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}
