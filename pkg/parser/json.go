package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yurifrl/finsight/pkg/models"
)

// ParseJSON accepts an array of objects or an object with a "rows" array.
func (p *Parser) ParseJSON(data []byte) (models.RowSet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		var wrapped struct {
			Rows []map[string]any `json:"rows"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return models.RowSet{}, fmt.Errorf("failed to decode json: %w", err)
		}
		objects = wrapped.Rows
	}

	rows := make([]models.RawRow, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, models.RowFromAny(o))
	}
	p.logger.Debug("parsing json", "total_records", len(rows))
	return models.RowSet{Header: models.HeaderOf(rows), Rows: rows}, nil
}
