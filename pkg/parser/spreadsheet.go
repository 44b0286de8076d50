package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"github.com/yurifrl/finsight/pkg/models"
)

const maxXLSRows = 100000

// ParseXLS reads a legacy Excel workbook. Cells of every sheet are read in
// order, so a multi-sheet workbook is treated as one table.
func (p *Parser) ParseXLS(data []byte) (models.RowSet, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return models.RowSet{}, fmt.Errorf("error creating workbook: %w", err)
	}
	if workbook == nil {
		return models.RowSet{}, fmt.Errorf("no workbook stream found")
	}

	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return models.RowSet{}, fmt.Errorf("no data found in sheet")
	}
	p.logger.Debug("parsing xls", "total_records", len(rows))
	return p.tableToRows(rows), nil
}

// ParseXLSX reads the first sheet of an Office Open XML workbook.
func (p *Parser) ParseXLSX(data []byte) (models.RowSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return models.RowSet{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return models.RowSet{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return models.RowSet{}, fmt.Errorf("unable to read sheet %q: %w", sheets[0], err)
	}
	p.logger.Debug("parsing xlsx", "sheet", sheets[0], "total_records", len(rows))
	return p.tableToRows(rows), nil
}
