package parser

import (
	"strconv"
	"strings"

	"github.com/yurifrl/finsight/pkg/models"
)

// dedupeHeader renames repeated and blank column names so every key is
// unique: the second "Date" becomes "Date.1", the third "Date.2".
func dedupeHeader(cells []string) []string {
	header := make([]string, len(cells))
	seen := map[string]int{}
	taken := map[string]bool{}
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for taken[name] {
			seen[base]++
			name = base + "." + strconv.Itoa(seen[base])
		}
		taken[name] = true
		header[i] = name
	}
	return header
}

// tableToRows uses the first non-blank record as the header. Blank records
// are dropped and short records are padded with empty cells.
func (p *Parser) tableToRows(records [][]string) models.RowSet {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return models.RowSet{}
	}

	header := dedupeHeader(records[start])
	set := models.RowSet{Header: header}
	for i, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		if len(rec) > len(header) {
			p.logger.Debug("record wider than header, extra cells dropped", "line", start+i+2, "cells", len(rec))
		}
		row := make(models.RawRow, len(header))
		for j, name := range header {
			if j < len(rec) {
				row[name] = strings.TrimSpace(rec[j])
			} else {
				row[name] = ""
			}
		}
		set.Rows = append(set.Rows, row)
	}
	return set
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
