package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/finsight/pkg/models"
)

type FileType string

const (
	CSV  FileType = "csv"
	XLS  FileType = "xls"
	XLSX FileType = "xlsx"
	JSON FileType = "json"
)

var (
	ErrUnknownFileType = errors.New("unknown file type")
	ErrEmpty           = errors.New("no rows found")
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes decodes a ledger file into raw rows keyed by header.
func (p *Parser) ProcessBytes(data []byte, filename string) (models.RowSet, error) {
	fileType := detectType(filename, data)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var (
		set models.RowSet
		err error
	)
	switch fileType {
	case CSV:
		set, err = p.ParseCSV(data)
	case XLS:
		set, err = p.ParseXLS(data)
	case XLSX:
		set, err = p.ParseXLSX(data)
	case JSON:
		set, err = p.ParseJSON(data)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return models.RowSet{}, fmt.Errorf("%s: %w", filename, ErrUnknownFileType)
	}
	if err != nil {
		return models.RowSet{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if len(set.Rows) == 0 {
		return models.RowSet{}, fmt.Errorf("parse %s: %w", filename, ErrEmpty)
	}
	p.logger.Info("parsed ledger file", "filename", filename, "type", fileType, "rows", len(set.Rows))
	return set, nil
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

func detectType(filename string, data []byte) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return CSV
	case ".xls":
		return XLS
	case ".xlsx":
		return XLSX
	case ".json":
		return JSON
	}

	switch head := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf"); {
	case bytes.HasPrefix(data, zipMagic):
		return XLSX
	case bytes.HasPrefix(data, oleMagic):
		return XLS
	case len(head) > 0 && (head[0] == '[' || head[0] == '{'):
		return JSON
	}
	return ""
}
