// Package export produces XLSX workbooks from scan history, for handing
// records to spreadsheet-based review workflows.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/history"
)

// Service turns history records into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// fieldColumns fixes the exported field order; map iteration would shuffle
// columns between runs.
var fieldColumns = []struct {
	key    string
	header string
}{
	{constants.FieldName, "Name"},
	{constants.FieldIDNumber, "ID Number"},
	{constants.FieldSerialNumber, "Serial Number"},
	{constants.FieldDateOfBirth, "Date of Birth"},
	{constants.FieldSex, "Sex"},
	{constants.FieldDistrictOfBirth, "District of Birth"},
	{constants.FieldPlaceOfIssue, "Place of Issue"},
	{constants.FieldDateOfIssue, "Date of Issue"},
	{constants.FieldExpiryDate, "Expiry Date"},
	{constants.FieldNationality, "Nationality"},
	{constants.FieldAddress, "Address"},
}

// ExportScansXLSX returns an XLSX workbook for the given records.
func (s *Service) ExportScansXLSX(recs []history.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Scans"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Scanned At", "Format", "Quality", "Score"}
	for _, fc := range fieldColumns {
		headers = append(headers, fc.header)
	}
	headers = append(headers, "Image Reference")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.CreatedAt.UTC().Format("2006-01-02 15:04"))
		write(2, rec.Format)
		write(3, rec.Level)
		write(4, fmt.Sprintf("%.2f", rec.Score))
		col := 5
		for _, fc := range fieldColumns {
			write(col, rec.Fields[fc.key])
			col++
		}
		write(col, rec.ImageRef)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 18) // timestamp
	_ = f.SetColWidth(sheet, "B", "C", 14) // format, quality
	_ = f.SetColWidth(sheet, "E", "E", 26) // name
	lastField, _ := excelize.ColumnNumberToName(4 + len(fieldColumns))
	_ = f.SetColWidth(sheet, "F", lastField, 16)
	imageCol, _ := excelize.ColumnNumberToName(5 + len(fieldColumns))
	_ = f.SetColWidth(sheet, imageCol, imageCol, 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
