package orangebook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

// The Purple Book data download starts with a title banner row and a column
// header row; data begins on row three.
const purpleBookHeaderRows = 2

// purpleBookColumns maps Biologic fields to zero-based column positions in the
// Purple Book data download. The header labels drift between publications, so
// columns are addressed positionally. When FDA reorders the download, this
// table is the only place to edit.
var purpleBookColumns = struct {
	ApplicantName              int
	BLANumber                  int
	ProperName                 int
	ProprietaryName            int
	BLAType                    int
	Strength                   int
	DosageForm                 int
	Route                      int
	MarketingStatus            int
	LicensureDate              int
	RefProductProperName       int
	RefProductProprietaryName  int
	ExclusivityExpiration      int
	InterchangeableExclusivity int
	OrphanExclusivity          int
}{
	ApplicantName:              0,
	BLANumber:                  1,
	ProperName:                 2,
	ProprietaryName:            3,
	BLAType:                    4,
	Strength:                   5,
	DosageForm:                 6,
	Route:                      7,
	MarketingStatus:            9,
	LicensureDate:              10,
	RefProductProperName:       11,
	RefProductProprietaryName:  12,
	ExclusivityExpiration:      14,
	InterchangeableExclusivity: 15,
	OrphanExclusivity:          16,
}

// ParsePurpleBookWorkbook reads the first sheet of a Purple Book download and
// returns one Biologic per data row. Rows without a BLA number are separators
// and are skipped. The biosimilar and interchangeable flags are derived here,
// once, so every consumer sees the same classification.
func ParsePurpleBookWorkbook(path string) ([]entities.Biologic, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open purple book workbook: %w", err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			logging.Warn("Failed to close purple book workbook", "error", err)
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("purple book workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read purple book sheet %s: %w", sheets[0], err)
	}

	var records []entities.Biologic
	skippedNoKey := 0

	for i, row := range rows {
		if i < purpleBookHeaderRows {
			continue
		}

		blaNumber := cellAt(row, purpleBookColumns.BLANumber)
		if blaNumber == "" {
			skippedNoKey++
			continue
		}

		record := entities.Biologic{
			ApplicantName:              cellAt(row, purpleBookColumns.ApplicantName),
			BLANumber:                  blaNumber,
			ProperName:                 cellAt(row, purpleBookColumns.ProperName),
			ProprietaryName:            cellAt(row, purpleBookColumns.ProprietaryName),
			BLAType:                    cellAt(row, purpleBookColumns.BLAType),
			Strength:                   cellAt(row, purpleBookColumns.Strength),
			DosageForm:                 cellAt(row, purpleBookColumns.DosageForm),
			Route:                      cellAt(row, purpleBookColumns.Route),
			MarketingStatus:            cellAt(row, purpleBookColumns.MarketingStatus),
			LicensureDate:              cellAt(row, purpleBookColumns.LicensureDate),
			RefProductProperName:       cellAt(row, purpleBookColumns.RefProductProperName),
			RefProductProprietaryName:  cellAt(row, purpleBookColumns.RefProductProprietaryName),
			ExclusivityExpiration:      cellAt(row, purpleBookColumns.ExclusivityExpiration),
			InterchangeableExclusivity: cellAt(row, purpleBookColumns.InterchangeableExclusivity),
			OrphanExclusivity:          cellAt(row, purpleBookColumns.OrphanExclusivity),
		}

		record.Biosimilar = isBiosimilar(record)
		record.Interchangeable = record.InterchangeableExclusivity != ""

		records = append(records, record)
	}

	if skippedNoKey > 0 {
		logging.Info("Purple book skip statistics",
			"rows_without_bla_number", skippedNoKey,
			"total_rows", len(rows),
			"records_parsed", len(records))
	}

	return records, nil
}

// cellAt returns the trimmed cell value, or "" when the row is too short.
// GetRows drops trailing empty cells, so short rows are normal.
func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isBiosimilar reproduces the Purple Book classification: a product licensed
// under the 351(k) pathway, or any product naming a reference product, is a
// biosimilar.
func isBiosimilar(b entities.Biologic) bool {
	if b.BLAType == "351(k)" {
		return true
	}
	ref := b.RefProductProperName
	return ref != "" && !strings.EqualFold(ref, "N/A")
}
