package transfer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

const (
	RiskSheet = "Risk Register"

	// XLSXContentType is the media type of exported workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RiskExportColumns is the header row of an exported risk register.
var RiskExportColumns = []string{
	"Risk ID", "Title", "Description", "Category", "Status", "Likelihood", "Impact",
	"Inherent Risk Score", "Residual Risk Score", "Risk Level", "Owner",
	"Threat Source", "Vulnerability", "Mitigation Strategy", "Created At", "Updated At",
}

// ExportFilename is risk_register_YYYYMMDD.xlsx for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("risk_register_%s.xlsx", now.Format("20060102"))
}

// RiskRow is one exported row, in RiskExportColumns order.
func RiskRow(r models.Risk) []any {
	var level any
	if lvl := scoring.LevelOf(r); lvl != "" {
		level = string(lvl)
	}
	return []any{
		r.Code, r.Title, r.Description, string(r.Category), string(r.Status),
		ordinal(int(r.Likelihood)), ordinal(int(r.Impact)),
		floatOrNil(r.InherentRiskScore), floatOrNil(r.ResidualRiskScore), level,
		r.Owner, r.ThreatSource, r.Vulnerability, r.MitigationStrategy,
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
	}
}

func ordinal(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ExportRisks renders the risks as a single-sheet workbook.
func ExportRisks(risks []models.Risk) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), RiskSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(RiskExportColumns))
	for i, c := range RiskExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(RiskSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range risks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := RiskRow(r)
		if err := f.SetSheetRow(RiskSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}

// ImportRow is one data row of an uploaded risk workbook, keyed by header.
type ImportRow struct {
	// Row is the 1-based spreadsheet row; the header is row 1.
	Row    int
	values map[string]string
}

// Get returns the trimmed cell under header, or "" when absent.
func (r ImportRow) Get(header string) string {
	return r.values[strings.ToLower(header)]
}

// ReadRiskWorkbook reads the first sheet of an uploaded workbook. Headers are
// matched case-insensitively; blank rows are skipped.
func ReadRiskWorkbook(src io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]ImportRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for j, cell := range cells {
			if j >= len(header) || header[j] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				blank = false
			}
			values[header[j]] = v
		}
		if blank {
			continue
		}
		out = append(out, ImportRow{Row: i + 2, values: values})
	}
	return out, nil
}

// NewImportRow builds a row by hand; used by callers that do not read a workbook.
func NewImportRow(row int, values map[string]string) ImportRow {
	lower := make(map[string]string, len(values))
	for k, v := range values {
		lower[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	return ImportRow{Row: row, values: lower}
}
