// Package export writes dashboard views to files people can take away.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"agri-dashboard/internal/models"
)

const (
	rankingSheet = "Ranking"
	changeSheet  = "Change"
	barColor     = "#638EC6"
)

// RankingSheetName names the ranked table sheet for year.
func RankingSheetName(year int) string {
	return rankingSheet + " " + strconv.Itoa(year)
}

// Workbook is the ranked table for one selection, plus the optional change table.
type Workbook struct {
	Selection models.Selection
	YearMax   float64
	Ranked    []models.RankedRow
	Changes   []models.ChangeRow
	// ChangeMetric names the column compared in Changes.
	ChangeMetric string
}

// Build lays the workbook out. The caller owns the returned file and must close it.
func (wb Workbook) Build() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := RankingSheetName(wb.Selection.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2171B5"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating number style: %w", err)
	}

	if err := wb.writeRanking(f, sheet, headerStyle, numberStyle); err != nil {
		f.Close()
		return nil, err
	}
	if len(wb.Changes) > 0 {
		if err := wb.writeChanges(f, headerStyle, numberStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func (wb Workbook) Write(w io.Writer) error {
	f, err := wb.Build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveAs builds the workbook and writes it to path.
func (wb Workbook) SaveAs(path string) error {
	f, err := wb.Build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving workbook %s: %w", path, err)
	}
	return nil
}

func (wb Workbook) writeRanking(f *excelize.File, sheet string, headerStyle, numberStyle int) error {
	header := []interface{}{"Rank", "Area", "Country code", "Year", models.ColPrimary}
	withMetric := wb.Selection.Metric != "" && wb.Selection.Metric != models.ColPrimary
	if withMetric {
		header = append(header, wb.Selection.Metric)
	}
	if err := writeHeader(f, sheet, header, headerStyle); err != nil {
		return err
	}

	for i, r := range wb.Ranked {
		row := []interface{}{r.Rank, r.Area, r.CountryCode, r.Year, cellNumber(r.Value)}
		if withMetric {
			row = append(row, cellNumber(r.Metric))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "F", 18); err != nil {
		return err
	}
	if len(wb.Ranked) == 0 {
		return nil
	}

	last := len(wb.Ranked) + 1
	valueRange := fmt.Sprintf("E2:E%d", last)
	if err := f.SetCellStyle(sheet, "E2", fmt.Sprintf("E%d", last), numberStyle); err != nil {
		return err
	}
	if withMetric {
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", last), numberStyle); err != nil {
			return err
		}
	}
	// Bars run from zero to the year's maximum.
	err := f.SetConditionalFormat(sheet, valueRange, []excelize.ConditionalFormatOptions{{
		Type:     "data_bar",
		Criteria: "=",
		MinType:  "num",
		MinValue: "0",
		MaxType:  "num",
		MaxValue: strconv.FormatFloat(wb.YearMax, 'f', -1, 64),
		BarColor: barColor,
	}})
	if err != nil {
		return fmt.Errorf("error adding data bar: %w", err)
	}
	return nil
}

func (wb Workbook) writeChanges(f *excelize.File, headerStyle, numberStyle int) error {
	if _, err := f.NewSheet(changeSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	header := []interface{}{"Area", "Country code", "Metric", "Current", "Previous", "Previous year", "Change"}
	if err := writeHeader(f, changeSheet, header, headerStyle); err != nil {
		return err
	}
	for i, c := range wb.Changes {
		row := []interface{}{c.Area, c.CountryCode, wb.ChangeMetric, cellNumber(c.Current), nil, nil, nil}
		if c.HasPrevious {
			row[4], row[5], row[6] = cellNumber(c.Previous), c.PreviousYear, cellNumber(c.Delta)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(changeSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing change row %d: %w", i+2, err)
		}
	}
	last := len(wb.Changes) + 1
	if err := f.SetCellStyle(changeSheet, "D2", fmt.Sprintf("E%d", last), numberStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(changeSheet, "G2", fmt.Sprintf("G%d", last), numberStyle); err != nil {
		return err
	}
	return f.SetColWidth(changeSheet, "A", "A", 28)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellNumber leaves missing values as empty cells.
func cellNumber(n models.Number) interface{} {
	if n.IsMissing() {
		return nil
	}
	return float64(n)
}
