package devapi

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

const exportSheet = "Dashboard Export"

type exportRow struct {
	Label string
	Value any
}

type exportSection struct {
	Title string
	Rows  []exportRow
}

// ExportFilename is the attachment name of the workbook served on day now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("dashboard_export_%s.xlsx", now.Format("20060102"))
}

func exportSections(all []models.Assessment, now time.Time) []exportSection {
	thisMonth, highRisk := 0, 0
	asa := map[int]int{}
	completed, withComplications := 0, 0
	difficult, mallampatiSum := 0, 0

	for _, a := range all {
		if a.ReportDate.Year() == now.Year() && a.ReportDate.Month() == now.Month() {
			thisMonth++
		}
		if a.ASA >= 4 {
			highRisk++
		}
		asa[a.ASA]++
		if a.SurgeryCompleted {
			completed++
			if a.Complications != "" {
				withComplications++
			}
		}
		if a.Mallampati >= 3 || a.PatilAldrete >= 3 {
			difficult++
		}
		mallampatiSum += a.Mallampati
	}

	classes := make([]int, 0, len(asa))
	for c := range asa {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	asaRows := make([]exportRow, 0, len(classes))
	for _, c := range classes {
		asaRows = append(asaRows, exportRow{Label: fmt.Sprintf("ASA %d", c), Value: asa[c]})
	}

	rate := 0.0
	if completed > 0 {
		rate = float64(withComplications) / float64(completed) * 100
	}
	avgMallampati := 0.0
	if len(all) > 0 {
		avgMallampati = float64(mallampatiSum) / float64(len(all))
	}

	return []exportSection{
		{Title: "General", Rows: []exportRow{
			{"Total patients", len(all)},
			{"Surgeries this month", thisMonth},
			{"High risk patients", highRisk},
		}},
		{Title: "ASA statistics", Rows: asaRows},
		{Title: "Complications", Rows: []exportRow{
			{"Total surgeries", completed},
			{"Surgeries with complications", withComplications},
			{"Complication rate", fmt.Sprintf("%.2f%%", rate)},
		}},
		{Title: "Airway metrics", Rows: []exportRow{
			{"Difficult airway", difficult},
			{"Average Mallampati", fmt.Sprintf("%.2f", avgMallampati)},
		}},
	}
}

// WriteWorkbook writes the dashboard export as an xlsx workbook.
func WriteWorkbook(w io.Writer, all []models.Assessment, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2B4570"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(exportSheet, cell, v)
	}

	if err := set(1, 1, "Patient summary"); err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "C1", header); err != nil {
		return err
	}
	if err := set(1, 2, "Exported at"); err != nil {
		return err
	}
	if err := set(2, 2, now.Format("2006-01-02 15:04")); err != nil {
		return err
	}

	row := 4
	for _, sec := range exportSections(all, now) {
		if err := set(1, row, sec.Title); err != nil {
			return err
		}
		start, end := fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row)
		if err := f.MergeCell(exportSheet, start, end); err != nil {
			return err
		}
		if err := f.SetCellStyle(exportSheet, start, end, header); err != nil {
			return err
		}
		row++

		for _, r := range sec.Rows {
			if err := set(1, row, r.Label); err != nil {
				return err
			}
			if err := set(2, row, r.Value); err != nil {
				return err
			}
			row++
		}
		row++
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 35); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "C", 20); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
