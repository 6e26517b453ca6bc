// Package export writes analysis reports to external formats.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/logsift/logsift/internal/model"
	sifterr "github.com/logsift/logsift/pkg/errors"
)

// WriteXLSX writes a log analysis report as a multi-sheet workbook.
// Sheets: Summary, Patterns, Hourly, Bursts.
func WriteXLSX(report *model.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, report); err != nil {
		return sifterr.Wrap(err, sifterr.CodeExportErr, "failed to write summary sheet")
	}
	if err := writePatternsSheet(f, report); err != nil {
		return sifterr.Wrap(err, sifterr.CodeExportErr, "failed to write patterns sheet")
	}
	if err := writeHourlySheet(f, report); err != nil {
		return sifterr.Wrap(err, sifterr.CodeExportErr, "failed to write hourly sheet")
	}
	if err := writeBurstsSheet(f, report); err != nil {
		return sifterr.Wrap(err, sifterr.CodeExportErr, "failed to write bursts sheet")
	}

	if err := f.SaveAs(path); err != nil {
		return sifterr.Wrap(err, sifterr.CodeWriteFailed, "failed to save workbook").
			WithContext("path", path)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *model.Report) error {
	const sheet = "Summary"
	// The default sheet becomes Summary.
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total logs", report.TotalLogs},
		{"Error logs", report.ErrorLogs},
		{"Error percentage", report.ErrorPercentage},
		{"Skipped lines", report.SkippedLines},
	}

	levels := make([]string, 0, len(report.LevelDistribution))
	for level := range report.LevelDistribution {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		rows = append(rows, []interface{}{"Level " + level, report.LevelDistribution[level]})
	}

	if report.Warning != "" {
		rows = append(rows, []interface{}{"Warning", report.Warning})
	}
	for i, rec := range report.Recommendations {
		rows = append(rows, []interface{}{fmt.Sprintf("Recommendation %d", i+1), rec})
	}

	return writeRows(f, sheet, rows)
}

func writePatternsSheet(f *excelize.File, report *model.Report) error {
	const sheet = "Patterns"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Pattern", "Count", "Percentage", "Example"},
	}
	for _, pat := range report.TopErrorTypes {
		rows = append(rows, []interface{}{pat.Pattern, pat.Count, pat.Percentage, pat.Example})
	}
	return writeRows(f, sheet, rows)
}

func writeHourlySheet(f *excelize.File, report *model.Report) error {
	const sheet = "Hourly"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Hour", "Errors"},
	}
	hours := make([]int, 0, len(report.HourlyErrorDistribution))
	for hour := range report.HourlyErrorDistribution {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	for _, hour := range hours {
		rows = append(rows, []interface{}{hour, report.HourlyErrorDistribution[hour]})
	}
	return writeRows(f, sheet, rows)
}

func writeBurstsSheet(f *excelize.File, report *model.Report) error {
	const sheet = "Bursts"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Start", "End", "Duration (min)", "Errors", "Samples"},
	}
	for _, burst := range report.ErrorBursts {
		samples := ""
		for i, msg := range burst.SampleMessages {
			if i > 0 {
				samples += "\n"
			}
			samples += msg
		}
		rows = append(rows, []interface{}{
			burst.StartTime.Format("2006-01-02 15:04:05"),
			burst.EndTime.Format("2006-01-02 15:04:05"),
			burst.DurationMinutes,
			burst.ErrorCount,
			samples,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
