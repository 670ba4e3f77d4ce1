package handoff

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"sosconnect-go/internal/types"
)

// WriteReportWorkbook writes the dispatch record of an emergency run: a
// "Report" sheet with the structured fields and translation, plus one row
// per first-aid instruction.
func WriteReportWorkbook(path string, content *types.GeneratedContent, loc types.LocationInfo) error {
	if content == nil || content.SosReport == nil {
		return &types.MissingInputError{What: "generated content for export"}
	}
	report := content.SosReport

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Field", "Value"},
		{"City", loc.City},
		{"Country", loc.Country},
		{"Local Language", loc.LocalLanguage},
		{"Location Details", report.LocationDetails},
		{"Danger Type", report.DangerType},
		{"Context", report.Context},
		{"User Needs", strings.Join(report.UserNeeds, ", ")},
		{"Translation", content.FullTranslation},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(content.FirstAidSteps) > 0 {
		aid := "First Aid"
		if _, err := f.NewSheet(aid); err != nil {
			return err
		}
		header := []any{"Step", "Instruction", "Has Image"}
		if err := f.SetSheetRow(aid, "A1", &header); err != nil {
			return err
		}
		for i, step := range content.FirstAidSteps {
			row := []any{i + 1, step.Instruction, step.Image != ""}
			if err := f.SetSheetRow(aid, fmt.Sprintf("A%d", i+2), &row); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

// WriteNewsWorkbook writes the dispatch record of a news run: a "Summary"
// sheet and a "Transcript" sheet with one row per timed segment.
func WriteNewsWorkbook(path string, news *types.NewsContent, loc types.LocationInfo) error {
	if news == nil {
		return &types.MissingInputError{What: "news content for export"}
	}

	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	for i, row := range [][]any{
		{"Location", fmt.Sprintf("%s, %s", loc.City, loc.Country)},
		{"Local Language", loc.LocalLanguage},
		{"Summary", news.Summary},
		{"Dubbed Audio Bytes", len(news.DubbedAudio)},
	} {
		if err := f.SetSheetRow(summary, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	transcript := "Transcript"
	if _, err := f.NewSheet(transcript); err != nil {
		return err
	}
	header := []any{"Start", "End", "Original", "English"}
	if err := f.SetSheetRow(transcript, "A1", &header); err != nil {
		return err
	}
	for i, s := range news.Segments {
		row := []any{s.StartTime, s.EndTime, s.OriginalText, s.TranslatedText}
		if err := f.SetSheetRow(transcript, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
