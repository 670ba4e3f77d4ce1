package handoff

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"sosconnect-go/internal/types"
)

func lyonContent() *types.GeneratedContent {
	return &types.GeneratedContent{
		SosReport: &types.SosReport{
			Context:         "Building fire",
			LocationDetails: "Lyon, France",
			DangerType:      "Fire",
			UserNeeds:       []string{"Firefighters", "Ambulance"},
		},
		FullTranslation: "Il y a un incendie.",
		FirstAidSteps: []types.FirstAidStep{
			{Instruction: "Stay low", Image: "data:image/png;base64,aW1n"},
			{Instruction: "Cover your mouth", Image: ""},
		},
	}
}

// TestEmergencySMS checks the SMS body contract line by line.
func TestEmergencySMS(t *testing.T) {
	body := EmergencySMS(*lyonContent().SosReport, "Il y a un incendie.")

	for _, want := range []string{
		"🔴 EMERGENCY REPORT 🔴",
		"Location: Lyon, France",
		"Danger: Fire",
		"Context: Building fire",
		"Needs: Firefighters, Ambulance",
		"--- Translation for Authorities ---",
		"Il y a un incendie.",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("sms body missing %q:\n%s", want, body)
		}
	}
}

// TestNewsEmail checks subject, fixed bcc list, and body sections.
func TestNewsEmail(t *testing.T) {
	loc := types.LocationInfo{City: "Lyon", Country: "France", LocalLanguage: "French"}
	news := types.NewsContent{
		Summary: "A flood displaced families.",
		Segments: []types.TimedSegment{
			{TranslatedText: "The river rose overnight.", StartTime: 0, EndTime: 2},
			{TranslatedText: "Families fled to the school.", StartTime: 2, EndTime: 5},
		},
	}

	draft := NewsEmail(loc, news, "mp4")
	if draft.Subject != "Translated local story – urgent community report" {
		t.Fatalf("subject = %q", draft.Subject)
	}
	if len(draft.Bcc) != 5 || draft.Bcc[0] != "media@redcross.org" {
		t.Fatalf("bcc = %v", draft.Bcc)
	}
	for _, want := range []string{
		"original_story_video.mp4",
		"translated_english_audio.mp3",
		"Location: Lyon, France",
		"Local Language Detected: French",
		"A flood displaced families.",
		"The river rose overnight.\nFamilies fled to the school.",
	} {
		if !strings.Contains(draft.Body, want) {
			t.Fatalf("email body missing %q", want)
		}
	}
}

// TestWriteReportWorkbook round-trips the dispatch record through excelize.
func TestWriteReportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	loc := types.LocationInfo{City: "Lyon", Country: "France", LocalLanguage: "French"}
	if err := WriteReportWorkbook(path, lyonContent(), loc); err != nil {
		t.Fatalf("WriteReportWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	danger, err := f.GetCellValue("Report", "B6")
	if err != nil || danger != "Fire" {
		t.Fatalf("Report!B6 = %q err=%v, want Fire", danger, err)
	}
	instruction, err := f.GetCellValue("First Aid", "B2")
	if err != nil || instruction != "Stay low" {
		t.Fatalf("First Aid!B2 = %q err=%v, want Stay low", instruction, err)
	}
}

// TestWriteNewsWorkbook round-trips the transcript sheet.
func TestWriteNewsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.xlsx")
	news := &types.NewsContent{
		Summary:     "A flood displaced families.",
		DubbedAudio: []byte("mp3"),
		Segments: []types.TimedSegment{
			{OriginalText: "orig", TranslatedText: "english", StartTime: 0, EndTime: 2},
		},
	}
	loc := types.LocationInfo{City: "Lyon", Country: "France", LocalLanguage: "French"}
	if err := WriteNewsWorkbook(path, news, loc); err != nil {
		t.Fatalf("WriteNewsWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	english, err := f.GetCellValue("Transcript", "D2")
	if err != nil || english != "english" {
		t.Fatalf("Transcript!D2 = %q err=%v, want english", english, err)
	}
}
