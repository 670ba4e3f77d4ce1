// Package handoff formats a completed run for the external send step: an
// SMS body for the emergency flow, an e-mail draft for the news flow, and a
// spreadsheet dispatch record. Pure string/artifact contracts; actual
// delivery is somebody else's problem.
package handoff

import (
	"fmt"
	"strings"

	"sosconnect-go/internal/types"
)

// EmergencyNumber is the fixed recipient of emergency SMS hand-offs.
const EmergencyNumber = "+33764707816"

// NGORecipients is the fixed bcc list for news e-mail hand-offs.
var NGORecipients = []string{
	"media@redcross.org",
	"press@amnesty.org",
	"hrwpress@hrw.org",
	"media@savechildren.org",
	"media@apac.msf.org",
}

// EmergencySMS builds the SMS body for a completed emergency run.
func EmergencySMS(report types.SosReport, translation string) string {
	var b strings.Builder
	b.WriteString("🔴 EMERGENCY REPORT 🔴\n")
	fmt.Fprintf(&b, "Location: %s\n", report.LocationDetails)
	fmt.Fprintf(&b, "Danger: %s\n", report.DangerType)
	fmt.Fprintf(&b, "Context: %s\n", report.Context)
	fmt.Fprintf(&b, "Needs: %s\n", strings.Join(report.UserNeeds, ", "))
	b.WriteString("\n--- Translation for Authorities ---\n")
	b.WriteString(translation)
	return b.String()
}

// EmailDraft is the assembled news hand-off.
type EmailDraft struct {
	Subject string
	Body    string
	Bcc     []string
}

// NewsEmail builds the e-mail draft for a completed news run. videoExt names
// the original clip's container so the attachment instructions match the
// files saved alongside the draft.
func NewsEmail(loc types.LocationInfo, news types.NewsContent, videoExt string) EmailDraft {
	if videoExt == "" {
		videoExt = "webm"
	}

	translated := make([]string, 0, len(news.Segments))
	for _, s := range news.Segments {
		translated = append(translated, s.TranslatedText)
	}

	var b strings.Builder
	b.WriteString("--- Urgent Community Report ---\n\n")
	b.WriteString("IMPORTANT: Two files have just been downloaded to your device:\n")
	fmt.Fprintf(&b, "1. original_story_video.%s\n", videoExt)
	b.WriteString("2. translated_english_audio.mp3\n\n")
	b.WriteString("*** Please attach BOTH files to this email before sending. ***\n\n")
	fmt.Fprintf(&b, "Location: %s, %s\n", loc.City, loc.Country)
	fmt.Fprintf(&b, "Local Language Detected: %s\n\n", loc.LocalLanguage)
	b.WriteString("Video Summary:\n")
	b.WriteString(news.Summary)
	b.WriteString("\n\nFull Translated Transcript (English):\n")
	b.WriteString(strings.Join(translated, "\n"))
	b.WriteString("\n\n---\nThis report was generated and translated by SOSConnect to amplify local voices.")

	return EmailDraft{
		Subject: "Translated local story – urgent community report",
		Body:    b.String(),
		Bcc:     append([]string(nil), NGORecipients...),
	}
}
