package pipeline

import (
	"fmt"
	"strings"

	"sosconnect-go/internal/types"
)

func translationPrompt(loc types.LocationInfo) string {
	return fmt.Sprintf(
		"Transcribe the following audio/video and translate the transcription into %s. The original language can be anything.",
		loc.LocalLanguage,
	)
}

func sosReportPrompt(loc types.LocationInfo) string {
	return fmt.Sprintf(
		"Based on the following audio/video, analyze the content and generate a structured SOS report in JSON format. The user is located in %s, %s.",
		loc.City, loc.Country,
	)
}

func sosReportSchema(loc types.LocationInfo) string {
	return fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "context": {"type": "string", "description": "A brief summary of the situation."},
    "location_details": {"type": "string", "description": "The user's location. Default to: %s, %s"},
    "danger_type": {"type": "string", "description": "Categorize the emergency (e.g., Medical, Fire, Accident, Natural Disaster, Crime)."},
    "user_needs": {"type": "array", "items": {"type": "string"}, "description": "List of specific needs mentioned (e.g., 'Ambulance', 'Police', 'Medical supplies')."}
  },
  "required": ["context", "location_details", "danger_type", "user_needs"]
}`, loc.City, loc.Country)
}

func firstAidPrompt(report types.SosReport, language string) string {
	return fmt.Sprintf(`An emergency has been reported with the following context: %q.
The emergency is categorized as %q and the immediate needs are %q.
The user's language is %s.

Based on this specific situation, generate a JSON array with 3 to 5 objects. Each object must represent a critical first-aid step and have two keys:
1. "instruction": A very short, simple, and clear first-aid instruction, directly translated into %s. This text should be what the user reads.
2. "image_prompt": A detailed prompt in ENGLISH for an AI image generator. The prompt should describe a clear, simple instructional image for the step. CRITICAL: Any text that appears inside the generated image MUST be in %s.

Do not provide complex medical advice. Focus on immediate, life-preserving actions.
Return only the JSON array without markdown formatting.`,
		report.Context, report.DangerType, strings.Join(report.UserNeeds, ", "),
		language, language, language,
	)
}

const newsAnalysisPrompt = `Analyze the provided video. Perform two tasks:
1. Create a synchronized transcript and translation. The original language can be anything, but the translated text MUST be in English.
2. Write a short, one-paragraph summary of the story in English.
Ensure the timestamps are accurate and cover all spoken parts.`

const newsAnalysisSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string", "description": "A short, one-paragraph summary of the story in English."},
    "segments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "originalText": {"type": "string", "description": "The transcribed text in the original language."},
          "translatedText": {"type": "string", "description": "The translated text in English."},
          "startTime": {"type": "number", "description": "The start time of the segment in seconds."},
          "endTime": {"type": "number", "description": "The end time of the segment in seconds."}
        },
        "required": ["originalText", "translatedText", "startTime", "endTime"]
      }
    }
  },
  "required": ["summary", "segments"]
}`
