package ai

import (
	"encoding/json"
	"fmt"
)

const resumeParseSystemPrompt = `You are a résumé parsing assistant. The user provides résumé text (often in Chinese) and you extract its information into structured JSON.

Requirements:
1) Output JSON only. No other text and no Markdown code fences.
2) Never invent information that is not in the text.
3) Shape the result so it is easy to fill web forms from it. It may contain basic information, contact details, education, work experience, projects, skills, certificates, personal links, expectations and a self introduction.
4) Keys may be Chinese or English but must be clear and consistent.`

const formFillSystemPrompt = `You are a web form filling assistant. You receive a JSON object containing:
- fields: the page's fields (fieldId, kind, label/name/id/placeholder and options)
- resume: the structured résumé JSON

Your task:
1) Choose the most suitable value from the résumé for every field and give a short reason.
2) Output JSON only. No other text and no Markdown code fences.

Output format (follow strictly):
{
  "fills": [
    { "fieldId": "xxx", "value": "...", "reason": "..." }
  ]
}

Value rules:
- kind = "checkbox_group": value is an array of strings (the option texts to check)
- kind = "radio_group" / "select": value is a string (the option text to choose)
- otherwise: value is a string
- If you cannot decide, return value = "" and explain why in reason. Never make values up.`

var systemPrompts = map[Mode]string{
	ModeResumeParse: resumeParseSystemPrompt,
	ModeFormFill:    formFillSystemPrompt,
}

// SystemPrompt returns the fixed instruction for mode.
func SystemPrompt(mode Mode) (string, error) {
	p, ok := systemPrompts[mode]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	return p, nil
}

// BuildResumeParsePrompt wraps raw résumé text for ModeResumeParse.
func BuildResumeParsePrompt(rawText string) string {
	return fmt.Sprintf(`Extract the information in the résumé text below and organise it as structured JSON (output JSON only, no other text, no Markdown code fences).

Requirements:
- Do not invent information.
- The result is used to fill web forms automatically.
- It may contain basic information, contact details, education, work experience, projects, skills, certificates, personal links (such as GitHub), expected position/city/salary and a self introduction.

Résumé text:
%s
`, rawText)
}

// FillPayload is the user prompt sent in ModeFormFill.
type FillPayload struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Fields any    `json:"fields"`
	Resume any    `json:"resume"`
}

// BuildFillPrompt encodes payload as the ModeFormFill user prompt.
func BuildFillPrompt(payload FillPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fill payload: %w", err)
	}
	return string(raw), nil
}
