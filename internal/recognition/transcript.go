package recognition

import "strings"

// transcriptionPrompt is shared by the LLM backends. The extractor expects raw
// lines, so the model must not summarise or reformat.
const transcriptionPrompt = `You are an OCR engine. Transcribe every piece of text in this receipt image exactly as printed.

Rules:
- Keep the original line breaks, one printed line per output line
- Keep numbers, currency symbols, dates and punctuation exactly as shown
- Do not translate, correct, summarise or explain anything
- Do not wrap the output in markdown code blocks
- If the image contains no text, return an empty response`

// cleanTranscript strips markdown fences that models add despite instructions
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line, which may carry a language tag
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
