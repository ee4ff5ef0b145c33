package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// SystemInstruction is sent with every batch request.
const SystemInstruction = "You are an AI assistant specialized in extracting information from documents.\n" +
	"For each question provided, answer in the following JSON format:\n" +
	"{\n" +
	`  "<question_label>": "<corresponding_answer>"` + "\n" +
	"}\n" +
	"Make sure every answer comes inside a single valid array of JSON objects, with no escaping.\n" +
	"The returned array must match the 'questions' array I send you, in order and count.\n" +
	"I will now send you the questions and the document text as JSON for you to answer."

type payloadQuestion struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

type requestPayload struct {
	DocumentText string            `json:"document_text"`
	Questions    []payloadQuestion `json:"questions"`
}

// BuildPayload renders the user message for one batch: the document text and
// the batch's questions reduced to label and prompt. Output is indented with
// four spaces and keeps non-ASCII characters literal.
func BuildPayload(documentText string, batch []domain.QuestionRecord) (string, error) {
	p := requestPayload{
		DocumentText: documentText,
		Questions:    make([]payloadQuestion, len(batch)),
	}
	for i, q := range batch {
		p.Questions[i] = payloadQuestion{Label: q.Label, Prompt: q.Prompt}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("encoding batch payload: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
