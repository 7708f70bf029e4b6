package services

import "strings"

const (
	SummariesToken = "{summaries}"
	QuestionToken  = "{question}"
)

// ValidatePrompt returns prompt unchanged when it carries both placeholders.
// Otherwise it returns "" (fall back to DefaultPrompt) and one warning per
// missing placeholder.
func ValidatePrompt(prompt string) (string, []string) {
	var warnings []string
	if !strings.Contains(prompt, SummariesToken) {
		warnings = append(warnings, `Your custom prompt doesn't contain the variable "{summaries}".
This variable is replaced with the content of the documents retrieved from the vector store.
Please add it to your custom prompt to use the app.
Reverting to default prompt.`)
	}
	if !strings.Contains(prompt, QuestionToken) {
		warnings = append(warnings, `Your custom prompt doesn't contain the variable "{question}".
This variable is replaced with the user's question.
Please add it to your custom prompt to use the app.
Reverting to default prompt.`)
	}
	if len(warnings) > 0 {
		return "", warnings
	}
	return prompt, nil
}
