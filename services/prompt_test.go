package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name         string
		prompt       string
		want         string
		wantWarnings []string
	}{
		{
			name:   "both placeholders",
			prompt: "{summaries}\nQuestion: {question}",
			want:   "{summaries}\nQuestion: {question}",
		},
		{
			name:         "missing summaries",
			prompt:       "Answer: {question}",
			wantWarnings: []string{SummariesToken},
		},
		{
			name:         "missing question",
			prompt:       "{summaries} answer this",
			wantWarnings: []string{QuestionToken},
		},
		{
			name:         "missing both",
			prompt:       "just answer",
			wantWarnings: []string{SummariesToken, QuestionToken},
		},
		{
			name:         "empty",
			prompt:       "",
			wantWarnings: []string{SummariesToken, QuestionToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := ValidatePrompt(tt.prompt)
			assert.Equal(t, tt.want, got)
			assert.Len(t, warnings, len(tt.wantWarnings))
			for i, token := range tt.wantWarnings {
				assert.Contains(t, warnings[i], token)
			}

			again, _ := ValidatePrompt(got)
			if got != "" {
				assert.Equal(t, got, again)
			}
		})
	}
}
