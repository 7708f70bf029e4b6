package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFollowupQuestions(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantResponse string
		wantFollowup []string
	}{
		{
			name:         "no follow-ups",
			response:     "Plain answer.",
			wantResponse: "Plain answer.",
			wantFollowup: []string{},
		},
		{
			name:         "angle brackets",
			response:     "Answer text.\n<<First?>>\n<<Second?>>",
			wantResponse: "Answer text.",
			wantFollowup: []string{"First?", "Second?"},
		},
		{
			name:         "heading before brackets",
			response:     "Answer.\nFollow-up Questions:\n<<One?>>",
			wantResponse: "Answer.",
			wantFollowup: []string{"One?"},
		},
		{
			name:         "heading without items",
			response:     "Answer.\nFollow-up Questions: none",
			wantResponse: "Answer.",
			wantFollowup: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, followups := ExtractFollowupQuestions(tt.response)
			assert.Equal(t, tt.wantResponse, got)
			assert.Equal(t, tt.wantFollowup, followups)
		})
	}
}

func TestGetLinksFilenames(t *testing.T) {
	sources := "[a.pdf](https://blob/a.pdf?sig=1)" + SourceSeparator + "[b.txt](https://blob/b.txt)" + SourceSeparator
	response := "See [[a.pdf]] and https://blob/b.txt for details."

	got := GetLinksFilenames(response, sources)
	assert.Equal(t, "See [a.pdf] and b.txt for details.", got.Response)
	assert.Equal(t, []string{"[a.pdf](https://blob/a.pdf?sig=1)", "[b.txt](https://blob/b.txt)"}, got.Sources)
	assert.Equal(t, []string{"https://blob/a.pdf?sig=1", "https://blob/b.txt"}, got.Links)
	assert.Equal(t, []string{"a.pdf", "b.txt"}, got.Filenames)
	assert.Equal(t, got.Sources, got.MatchedSources)
}

func TestGetLinksFilenamesEmpty(t *testing.T) {
	got := GetLinksFilenames("answer", "")
	assert.Equal(t, "answer", got.Response)
	assert.Empty(t, got.Sources)
	assert.Empty(t, got.MatchedSources)
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Docs: {summaries} Q: {question}", "S", "Q?", nil)
	assert.Equal(t, "Docs: S Q: Q?", got)

	got = BuildPrompt("", "S", "Q?", []Exchange{{Question: "q0", Answer: "a0"}})
	assert.True(t, strings.HasPrefix(got, "Previous question: q0\nPrevious answer: a0\n\nS\n"))
	assert.Contains(t, got, "Question: Q?")
}

type searchStub struct {
	fakeStore
	docs []Document
}

func (s *searchStub) Search(context.Context, []float32, int) ([]Document, error) {
	return s.docs, nil
}

func TestGetSemanticAnswer(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}]}`))
		case strings.HasSuffix(r.URL.Path, "/completions"):
			prompts = append(prompts, body["prompt"].(string))
			assert.Equal(t, 0.3, body["temperature"])
			_, _ = w.Write([]byte(`{"choices":[{"text":" It is [[a.pdf]]. <<More?>>"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := &searchStub{docs: []Document{
		{Filename: "a.pdf", Link: "https://blob/a.pdf", Content: "alpha"},
		{Filename: "a.pdf", Link: "https://blob/a.pdf", Content: "beta"},
		{Filename: "b.pdf", Link: "https://blob/b.pdf", Content: "gamma"},
	}}
	ai := OpenAIClient{HTTP: srv.Client(), APIBase: srv.URL, Deployment: "davinci", EmbeddingsEngine: "ada", DeploymentType: DeploymentTypeText}
	h := NewLLMHelper(ai, nil, store, "{summaries}|{question}", 0.3, 2)

	ans, err := h.GetSemanticAnswer(context.Background(), "what?", nil)
	require.NoError(t, err)
	assert.Equal(t, "what?", ans.Question)
	assert.Equal(t, "It is [[a.pdf]]. <<More?>>", ans.Response)
	assert.Equal(t, map[string][]string{"a.pdf": {"alpha", "beta"}, "b.pdf": {"gamma"}}, ans.Context)
	assert.Equal(t, "[a.pdf](https://blob/a.pdf)"+SourceSeparator+"[b.pdf](https://blob/b.pdf)", ans.Sources)
	require.Len(t, prompts, 1)
	assert.Equal(t, "a.pdf: alpha\n\na.pdf: beta\n\nb.pdf: gamma\n\n|what?", prompts[0])
}
