package controllers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"embeddingsqna/services"
	"embeddingsqna/session"

	"github.com/yuin/goldmark"
)

const (
	promptPlaceholder = `{summaries}
Please reply to the question using only the text above.
Question: {question}
Answer:`
	promptHelp = `You can configure a custom prompt by adding the variables {summaries} and {question} to the prompt.
{summaries} will be replaced with the content of the documents retrieved from the vector store.
{question} will be replaced with the user's question.`
)

type Followup struct {
	Label    string
	Question string
}

type ContextGroup struct {
	Source   string
	Snippets []template.HTML
}

// Page is everything index.tmpl shows, in the order it shows it.
type Page struct {
	InputName  string
	InputValue string

	ShowAnswer bool
	Answer     template.HTML
	Followups  []Followup
	Sources    []template.HTML
	Context    []ContextGroup
	RawSources string

	ShowTranslation bool
	Translation     string

	Temperature       float64
	CustomPrompt      string
	PromptPlaceholder string
	PromptHelp        string
	Languages         []string
	SelectedLanguage  string

	Warnings    []string
	Diagnostics []services.DiagnosticResult
	// Errors are full traces; the audience is whoever runs the deployment.
	Errors []string
}

// BuildPage reads st and produces the view. It never modifies st.
func BuildPage(ctx context.Context, h services.Helper, st *session.State, languages map[string]string) Page {
	p := Page{
		InputName:         st.InputName(),
		InputValue:        st.AskedQuestion,
		Temperature:       st.CustomTemperature,
		CustomPrompt:      st.CustomPrompt,
		PromptPlaceholder: promptPlaceholder,
		PromptHelp:        promptHelp,
		Languages:         sortedKeys(languages),
		SelectedLanguage:  st.TranslationLanguage,
	}

	response := st.Response
	if st.HasAnswer() {
		linked := h.GetLinksFilenames(st.Response, st.Sources)
		response = linked.Response
		p.ShowAnswer = true
		p.Answer = markdown("Answer: " + response)
		for i, src := range linked.Sources {
			p.Sources = append(p.Sources, markdown(fmt.Sprintf("[%d] %s", i+1, src)))
		}
		for _, name := range sortedKeys(st.Context) {
			group := ContextGroup{Source: name}
			for _, snippet := range st.Context[name] {
				group.Snippets = append(group.Snippets, markdown(snippet))
			}
			p.Context = append(p.Context, group)
		}
		p.RawSources = st.Sources
	}

	for _, q := range st.FollowupQuestions {
		if q == "" {
			continue
		}
		p.Followups = append(p.Followups, Followup{Label: EscapeQuotes(q), Question: q})
	}

	// An empty code means the language list could not be loaded.
	if code := languages[st.TranslationLanguage]; code != "" && response != "" {
		p.ShowTranslation = true
		translated, err := h.Translate(ctx, response, code)
		if err != nil {
			p.Errors = append(p.Errors, fmt.Sprintf("%+v", err))
		} else {
			p.Translation = translated
		}
	}
	return p
}

// EscapeQuotes puts a backslash before every apostrophe that does not already
// have one, so applying it twice changes nothing.
func EscapeQuotes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	var prev rune
	for _, r := range s {
		if r == '\'' && prev != '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
