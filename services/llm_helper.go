package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPrompt is used whenever the visitor has no valid custom prompt.
const DefaultPrompt = `{summaries}
Please reply to the question using only the information in the text above.
If the answer is not there, say politely that the knowledge base does not contain it.
Answer in the language the question is asked in.
Every source has a name followed by a colon and its content; cite the source name for each fact you use, in double square brackets, e.g. [[info1.pdf]]. List sources separately, e.g. [[info1.pdf]][[info2.txt]].
After the answer, propose three very brief follow-up questions the user would likely ask next, each in double angle brackets, e.g. <<Is there a more detailed form?>>. Write nothing before or after the questions.
Question: {question}
Answer:`

// SourceSeparator joins entries of a sources string.
const SourceSeparator = "  \n "

type Exchange struct {
	Question string
	Answer   string
}

type SemanticAnswer struct {
	Question string
	Response string
	// Context groups the retrieved snippets by source filename.
	Context map[string][]string
	Sources string
}

type LinkedAnswer struct {
	Response       string
	Sources        []string
	MatchedSources []string
	Links          []string
	Filenames      []string
}

// Helper is everything the page needs from the language model, embeddings,
// translation and vector store backends.
type Helper interface {
	GetCompletion(ctx context.Context, prompt string) (string, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Translate(ctx context.Context, text, lang string) (string, error)
	GetAvailableLanguages(ctx context.Context) (map[string]string, error)
	GetSemanticAnswer(ctx context.Context, question string, history []Exchange) (SemanticAnswer, error)
	ExtractFollowupQuestions(response string) (string, []string)
	GetLinksFilenames(response, sources string) LinkedAnswer
	VectorStore() VectorStore
	DeploymentName() string
	APIBase() string
}

type LLMHelper struct {
	ai           *OpenAIClient
	translator   *Translator
	store        VectorStore
	customPrompt string
	topK         int
}

// NewLLMHelper builds a helper for one request. ai is copied so the
// temperature never leaks between visitors.
func NewLLMHelper(ai OpenAIClient, translator *Translator, store VectorStore, customPrompt string, temperature float64, topK int) *LLMHelper {
	ai.Temperature = temperature
	if topK <= 0 {
		topK = 4
	}
	return &LLMHelper{ai: &ai, translator: translator, store: store, customPrompt: customPrompt, topK: topK}
}

func (h *LLMHelper) GetCompletion(ctx context.Context, prompt string) (string, error) {
	return h.ai.GetCompletion(ctx, prompt)
}

func (h *LLMHelper) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return h.ai.EmbedDocuments(ctx, texts)
}

func (h *LLMHelper) Translate(ctx context.Context, text, lang string) (string, error) {
	return h.translator.Translate(ctx, text, lang)
}

func (h *LLMHelper) GetAvailableLanguages(ctx context.Context) (map[string]string, error) {
	return h.translator.GetAvailableLanguages(ctx)
}

func (h *LLMHelper) VectorStore() VectorStore { return h.store }
func (h *LLMHelper) DeploymentName() string   { return h.ai.Deployment }
func (h *LLMHelper) APIBase() string          { return h.ai.APIBase }

func (h *LLMHelper) GetSemanticAnswer(ctx context.Context, question string, history []Exchange) (SemanticAnswer, error) {
	vectors, err := h.ai.EmbedDocuments(ctx, []string{question})
	if err != nil {
		return SemanticAnswer{}, err
	}
	docs, err := h.store.Search(ctx, vectors[0], h.topK)
	if err != nil {
		return SemanticAnswer{}, err
	}

	summaries, snippets, sources := summarize(docs)
	prompt := BuildPrompt(h.customPrompt, summaries, question, history)

	response, err := h.ai.GetCompletion(ctx, prompt)
	if err != nil {
		return SemanticAnswer{}, errors.Wrap(err, "answer question")
	}
	return SemanticAnswer{Question: question, Response: response, Context: snippets, Sources: sources}, nil
}

// BuildPrompt fills the custom prompt, or DefaultPrompt when it is empty.
func BuildPrompt(customPrompt, summaries, question string, history []Exchange) string {
	tmpl := customPrompt
	if tmpl == "" {
		tmpl = DefaultPrompt
	}
	var b strings.Builder
	for _, ex := range history {
		fmt.Fprintf(&b, "Previous question: %s\nPrevious answer: %s\n\n", ex.Question, ex.Answer)
	}
	b.WriteString(strings.NewReplacer("{summaries}", summaries, "{question}", question).Replace(tmpl))
	return b.String()
}

func summarize(docs []Document) (string, map[string][]string, string) {
	var summaries strings.Builder
	snippets := make(map[string][]string)
	var sources []string
	seen := make(map[string]bool)

	for _, d := range docs {
		name := d.Filename
		if name == "" {
			name = d.Link
		}
		fmt.Fprintf(&summaries, "%s: %s\n\n", name, d.Content)
		snippets[name] = append(snippets[name], d.Content)

		src := fmt.Sprintf("[%s](%s)", name, d.Link)
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return summaries.String(), snippets, strings.Join(sources, SourceSeparator)
}

var followupPattern = regexp.MustCompile(`<<(.*?)>>`)

// ExtractFollowupQuestions splits the answer at the first "Follow-up
// Questions" heading or "<<", whichever comes first, and returns each <<...>>
// item after it.
func (h *LLMHelper) ExtractFollowupQuestions(response string) (string, []string) {
	return ExtractFollowupQuestions(response)
}

func ExtractFollowupQuestions(response string) (string, []string) {
	cut := firstIndex(response, "Follow-up Questions", "<<")
	if cut < 0 {
		return response, []string{}
	}

	questions := []string{}
	for _, m := range followupPattern.FindAllStringSubmatch(response[cut:], -1) {
		questions = append(questions, strings.TrimSpace(m[1]))
	}
	return strings.TrimSpace(response[:cut]), questions
}

func firstIndex(s string, subs ...string) int {
	first := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

func (h *LLMHelper) GetLinksFilenames(response, sources string) LinkedAnswer {
	return GetLinksFilenames(response, sources)
}

// GetLinksFilenames replaces source URLs the model echoed with their
// filenames and collapses [[name]] citations to [name].
func GetLinksFilenames(response, sources string) LinkedAnswer {
	out := LinkedAnswer{Sources: []string{}, MatchedSources: []string{}, Links: []string{}, Filenames: []string{}}

	for _, src := range strings.Split(sources, SourceSeparator) {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		filename, link := parseSourceLink(src)
		out.Sources = append(out.Sources, src)
		out.Links = append(out.Links, link)
		out.Filenames = append(out.Filenames, filename)

		if u := strings.SplitN(link, "?", 2)[0]; u != "" {
			response = strings.ReplaceAll(response, u, filename)
		}
	}

	response = strings.ReplaceAll(response, "[[", "[")
	response = strings.ReplaceAll(response, "]]", "]")

	for i, name := range out.Filenames {
		if name != "" && strings.Contains(response, name) {
			out.MatchedSources = append(out.MatchedSources, out.Sources[i])
		}
	}
	out.Response = response
	return out
}

// parseSourceLink splits "[name](link)". Anything else is returned as the name.
func parseSourceLink(src string) (string, string) {
	open := strings.Index(src, "](")
	if !strings.HasPrefix(src, "[") || open < 0 || !strings.HasSuffix(src, ")") {
		return src, ""
	}
	return src[1:open], src[open+2 : len(src)-1]
}
