package services

import (
	"context"
	"errors"
)

type fakeStore struct {
	kind        string
	legacy      bool
	checkErr    error
	existsErr   error
	panicOnKind bool
}

func (s *fakeStore) Kind() string {
	if s.panicOnKind {
		panic("store exploded")
	}
	return s.kind
}

func (s *fakeStore) CheckExistingIndex(_ context.Context, name string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return name == LegacyIndexName && s.legacy, nil
}

func (s *fakeStore) IndexExists(context.Context) (bool, error) {
	return s.existsErr == nil, s.existsErr
}

func (s *fakeStore) Search(context.Context, []float32, int) ([]Document, error) {
	return nil, nil
}

type fakeHelper struct {
	completionErr  error
	embedErr       error
	translateErr   error
	panicOnEmbed   bool
	answer         SemanticAnswer
	answerErr      error
	store          *fakeStore
	semanticCalls  int
	lastQuestion   string
	translateCalls int
}

func (f *fakeHelper) GetCompletion(context.Context, string) (string, error) {
	return "a joke", f.completionErr
}

func (f *fakeHelper) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.panicOnEmbed {
		panic("embeddings exploded")
	}
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return make([][]float32, len(texts)), nil
}

func (f *fakeHelper) Translate(_ context.Context, text, lang string) (string, error) {
	f.translateCalls++
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return lang + ":" + text, nil
}

func (f *fakeHelper) GetAvailableLanguages(context.Context) (map[string]string, error) {
	return map[string]string{"Italian": "it"}, nil
}

func (f *fakeHelper) GetSemanticAnswer(_ context.Context, question string, _ []Exchange) (SemanticAnswer, error) {
	f.semanticCalls++
	f.lastQuestion = question
	if f.answerErr != nil {
		return SemanticAnswer{}, f.answerErr
	}
	ans := f.answer
	ans.Question = question
	return ans, nil
}

func (f *fakeHelper) ExtractFollowupQuestions(response string) (string, []string) {
	return ExtractFollowupQuestions(response)
}

func (f *fakeHelper) GetLinksFilenames(response, sources string) LinkedAnswer {
	return GetLinksFilenames(response, sources)
}

func (f *fakeHelper) VectorStore() VectorStore {
	if f.store == nil {
		return &fakeStore{kind: StoreKindRedis}
	}
	return f.store
}

func (f *fakeHelper) DeploymentName() string { return "my-deployment" }
func (f *fakeHelper) APIBase() string        { return "https://example.openai.azure.com" }

var errBoom = errors.New("boom")
