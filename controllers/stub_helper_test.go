package controllers

import (
	"context"
	"errors"

	"embeddingsqna/services"
)

var errStub = errors.New("stub failure")

type stubStore struct{}

func (stubStore) Kind() string { return services.StoreKindRedis }

func (stubStore) CheckExistingIndex(context.Context, string) (bool, error) { return false, nil }

func (stubStore) IndexExists(context.Context) (bool, error) { return true, nil }

func (stubStore) Search(context.Context, []float32, int) ([]services.Document, error) {
	return nil, nil
}

type stubHelper struct {
	translateErr error
	answer       services.SemanticAnswer
	answerErr    error
	calls        *int
}

func (s *stubHelper) GetCompletion(context.Context, string) (string, error) { return "ok", nil }

func (s *stubHelper) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (s *stubHelper) Translate(_ context.Context, text, lang string) (string, error) {
	if s.translateErr != nil {
		return "", s.translateErr
	}
	return lang + ":" + text, nil
}

func (s *stubHelper) GetAvailableLanguages(context.Context) (map[string]string, error) {
	return map[string]string{"Italian": "it"}, nil
}

func (s *stubHelper) GetSemanticAnswer(_ context.Context, question string, _ []services.Exchange) (services.SemanticAnswer, error) {
	if s.calls != nil {
		*s.calls++
	}
	if s.answerErr != nil {
		return services.SemanticAnswer{}, s.answerErr
	}
	ans := s.answer
	ans.Question = question
	return ans, nil
}

func (s *stubHelper) ExtractFollowupQuestions(response string) (string, []string) {
	return services.ExtractFollowupQuestions(response)
}

func (s *stubHelper) GetLinksFilenames(response, sources string) services.LinkedAnswer {
	return services.GetLinksFilenames(response, sources)
}

func (s *stubHelper) VectorStore() services.VectorStore { return stubStore{} }
func (s *stubHelper) DeploymentName() string            { return "dep" }
func (s *stubHelper) APIBase() string                   { return "https://base" }

// stubFactory hands out helpers sharing one answer and one call counter.
type stubFactory struct {
	answer     services.SemanticAnswer
	answerErr  error
	calls      int
	lastPrompt string
	lastTemp   float64
}

func (f *stubFactory) NewHelper(customPrompt string, temperature float64) services.Helper {
	f.lastPrompt = customPrompt
	f.lastTemp = temperature
	return &stubHelper{answer: f.answer, answerErr: f.answerErr, calls: &f.calls}
}
