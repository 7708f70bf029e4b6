package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompletionChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4/chat/completions", r.URL.Path)
		assert.Equal(t, "2023-05-15", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body struct {
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Generate a joke!", body.Messages[0]["content"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"knock knock"}}]}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{HTTP: srv.Client(), APIBase: srv.URL + "/", APIKey: "secret", APIVersion: "2023-05-15",
		Deployment: "gpt-4", DeploymentType: DeploymentTypeChat}
	got, err := c.GetCompletion(context.Background(), "Generate a joke!")
	require.NoError(t, err)
	assert.Equal(t, "knock knock", got)
}

func TestGetCompletionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"DeploymentNotFound"}}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{HTTP: srv.Client(), APIBase: srv.URL, Deployment: "missing"}
	_, err := c.GetCompletion(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeploymentNotFound")
	assert.Contains(t, err.Error(), "404")
}

func TestEmbedDocumentsOnePerText(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/openai/deployments/text-embedding-ada-002/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2,3]}]}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{HTTP: srv.Client(), APIBase: srv.URL, EmbeddingsEngine: "text-embedding-ada-002"}
	got, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, [][]float32{{1, 2, 3}, {1, 2, 3}}, got)
}

func TestTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "westeurope", r.Header.Get("Ocp-Apim-Subscription-Region"))
		switch r.URL.Path {
		case "/translate":
			assert.Equal(t, "it", r.URL.Query().Get("to"))
			_, _ = w.Write([]byte(`[{"translations":[{"text":"Questo è un test","to":"it"}]}]`))
		case "/languages":
			_, _ = w.Write([]byte(`{"translation":{"it":{"name":"Italian","nativeName":"Italiano"},"fr":{"name":"French","nativeName":"Français"}}}`))
		}
	}))
	defer srv.Close()

	tr := &Translator{HTTP: srv.Client(), Endpoint: srv.URL, Key: "key", Region: "westeurope"}
	got, err := tr.Translate(context.Background(), "This is a test", "it")
	require.NoError(t, err)
	assert.Equal(t, "Questo è un test", got)

	languages, err := tr.GetAvailableLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Italian": "it", "French": "fr"}, languages)
}

func TestTranslatorUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := &Translator{HTTP: srv.Client(), Endpoint: srv.URL}
	_, err := tr.Translate(context.Background(), "x", "it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
