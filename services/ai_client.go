package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	DeploymentTypeText = "Text"
	DeploymentTypeChat = "Chat"
)

// OpenAIClient talks to an Azure OpenAI resource: one completion deployment
// and one embeddings deployment.
type OpenAIClient struct {
	HTTP             *http.Client
	APIBase          string
	APIKey           string
	APIVersion       string
	Deployment       string
	DeploymentType   string
	EmbeddingsEngine string
	Temperature      float64
	MaxTokens        int
}

type completionResponse struct {
	Choices []struct {
		Text    string `json:"text"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *OpenAIClient) GetCompletion(ctx context.Context, prompt string) (string, error) {
	var (
		path    string
		payload map[string]interface{}
	)
	if strings.EqualFold(c.DeploymentType, DeploymentTypeChat) {
		path = "chat/completions"
		payload = map[string]interface{}{
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": c.Temperature,
			"max_tokens":  c.MaxTokens,
		}
	} else {
		path = "completions"
		payload = map[string]interface{}{
			"prompt":      prompt,
			"temperature": c.Temperature,
			"max_tokens":  c.MaxTokens,
		}
	}

	var r completionResponse
	if err := c.post(ctx, c.Deployment, path, payload, &r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.Errorf("openai deployment %q returned no choices", c.Deployment)
	}
	if r.Choices[0].Message.Content != "" {
		return r.Choices[0].Message.Content, nil
	}
	return strings.TrimSpace(r.Choices[0].Text), nil
}

// EmbedDocuments embeds each text with one request; ada-002 deployments only
// accept a single input per call.
func (c *OpenAIClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		var r embeddingResponse
		if err := c.post(ctx, c.EmbeddingsEngine, "embeddings", map[string]interface{}{"input": text}, &r); err != nil {
			return nil, err
		}
		if len(r.Data) == 0 {
			return nil, errors.Errorf("openai deployment %q returned no embedding", c.EmbeddingsEngine)
		}
		vectors = append(vectors, r.Data[0].Embedding)
	}
	return vectors, nil
}

func (c *OpenAIClient) post(ctx context.Context, deployment, path string, payload interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		strings.TrimRight(c.APIBase, "/"), url.PathEscape(deployment), path, url.QueryEscape(c.APIVersion))

	b, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return errors.Wrapf(err, "call openai deployment %q", deployment)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithStack(err)
	}
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("openai deployment %q returned %d: %s", deployment, resp.StatusCode, truncate(string(body), 500))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode openai response: %s", truncate(string(body), 200))
	}
	return nil
}

func httpClient(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
