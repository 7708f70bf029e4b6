package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const translatorAPIVersion = "3.0"

// Translator is an Azure Translator text client.
type Translator struct {
	HTTP     *http.Client
	Endpoint string
	Key      string
	Region   string
}

func (t *Translator) Translate(ctx context.Context, text, lang string) (string, error) {
	q := url.Values{}
	q.Set("api-version", translatorAPIVersion)
	q.Set("to", lang)

	body, err := json.Marshal([]map[string]string{{"Text": text}})
	if err != nil {
		return "", errors.WithStack(err)
	}

	var r []struct {
		Translations []struct {
			Text string `json:"text"`
			To   string `json:"to"`
		} `json:"translations"`
	}
	if err := t.do(ctx, http.MethodPost, "/translate?"+q.Encode(), bytes.NewReader(body), &r); err != nil {
		return "", err
	}
	if len(r) == 0 || len(r[0].Translations) == 0 {
		return "", errors.Errorf("translator returned no translation for %q", lang)
	}
	return r[0].Translations[0].Text, nil
}

// GetAvailableLanguages maps each language's display name to its code.
func (t *Translator) GetAvailableLanguages(ctx context.Context) (map[string]string, error) {
	var r struct {
		Translation map[string]struct {
			Name       string `json:"name"`
			NativeName string `json:"nativeName"`
		} `json:"translation"`
	}
	if err := t.do(ctx, http.MethodGet, "/languages?api-version="+translatorAPIVersion+"&scope=translation", nil, &r); err != nil {
		return nil, err
	}

	languages := make(map[string]string, len(r.Translation))
	for code, lang := range r.Translation {
		languages[lang.Name] = code
	}
	return languages, nil
}

func (t *Translator) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(t.Endpoint, "/")+path, body)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", t.Key)
	if t.Region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.Region)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(t.HTTP).Do(req)
	if err != nil {
		return errors.Wrap(err, "call translator")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithStack(err)
	}
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("translator returned %d: %s", resp.StatusCode, truncate(string(b), 300))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "decode translator response")
	}
	return nil
}
