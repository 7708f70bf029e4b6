package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const (
	StoreKindRedis       = "Redis"
	StoreKindAzureSearch = "AzureSearch"

	azureSearchAPIVersion = "2023-11-01"
)

// Document is one retrieved chunk.
type Document struct {
	Filename string
	Link     string
	Content  string
	Score    float64
}

type VectorStore interface {
	Kind() string
	// CheckExistingIndex reports whether an index called name exists.
	CheckExistingIndex(ctx context.Context, name string) (bool, error)
	// IndexExists reports whether the configured index exists.
	IndexExists(ctx context.Context) (bool, error)
	Search(ctx context.Context, vector []float32, k int) ([]Document, error)
}

// RedisVectorStore uses RediSearch vector indexes. Hash fields: content,
// source (link), filename, embeddings.
type RedisVectorStore struct {
	client *redis.Client
	index  string
}

func NewRedisVectorStore(client *redis.Client, index string) *RedisVectorStore {
	return &RedisVectorStore{client: client, index: index}
}

func (r *RedisVectorStore) Kind() string { return StoreKindRedis }

func (r *RedisVectorStore) CheckExistingIndex(_ context.Context, name string) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client not configured")
	}
	if _, err := r.client.Do("FT.INFO", name).Result(); err != nil {
		if isMissingIndex(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "FT.INFO %s", name)
	}
	return true, nil
}

// isMissingIndex recognises the FT.INFO replies RediSearch versions give for
// an index that does not exist.
func isMissingIndex(err error) bool {
	if err == nil || err == redis.Nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}

func (r *RedisVectorStore) IndexExists(ctx context.Context) (bool, error) {
	return r.CheckExistingIndex(ctx, r.index)
}

func (r *RedisVectorStore) Search(_ context.Context, vector []float32, k int) ([]Document, error) {
	if r.client == nil {
		return nil, errors.New("redis client not configured")
	}
	query := fmt.Sprintf("*=>[KNN %d @embeddings $vec AS score]", k)
	res, err := r.client.Do("FT.SEARCH", r.index, query,
		"PARAMS", "2", "vec", vectorBytes(vector),
		"SORTBY", "score",
		"RETURN", "4", "content", "source", "filename", "score",
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "FT.SEARCH %s", r.index)
	}
	return parseSearchReply(res)
}

// parseSearchReply decodes [total, key, [field, value, ...], key, [...], ...].
func parseSearchReply(res interface{}) ([]Document, error) {
	rows, ok := res.([]interface{})
	if !ok || len(rows) == 0 {
		return nil, errors.Errorf("unexpected FT.SEARCH reply %T", res)
	}

	docs := make([]Document, 0, len(rows)/2)
	for i := 2; i < len(rows); i += 2 {
		fields, ok := rows[i].([]interface{})
		if !ok {
			continue
		}
		var d Document
		for j := 0; j+1 < len(fields); j += 2 {
			name, _ := fields[j].(string)
			value, _ := fields[j+1].(string)
			switch name {
			case "content":
				d.Content = value
			case "source":
				d.Link = value
			case "filename":
				d.Filename = value
			case "score":
				d.Score, _ = strconv.ParseFloat(value, 64)
			}
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func vectorBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// AzureSearchStore is the managed search variant.
type AzureSearchStore struct {
	HTTP        *http.Client
	ServiceName string
	AdminKey    string
	Index       string
	// Endpoint overrides https://<ServiceName>.search.windows.net.
	Endpoint string
}

func (a *AzureSearchStore) Kind() string { return StoreKindAzureSearch }

func (a *AzureSearchStore) endpoint() string {
	if a.Endpoint != "" {
		return strings.TrimSuffix(a.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.search.windows.net", a.ServiceName)
}

func (a *AzureSearchStore) CheckExistingIndex(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.endpoint()+"/indexes/"+url.PathEscape(name)+"?api-version="+azureSearchAPIVersion, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	req.Header.Set("api-key", a.AdminKey)

	resp, err := httpClient(a.HTTP).Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "get search index %s", name)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode/100 == 2:
		return true, nil
	}
	b, _ := io.ReadAll(resp.Body)
	return false, errors.Errorf("search service %s returned %d: %s", a.ServiceName, resp.StatusCode, truncate(string(b), 300))
}

func (a *AzureSearchStore) IndexExists(ctx context.Context) (bool, error) {
	return a.CheckExistingIndex(ctx, a.Index)
}

func (a *AzureSearchStore) Search(ctx context.Context, vector []float32, k int) ([]Document, error) {
	payload := map[string]interface{}{
		"select": "content,source,filename",
		"top":    k,
		"vectorQueries": []map[string]interface{}{{
			"kind":   "vector",
			"vector": vector,
			"fields": "content_vector",
			"k":      k,
		}},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.endpoint()+"/indexes/"+url.PathEscape(a.Index)+"/docs/search?api-version="+azureSearchAPIVersion, bytes.NewReader(b))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("api-key", a.AdminKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(a.HTTP).Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "search index %s", a.Index)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("search service %s returned %d: %s", a.ServiceName, resp.StatusCode, truncate(string(body), 300))
	}

	var r struct {
		Value []struct {
			Score    float64 `json:"@search.score"`
			Content  string  `json:"content"`
			Source   string  `json:"source"`
			Filename string  `json:"filename"`
		} `json:"value"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	docs := make([]Document, 0, len(r.Value))
	for _, v := range r.Value {
		docs = append(docs, Document{Filename: v.Filename, Link: v.Source, Content: v.Content, Score: v.Score})
	}
	return docs, nil
}
