package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Backends holds the long-lived clients. Helpers are cut from it per request.
type Backends struct {
	AI         OpenAIClient
	Translator *Translator
	Store      VectorStore
	TopK       int
}

func (b *Backends) NewHelper(customPrompt string, temperature float64) Helper {
	return NewLLMHelper(b.AI, b.Translator, b.Store, customPrompt, temperature, b.TopK)
}

const languagesKey = "languages"

// LanguageCache keeps the translator's language list for the whole process.
type LanguageCache struct {
	cache *cache.Cache
}

func NewLanguageCache(ttl time.Duration) *LanguageCache {
	return &LanguageCache{cache: cache.New(ttl, ttl)}
}

func (c *LanguageCache) Get(ctx context.Context, h Helper) (map[string]string, error) {
	if x, found := c.cache.Get(languagesKey); found {
		return x.(map[string]string), nil
	}
	languages, err := h.GetAvailableLanguages(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(languagesKey, languages)
	return languages, nil
}
