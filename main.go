package main

import (
	"net/http"
	"time"

	"embeddingsqna/config"
	"embeddingsqna/controllers"
	"embeddingsqna/global"
	"embeddingsqna/router"
	"embeddingsqna/services"
	"embeddingsqna/session"

	"go.uber.org/zap"
)

func main() {
	config.InitConfig()
	cfg := config.AppConfig
	defer global.Logger.Sync()

	httpClient := &http.Client{Timeout: 2 * time.Minute}

	var store services.VectorStore
	if cfg.VectorStore.Type == services.StoreKindAzureSearch {
		store = &services.AzureSearchStore{
			HTTP:        httpClient,
			ServiceName: cfg.VectorStore.SearchServiceName,
			AdminKey:    cfg.VectorStore.SearchAdminKey,
			Index:       cfg.VectorStore.IndexName,
			Endpoint:    cfg.VectorStore.SearchEndpoint,
		}
	} else {
		store = services.NewRedisVectorStore(global.RedisDB, cfg.VectorStore.IndexName)
	}

	backends := &services.Backends{
		AI: services.OpenAIClient{
			HTTP:             httpClient,
			APIBase:          cfg.OpenAI.APIBase,
			APIKey:           cfg.OpenAI.APIKey,
			APIVersion:       cfg.OpenAI.APIVersion,
			Deployment:       cfg.OpenAI.Deployment,
			DeploymentType:   cfg.OpenAI.DeploymentType,
			EmbeddingsEngine: cfg.OpenAI.EmbeddingsEngine,
			MaxTokens:        cfg.OpenAI.MaxTokens,
		},
		Translator: &services.Translator{
			HTTP:     httpClient,
			Endpoint: cfg.Translator.Endpoint,
			Key:      cfg.Translator.Key,
			Region:   cfg.Translator.Region,
		},
		Store: store,
		TopK:  cfg.VectorStore.TopK,
	}

	var recorders []services.AnswerRecorder
	if global.Db != nil {
		recorders = append(recorders, services.NewAnswerHistory(global.Db))
	}
	if global.RabbitChannel != nil {
		recorders = append(recorders, services.NewAnswerPublisher(global.RabbitChannel, cfg.RabbitMQ.Queue))
	}

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	var sessions session.Store
	if cfg.Session.Store == "redis" && global.RedisDB != nil {
		sessions = session.NewRedisStore(global.RedisDB, ttl)
	} else {
		sessions = session.NewMemoryStore(ttl)
	}

	qc := controllers.NewQAController(
		controllers.NewSessionManager(sessions, cfg.Session.Secret, ttl, cfg.OpenAI.Temperature),
		backends,
		services.NewQAService(global.Logger, recorders...),
		services.NewLanguageCache(time.Hour),
		global.Logger,
	)

	r := router.SetupRouter(qc, router.Options{
		CorsOrigins:             cfg.App.CorsOrigins,
		DiagnosticsPasswordHash: cfg.Session.DiagnosticsPasswordHash,
	})

	global.Logger.Info("starting server", zap.String("name", cfg.App.Name), zap.String("port", cfg.App.Port))
	if err := r.Run(cfg.App.Port); err != nil {
		global.Logger.Fatal("server stopped", zap.Error(err))
	}
}
