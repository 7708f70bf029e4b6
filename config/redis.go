package config

import (
	"embeddingsqna/global"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

// initRedis only opens the client when something needs it: the Redis vector
// store or the Redis session store.
func initRedis() {
	if AppConfig.VectorStore.Type == "AzureSearch" && AppConfig.Session.Store != "redis" {
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     AppConfig.Redis.Addr,
		DB:       AppConfig.Redis.DB,
		Password: AppConfig.Redis.Password,
	})

	// A failed ping is left for "Check deployment" to report.
	if _, err := client.Ping().Result(); err != nil {
		global.Logger.Warn("redis ping failed", zap.String("addr", AppConfig.Redis.Addr), zap.Error(err))
	}

	global.RedisDB = client
}
