package config

import (
	"errors"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name    string
		Port    string
		LogFile string
		IsProd  bool
		// CorsOrigins applies to the JSON API only.
		CorsOrigins []string
	}
	Database struct {
		Dsn          string
		MaxIdleConns int
		MaxOpenConns int
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	RabbitMQ struct {
		Url   string
		Queue string
	}
	OpenAI struct {
		APIBase          string
		APIKey           string
		APIVersion       string
		Deployment       string
		DeploymentType   string
		EmbeddingsEngine string
		Temperature      float64
		MaxTokens        int
	}
	Translator struct {
		Endpoint string
		Key      string
		Region   string
	}
	VectorStore struct {
		Type              string
		IndexName         string
		SearchServiceName string
		SearchAdminKey    string
		SearchEndpoint    string
		TopK              int
	}
	Session struct {
		Secret                  string
		Store                   string
		TTLHours                int
		DiagnosticsPasswordHash string
	}
}

var AppConfig *Config

const defaultTemperature = 0.7

func InitConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Println("config/config.yml not found, using defaults and environment")
	}

	c, err := loadConfig()
	if err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}
	AppConfig = c

	initLogger()
	initDB()
	initRedis()
	initRabbit()
}

// loadConfig decodes whatever viper has read and layers the environment on top.
func loadConfig() (*Config, error) {
	viper.SetDefault("openai.temperature", defaultTemperature)

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, err
	}
	applyEnv(c)
	return c, nil
}

// applyEnv layers the environment over whatever config.yml provided.
func applyEnv(c *Config) {
	c.App.Name = getEnvOrDefault("APP_NAME", orDefault(c.App.Name, "embeddings-qna"))
	c.App.Port = getEnvOrDefault("APP_PORT", orDefault(c.App.Port, ":8080"))
	c.App.LogFile = getEnvOrDefault("LOG_FILE_PATH", c.App.LogFile)
	c.App.IsProd = getEnvOrDefault("GO_ENV", "development") == "production"
	if len(c.App.CorsOrigins) == 0 {
		c.App.CorsOrigins = []string{"*"}
	}

	c.Database.Dsn = getEnvOrDefault("DB_DSN", c.Database.Dsn)

	c.Redis.Addr = getEnvOrDefault("REDIS_ADDRESS", orDefault(c.Redis.Addr, "localhost:6379"))
	c.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)

	c.RabbitMQ.Url = getEnvOrDefault("RABBITMQ_URL", c.RabbitMQ.Url)

	c.OpenAI.APIBase = getEnvOrDefault("OPENAI_API_BASE", c.OpenAI.APIBase)
	c.OpenAI.APIKey = getEnvOrDefault("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.APIVersion = getEnvOrDefault("OPENAI_API_VERSION", orDefault(c.OpenAI.APIVersion, "2023-05-15"))
	c.OpenAI.Deployment = getEnvOrDefault("OPENAI_ENGINE", orDefault(c.OpenAI.Deployment, "text-davinci-003"))
	c.OpenAI.DeploymentType = getEnvOrDefault("OPENAI_DEPLOYMENT_TYPE", orDefault(c.OpenAI.DeploymentType, "Text"))
	c.OpenAI.EmbeddingsEngine = getEnvOrDefault("OPENAI_EMBEDDINGS_ENGINE", orDefault(c.OpenAI.EmbeddingsEngine, "text-embedding-ada-002"))
	c.OpenAI.Temperature = getEnvFloat("OPENAI_TEMPERATURE", c.OpenAI.Temperature)
	c.OpenAI.MaxTokens = getEnvInt("OPENAI_MAX_TOKENS", orInt(c.OpenAI.MaxTokens, 500))

	c.Translator.Endpoint = getEnvOrDefault("TRANSLATE_ENDPOINT", orDefault(c.Translator.Endpoint, "https://api.cognitive.microsofttranslator.com"))
	c.Translator.Key = getEnvOrDefault("TRANSLATE_KEY", c.Translator.Key)
	c.Translator.Region = getEnvOrDefault("TRANSLATE_REGION", c.Translator.Region)

	c.VectorStore.Type = getEnvOrDefault("VECTOR_STORE_TYPE", orDefault(c.VectorStore.Type, "Redis"))
	c.VectorStore.IndexName = getEnvOrDefault("VECTOR_STORE_INDEX", orDefault(c.VectorStore.IndexName, "embeddings"))
	c.VectorStore.SearchServiceName = getEnvOrDefault("AZURE_SEARCH_SERVICE_NAME", c.VectorStore.SearchServiceName)
	c.VectorStore.SearchAdminKey = getEnvOrDefault("AZURE_SEARCH_ADMIN_KEY", c.VectorStore.SearchAdminKey)
	c.VectorStore.SearchEndpoint = getEnvOrDefault("AZURE_SEARCH_ENDPOINT", c.VectorStore.SearchEndpoint)
	if c.VectorStore.TopK <= 0 {
		c.VectorStore.TopK = 4
	}

	c.Session.Secret = getEnvOrDefault("SESSION_SECRET", orDefault(c.Session.Secret, "change-me"))
	c.Session.Store = getEnvOrDefault("SESSION_STORE", orDefault(c.Session.Store, "memory"))
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	c.Session.DiagnosticsPasswordHash = getEnvOrDefault("DIAGNOSTICS_PASSWORD_HASH", c.Session.DiagnosticsPasswordHash)
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && !math.IsNaN(v) {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
