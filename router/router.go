package router

import (
	"net/http"
	"time"

	"embeddingsqna/controllers"
	"embeddingsqna/middlewares"
	"embeddingsqna/views"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CorsOrigins             []string
	DiagnosticsPasswordHash string
}

func SetupRouter(qc *controllers.QAController, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(controllers.Recover))
	r.SetHTMLTemplate(views.Templates())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	r.GET("/", qc.Index)
	r.POST("/ask", qc.Ask)
	r.POST("/followup", qc.Followup)
	r.POST("/settings", qc.Settings)
	r.POST("/check-deployment", middlewares.DiagnosticsAuth(opts.DiagnosticsPasswordHash), qc.CheckDeployment)

	api := r.Group("/api")
	api.Use(cors.New(corsConfig(opts.CorsOrigins)))
	{
		api.POST("/answer", qc.AnswerQuestion)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
