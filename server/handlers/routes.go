package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"entityblock/docs"
)

// Routes зависимости для регистрации маршрутов
type Routes struct {
	Blocking   *BlockingHandler
	Similarity *SimilarityHandler
	// RunLimiter ограничивает создание прогонов; nil отключает ограничение
	RunLimiter gin.HandlerFunc
	// Health дополнительная проверка состояния (например, ping БД)
	Health func() error
}

// Register регистрирует все маршруты API в Gin роутере
func (r Routes) Register(router *gin.Engine) {
	router.GET("/health", r.handleHealth)
	RegisterSwaggerRoutes(router)

	api := router.Group("/api")

	runs := api.Group("/blocking/runs")
	if r.RunLimiter != nil {
		runs.POST("", r.RunLimiter, r.Blocking.HandleCreateRun)
	} else {
		runs.POST("", r.Blocking.HandleCreateRun)
	}
	runs.GET("", r.Blocking.HandleListRuns)
	runs.GET("/:id", r.Blocking.HandleGetRun)
	runs.GET("/:id/scores", r.Blocking.HandleListScores)
	runs.DELETE("/:id", r.Blocking.HandleDeleteRun)

	api.POST("/blocking/tokenize", r.Similarity.HandleTokenize)
	api.POST("/similarity/compare", r.Similarity.HandleSimilarityCompare)
}

// handleHealth проверка состояния сервера
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (r Routes) handleHealth(c *gin.Context) {
	if r.Health != nil {
		if err := r.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterSwaggerRoutes регистрирует маршруты Swagger в Gin роутере
func RegisterSwaggerRoutes(router *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
