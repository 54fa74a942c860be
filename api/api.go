// Package api exposes the simulation engine over HTTP.
package api

import (
	"fmt"
	"time"

	"fincast/internal/app"
	"fincast/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApiHandler struct {
	SimulationHandler app.SimulationHandler
	RunRepository     repository.RunRepository
	ExplainRepository repository.ExplainRepository
	JwtDecodeToken    string
	Logger            *zap.SugaredLogger
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to fincast"})
	})
	router.GET("/rates", m.rates)
	router.GET("/runs", m.listRuns)
	router.GET("/runs/:id", m.getRun)

	authed := router.Group("/", m.authMiddleware())
	authed.POST("/simulate", m.simulate)
	authed.POST("/simulate/branches", m.simulateBranches)
	authed.POST("/explain", m.explain)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	start := time.Now().UTC()
	ctx.Next()
	m.Logger.Infow("handled request",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
