package router

import (
	"fmt"
	"strings"

	"github.com/routepilot/internal/cache"
	"github.com/routepilot/internal/config"
	fieldhandlers "github.com/routepilot/internal/http/handlers/field"
	plannerhandlers "github.com/routepilot/internal/http/handlers/planner"
	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按排程端/外勤端分组）
	plannerHandler := plannerhandlers.New(c)
	fieldHandler := fieldhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rp"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:field_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	checkRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:visit_check", redisPrefix),
		WindowSeconds: cfg.Security.CheckRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckRateLimit.MaxRequests,
		Message:       "too many check-in/out requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 外勤端接口
		field := apiV1.Group("/field")
		{
			field.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("code")), fieldHandler.Login)

			authorized := field.Use(SalesmanJWTAuthMiddleware(cfg.JWT.SecretKey, c.SalesmanRepo))
			{
				authorized.GET("/route/today", fieldHandler.TodayRoute)
				authorized.POST("/visits/:id/check-in", RateLimitMiddleware(redisClient, checkRule, KeyBySalesman), fieldHandler.CheckIn)
				authorized.POST("/visits/:id/check-out", RateLimitMiddleware(redisClient, checkRule, KeyBySalesman), fieldHandler.CheckOut)
				authorized.GET("/visits/:id/status", fieldHandler.VisitStatus)
				authorized.POST("/visits/:id/remarks", fieldHandler.UpdateRemarks)
			}
		}

		// 排程端接口
		planner := apiV1.Group("/planner")
		planner.Use(PlannerTokenAuthMiddleware(cfg.Security.PlannerToken))
		{
			planner.POST("/templates", plannerHandler.CreateTemplate)
			planner.GET("/templates", plannerHandler.ListTemplates)
			planner.GET("/templates/active", plannerHandler.ResolveActive)
			planner.GET("/templates/:id", plannerHandler.GetTemplate)
			planner.PUT("/templates/:id", plannerHandler.UpdateTemplate)
			planner.DELETE("/templates/:id", plannerHandler.DisableTemplate)
			planner.GET("/templates/:id/rows", plannerHandler.GetTemplateRows)
			planner.POST("/templates/:id/copy-rows", plannerHandler.CopyTemplateRows)

			planner.POST("/materialize", plannerHandler.Materialize)

			planner.GET("/visits/:id/tracker", plannerHandler.VisitTracker)
			planner.GET("/reports/daily-visits", plannerHandler.DailyVisits)

			planner.GET("/customers", plannerHandler.CustomerOptions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
