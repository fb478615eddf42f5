package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/repairops/backend/internal/config"
	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/http/handlers"
	"github.com/repairops/backend/internal/http/middleware"
	"github.com/repairops/backend/internal/metrics"
	"github.com/repairops/backend/internal/service"

	_ "github.com/repairops/backend/docs"
)

func Router(cfg config.Config, store *db.Store, m *metrics.Metrics, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Actor-Id", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:         store,
		Router:        service.NewRouter(store, m, logger),
		Quota:         service.NewQuota(store, m, logger),
		Records:       service.NewRecords(store, logger),
		Technicians:   service.NewTechnicians(store, logger),
		Schedules:     service.NewSchedules(store, logger),
		Metrics:       m,
		Validator:     validator.New(),
		Logger:        logger,
		Env:           cfg.Env,
		WebhookSecret: cfg.WebhookSecret,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/webhooks/ringcentral", h.RingCentralWebhook)

	api := r.Group("/api")
	{
		api.GET("/technicians", h.TechniciansList)
		api.GET("/technicians/available", h.TechniciansAvailable)
		api.GET("/technicians/:id", h.TechnicianDetails)
		api.GET("/technicians/:id/quota", h.TechnicianQuotaStatus)
		api.GET("/schedules", h.SchedulesList)
		api.GET("/calls", h.CallsList)
		api.GET("/calls/stats", h.CallStats)
		api.GET("/calls/:id", h.CallDetails)
		api.GET("/service-records", h.RecordsList)
		api.GET("/service-records/stats", h.RecordStats)
		api.GET("/service-records/:id", h.RecordDetails)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/technicians", h.TechnicianCreate)
		admin.PATCH("/technicians/:id", h.TechnicianUpdate)
		admin.DELETE("/technicians/:id", h.TechnicianDelete)
		admin.POST("/technicians/:id/lock", h.TechnicianLock)
		admin.POST("/technicians/:id/unlock", h.TechnicianUnlock)
		admin.POST("/schedules", h.ScheduleCreate)
		admin.PATCH("/schedules/:id", h.ScheduleUpdate)
		admin.DELETE("/schedules/:id", h.ScheduleDelete)
		admin.POST("/service-records", h.RecordCreate)
		admin.PATCH("/service-records/:id", h.RecordUpdate)
		admin.POST("/service-records/:id/complete", h.RecordComplete)
		admin.POST("/service-records/:id/cancel", h.RecordCancel)
		admin.POST("/admin/quota-reset", h.AdminQuotaReset)
		admin.GET("/admin/config", h.AdminConfigList)
		admin.POST("/admin/config", h.AdminConfigUpdate)
		admin.GET("/admin/reports/performance", h.AdminPerformanceReport)
		admin.GET("/admin/audit-logs", h.AdminAuditLogs)
		admin.GET("/admin/dashboard", h.AdminDashboard)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
