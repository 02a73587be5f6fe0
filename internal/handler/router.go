package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/middleware"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/service"
)

// Handlers is the set of HTTP handlers mounted on the router.
type Handlers struct {
	Auth          *AuthHandler
	Requests      *RequestHandler
	Notifications *NotificationHandler
	Schedule      *ScheduleHandler
	AdminLogs     *AdminLogHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts all API routes. Timetable reads are public;
// the request workflow needs a token, resolution and admin surfaces
// need the admin role.
func RegisterRoutes(r *gin.Engine, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group("/api/v1")

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", middleware.JWT(auth), h.Auth.Me)

	schedule := api.Group("/schedule")
	{
		schedule.GET("", h.Schedule.List)
		schedule.GET("/search", h.Schedule.Search)
		schedule.GET("/specialties", h.Schedule.Specialties)
		schedule.GET("/special-days", h.Schedule.SpecialDays)
		schedule.GET("/export", h.Schedule.Export)
		schedule.GET("/:id", h.Schedule.Get)
	}

	scheduleAdmin := api.Group("/schedule", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin))
	{
		scheduleAdmin.POST("", h.Schedule.Create)
		scheduleAdmin.PATCH("/:id", h.Schedule.Update)
		scheduleAdmin.DELETE("/:id", h.Schedule.Delete)
		scheduleAdmin.POST("/import", h.Schedule.Import)
		scheduleAdmin.POST("/special-days", h.Schedule.AddSpecialDay)
	}

	requests := api.Group("/requests", middleware.JWT(auth))
	{
		requests.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), h.Requests.Create)
		requests.GET("", h.Requests.List)
		requests.GET("/:id", h.Requests.Get)
		requests.POST("/:id/approve", middleware.RequireRoles(models.RoleAdmin), h.Requests.Approve)
		requests.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin), h.Requests.Reject)
	}

	notifications := api.Group("/notifications", middleware.JWT(auth))
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/:id/read", h.Notifications.MarkRead)
		notifications.POST("/read-all", h.Notifications.MarkAllRead)
	}

	adminLogs := api.Group("/admin/logs", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin))
	{
		adminLogs.GET("", h.AdminLogs.List)
		adminLogs.GET("/export", h.AdminLogs.Export)
	}
}
