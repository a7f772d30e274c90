package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hsms-backend/internal/config"
	"hsms-backend/internal/handlers"
	"hsms-backend/internal/lock"
	"hsms-backend/internal/middleware"
)

func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, locker lock.Locker) {
	router.Use(corsMiddleware(cfg.AllowedOriginsRaw))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "hsms-backend"})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db, cfg)
	staffHandler := handlers.NewStaffHandler(db, locker)
	staffingHandler := handlers.NewStaffingHandler(db)
	attendanceHandler := handlers.NewAttendanceHandler(db)
	leaveHandler := handlers.NewLeaveHandler(db)
	shiftHandler := handlers.NewShiftHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/forgot-password/start", authHandler.ForgotPasswordStart)
		api.POST("/auth/forgot-password/verify", authHandler.ForgotPasswordVerify)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(cfg.JwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me/password", authHandler.ChangePassword)
		protected.GET("/dashboard", dashboardHandler.Get)

		protected.GET("/staff", staffHandler.List)
		protected.GET("/staff/:id", staffHandler.Get)
		protected.POST("/staff", middleware.RequireAnyRole("admin", "manager"), staffHandler.Create)
		protected.PUT("/staff/:id", middleware.RequireAnyRole("admin", "manager"), staffHandler.Update)
		protected.DELETE("/staff/:id", middleware.RequireAnyRole("admin"), staffHandler.Delete)

		protected.GET("/staffing/status", staffingHandler.Status)

		protected.GET("/attendance", attendanceHandler.List)
		protected.POST("/attendance/mark", attendanceHandler.Mark)
		protected.POST("/attendance/quick-mark", attendanceHandler.QuickMark)
		protected.POST("/attendance/leave", attendanceHandler.MarkLeave)
		protected.POST("/attendance/bulk", attendanceHandler.BulkMark)
		protected.GET("/attendance/summary/weekly", attendanceHandler.WeeklySummary)
		protected.GET("/attendance/report", middleware.RequireAnyRole("admin", "manager"), attendanceHandler.MonthlyReport)

		protected.GET("/leave/requests", leaveHandler.List)
		protected.POST("/leave/requests", leaveHandler.Apply)
		protected.PATCH("/leave/requests/:id/approve", middleware.RequireAnyRole("admin", "manager"), leaveHandler.Approve)
		protected.PATCH("/leave/requests/:id/reject", middleware.RequireAnyRole("admin", "manager"), leaveHandler.Reject)
		protected.PATCH("/leave/requests/:id/cancel", leaveHandler.Cancel)
		protected.GET("/leave/stats", leaveHandler.Stats)

		protected.GET("/shifts", shiftHandler.List)
		protected.POST("/shifts", middleware.RequireAnyRole("admin", "manager"), shiftHandler.Add)
		protected.PUT("/shifts/:id", middleware.RequireAnyRole("admin", "manager"), shiftHandler.Update)
		protected.DELETE("/shifts/:id", middleware.RequireAnyRole("admin", "manager"), shiftHandler.Delete)
		protected.GET("/shifts/schedule", shiftHandler.Schedule)
		protected.GET("/shifts/stats", shiftHandler.Stats)
	}
}

func corsMiddleware(allowed string) gin.HandlerFunc {
	origins := []string{}
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range origins {
				if origin == allowedOrigin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Vary", "Origin")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
