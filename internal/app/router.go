package app

import (
	"cyberguard_backend/docs"
	"cyberguard_backend/internal/config"
	"cyberguard_backend/internal/middleware"
	"cyberguard_backend/internal/model"

	"cyberguard_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerMemberRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/register", c.auth.Register)
			auth.POST("/login", c.auth.Login)
			auth.POST("/logout", c.auth.Logout)
		}
	}
}

func (a *App) registerMemberRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)
	group.PUT("/users/profile", c.user.UpdateProfile)

	// 评估
	assessments := group.Group("/assessments")
	{
		assessments.POST("", c.assessment.Create)
		assessments.GET("", c.assessment.List)
		assessments.GET("/:id", c.assessment.Get)
		assessments.PATCH("/:id", c.assessment.Update)
		assessments.DELETE("/:id", c.assessment.Delete)

		assessments.POST("/:id/questions", c.assessment.AddQuestion)
		assessments.GET("/:id/questions", c.assessment.ListQuestions)

		assessments.PUT("/:id/progress", c.assessment.SaveProgress)
		assessments.GET("/:id/progress", c.assessment.GetProgress)

		assessments.POST("/:id/submit", c.assessment.Submit)
		assessments.GET("/:id/submissions", c.assessment.ListSubmissions)
	}
	group.PATCH("/questions/:id", c.assessment.UpdateQuestion)
	group.DELETE("/questions/:id", c.assessment.DeleteQuestion)

	group.GET("/submissions/mine", c.assessment.MySubmissions)
	group.GET("/submissions/:id", c.assessment.GetSubmission)
	group.GET("/submissions/:id/report", c.report.GetBySubmission)

	// 风险登记册
	risks := group.Group("/risks")
	{
		risks.POST("", c.risk.Create)
		risks.GET("", c.risk.List)
		risks.GET("/:id", c.risk.Get)
		risks.PATCH("/:id", c.risk.Update)
		risks.DELETE("/:id", c.risk.Delete)
	}

	// 资产清单
	assets := group.Group("/assets")
	{
		assets.POST("", c.asset.Create)
		assets.GET("", c.asset.List)
		assets.GET("/:id", c.asset.Get)
		assets.PATCH("/:id", c.asset.Update)
		assets.DELETE("/:id", c.asset.Delete)
	}

	// 合规框架与控制项
	frameworks := group.Group("/frameworks")
	{
		frameworks.POST("", c.framework.Create)
		frameworks.GET("", c.framework.List)
		frameworks.GET("/:id", c.framework.Get)
		frameworks.PATCH("/:id", c.framework.Update)
		frameworks.DELETE("/:id", c.framework.Delete)

		frameworks.POST("/:id/controls", c.framework.AddControl)
		frameworks.GET("/:id/controls", c.framework.ListControls)
	}
	group.PATCH("/controls/:id", c.framework.UpdateControl)
	group.DELETE("/controls/:id", c.framework.DeleteControl)

	// DPIA
	dpias := group.Group("/dpias")
	{
		dpias.POST("", c.dpia.Create)
		dpias.GET("", c.dpia.List)
		dpias.GET("/:id", c.dpia.Get)
		dpias.PATCH("/:id", c.dpia.Update)
		dpias.DELETE("/:id", c.dpia.Delete)
	}

	// 报告
	reports := group.Group("/reports")
	{
		reports.GET("", c.report.List)
		reports.GET("/:id", c.report.Get)
	}

	// AI 顾问
	ai := group.Group("/ai")
	{
		ai.POST("/chat", c.ai.Chat)
		ai.GET("/chat/ws", c.ai.ChatWS)
		ai.GET("/history", c.ai.History)
		ai.DELETE("/history", c.ai.ClearHistory)
		ai.POST("/generate-report", c.ai.GenerateReport)
		ai.POST("/realtime/session", c.ai.RealtimeSession)
		ai.POST("/speech", c.ai.Speech)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.RoleAdmin),
	)
	{
		admin.GET("/users", c.user.List)
		admin.POST("/users/:id/approve", c.user.Approve)
		admin.POST("/users/:id/reject", c.user.Reject)
		admin.PUT("/users/:id/role", c.user.UpdateRole)
		admin.DELETE("/users/:id", c.user.Delete)

		admin.GET("/settings", c.user.GetSettings)
		admin.PUT("/settings", c.user.UpdateSettings)
	}
}
