package app

import (
	"skillpath_backend/docs"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/middleware"
	"skillpath_backend/internal/model"
	"skillpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 目录只读接口
		catalogGroup := public.Group("/catalog")
		{
			catalogGroup.GET("/skills", c.catalog.Skills)
			catalogGroup.GET("/steps", c.catalog.Steps)
			catalogGroup.GET("/resources", c.catalog.Resources)
		}
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/me", c.auth.Me)
		authGroup.PUT("/profile", c.user.UpdateProfile)
		authGroup.POST("/profile/avatar", c.user.UploadAvatar)
		authGroup.PUT("/profile/password", c.user.ChangePassword)

		// 测评会话
		intake := authGroup.Group("/intake")
		{
			intake.POST("/sessions", c.intake.StartSession)
			intake.GET("/sessions/:id/step", c.intake.CurrentStep)
			intake.POST("/sessions/:id/answers", c.intake.SubmitAnswer)
			intake.POST("/sessions/:id/back", c.intake.GoBack)
			intake.GET("/sessions/:id/summary", c.intake.Summary)
		}

		// 掌握度画像
		mastery := authGroup.Group("/mastery")
		{
			mastery.GET("/profile", c.mastery.MyProfile)
			mastery.GET("/events", c.mastery.MyEvents)
		}

		// 学习路线图
		roadmap := authGroup.Group("/roadmap")
		{
			roadmap.GET("", c.roadmap.MyRoadmap)
			roadmap.PUT("/items/:itemId", c.roadmap.UpdateItem)
		}

		// 学习助手
		authGroup.POST("/assistant/ask", c.assistant.Ask)

		// 教师接口（管理员自动放行）
		instructor := authGroup.Group("/instructor")
		instructor.Use(middleware.RoleMiddleware(model.Instructor))
		{
			instructor.GET("/students", c.user.ListStudents)
			instructor.GET("/students/:id/mastery", c.mastery.StudentProfile)
			instructor.GET("/students/:id/events", c.mastery.StudentEvents)
			instructor.GET("/students/:id/roadmap", c.roadmap.StudentRoadmap)
			instructor.GET("/intake/sessions", c.intake.ListSessions)
			instructor.POST("/intake/sessions/:id/abandon", c.intake.AbandonSession)
		}

		// 管理员接口
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/users", c.user.GetUsers)
			admin.PUT("/users/:id", c.user.UpdateUser)
			admin.PUT("/users/:id/disable", c.user.DisableUser)
		}
	}
}
