package api

import (
	"github.com/gin-gonic/gin"

	"studybud/internal/api/handlers"
	"studybud/internal/middleware"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

const loginPath = "/login/"

func SetupRoutes(r *gin.Engine, services *service.Services, sessions *middleware.SessionManager, renderer view.Renderer, db handlers.Pinger, log logger.Logger) {
	// 初始化 handlers
	roomHandler := handlers.NewRoomHandler(services.Room, services.Message, renderer, log)
	authHandler := handlers.NewAuthHandler(services.User, sessions, renderer, log)
	userHandler := handlers.NewUserHandler(services.User, renderer, log)
	browseHandler := handlers.NewBrowseHandler(services.Topic, services.Message, renderer, log)
	feedHandler := handlers.NewFeedHandler(services.Room, services.Feed, renderer, log)
	healthHandler := handlers.NewHealthHandler(db, log)

	r.Use(sessions.Resolve())

	// 處理 404 錯誤
	r.NoRoute(userHandler.NotFound)

	loginRequired := middleware.LoginRequired(loginPath)

	// 公開路由
	r.GET("/", roomHandler.Index)
	r.GET("/room/:id/", roomHandler.Room)
	r.GET("/room/:id/ws", feedHandler.Subscribe)
	r.GET("/topics/", browseHandler.Topics)
	r.GET("/activity/", browseHandler.Activity)
	r.GET("/health", healthHandler.Health)

	// 用戶認證相關
	r.GET(loginPath, authHandler.LoginPage)
	r.POST(loginPath, authHandler.Login)
	r.GET("/register/", authHandler.RegisterPage)
	r.POST("/register/", authHandler.Register)
	r.GET("/logout/", authHandler.Logout)

	// 需要登入的路由
	authorized := r.Group("/")
	authorized.Use(loginRequired)
	{
		authorized.POST("/room/:id/", roomHandler.PostMessage)

		authorized.GET("/create-room/", roomHandler.CreateRoomForm)
		authorized.POST("/create-room/", roomHandler.CreateRoom)
		authorized.GET("/update-room/:id/", roomHandler.UpdateRoomForm)
		authorized.POST("/update-room/:id/", roomHandler.UpdateRoom)
		authorized.GET("/delete-room/:id/", roomHandler.DeleteRoomConfirm)
		authorized.POST("/delete-room/:id/", roomHandler.DeleteRoom)
		authorized.GET("/delete-message/:id/", roomHandler.DeleteMessageConfirm)
		authorized.POST("/delete-message/:id/", roomHandler.DeleteMessage)

		authorized.GET("/profile/:id/", userHandler.Profile)
		authorized.GET("/update-user/", userHandler.UpdateUserForm)
		authorized.POST("/update-user/", userHandler.UpdateUser)
	}
}
