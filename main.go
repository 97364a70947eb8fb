package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"studybud/internal/api"
	"studybud/internal/middleware"
	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/internal/service"
	"studybud/internal/storage"
	"studybud/internal/utils"
	"studybud/internal/view"
	"studybud/pkg/config"
	"studybud/pkg/logger"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.Log.File, cfg.Log.Production)

	// 初始化資料庫連接
	db, err := storage.NewDatabase(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, utils.NewPasswordHasher(0), appLogger)
	sessions := middleware.NewSessionManager(cfg.Session, services.User, appLogger)

	renderer, err := view.NewHTMLRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// 設置 Gin 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(appLogger))
	renderer.Install(r)
	api.SetupRoutes(r, services, sessions, renderer, db, appLogger)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("main", "server listening", map[string]interface{}{"address": cfg.Server.Address, "db_driver": cfg.DB.Driver})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("main", "server stopped unexpectedly", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	// 收到訊號後先停止接收請求，再關閉資料庫
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"studybud": func(ctx context.Context) error {
				appLogger.Info("main", "graceful shutdown initiated", nil)
				serverErr := server.Shutdown(ctx)
				dbErr := db.Close()
				_ = appLogger.Sync()
				return errors.Join(serverErr, dbErr)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
