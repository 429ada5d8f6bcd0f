package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/platebank/config"
	"github.com/lshigami/platebank/database"
	_ "github.com/lshigami/platebank/docs" // Swagger docs
	adminctrl "github.com/lshigami/platebank/internal/controller/admin"
	pagectrl "github.com/lshigami/platebank/internal/controller/page"
	"github.com/lshigami/platebank/internal/logger"
	"github.com/lshigami/platebank/internal/repository"
	"github.com/lshigami/platebank/internal/service"
	"github.com/lshigami/platebank/internal/storage"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Colour Vision Plate Bank Admin API
// @version 1.0
// @description Admin API for managing a bank of colour vision test plates and their answers.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // *gorm.DB, single connection
			NewGinEngine,
		),

		fx.Provide(
			repository.NewQuestionRepository,
		),

		fx.Provide(
			storage.NewImageMaterializer,
			func(m *storage.ImageMaterializer) service.ImageStore { return m },
			service.NewGeminiAdvisor,
			service.NewQuestionService,
		),

		fx.Provide(
			adminctrl.NewQuestionController,
			pagectrl.NewPageController,
		),

		fx.Invoke(ApplyLogLevel),
		fx.Invoke(InitSchema),
		fx.Invoke(CloseDatabaseOnStop),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func ApplyLogLevel(cfg *config.Config) {
	logger.SetLevel(cfg.LogLevel)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Multipart bodies beyond this stay on disk instead of memory.
	r.MaxMultipartMemory = cfg.Storage.MaxUploadMB << 20

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

// InitSchema creates the questions table on first run.
func InitSchema(repo repository.QuestionRepository) error {
	log.Info().Msg("Ensuring question schema...")
	if err := repo.Init(); err != nil {
		log.Error().Err(err).Msg("Schema initialisation failed")
		return err
	}
	return nil
}

// CloseDatabaseOnStop releases the single store connection once the server has stopped.
func CloseDatabaseOnStop(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

// RegisterRoutesAndStartServer configures routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	questionCtrl *adminctrl.QuestionController,
	pageCtrl *pagectrl.PageController,
) {
	router.Static("/images", cfg.Storage.ImageDir)
	pageCtrl.RegisterRoutes(router)
	questionCtrl.RegisterRoutes(router.Group("/api/v1/admin"))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Plate bank admin starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
