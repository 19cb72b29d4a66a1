package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dineshrk/timegrid-api/api/swagger"
	"github.com/dineshrk/timegrid-api/internal/handler"
	"github.com/dineshrk/timegrid-api/internal/middleware"
	"github.com/dineshrk/timegrid-api/internal/repository"
	"github.com/dineshrk/timegrid-api/internal/service"
	"github.com/dineshrk/timegrid-api/pkg/cache"
	"github.com/dineshrk/timegrid-api/pkg/config"
	"github.com/dineshrk/timegrid-api/pkg/database"
	"github.com/dineshrk/timegrid-api/pkg/logger"
	corsmiddleware "github.com/dineshrk/timegrid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dineshrk/timegrid-api/pkg/middleware/requestid"
)

// @title TimeGrid API
// @version 1.0.0
// @description Weekly school timetable generation and publishing service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, snapshot cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	groupRepo := repository.NewStudentGroupRepository(db)
	prefRepo := repository.NewTeacherPreferenceRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	metricsSvc := service.NewMetricsService()
	timetableSvc := service.NewTimetableService(timetableRepo, redisClient, cfg.Cache.SnapshotTTL, cfg.Export.SchoolName, logr)
	generatorSvc := service.NewTimetableGeneratorService(
		teacherRepo,
		classroomRepo,
		subjectRepo,
		groupRepo,
		prefRepo,
		timetableRepo,
		timetableSvc,
		metricsSvc,
		logr,
	)
	prefSvc := service.NewTeacherPreferenceService(prefRepo, teacherRepo, validate, logr)

	timetableHandler := handler.NewTimetableHandler(generatorSvc, timetableSvc)
	prefHandler := handler.NewTeacherPreferenceHandler(prefSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.GET("/timetable", timetableHandler.Active)
		api.GET("/timetable/teachers/:id", timetableHandler.ByTeacher)
		api.GET("/timetable/groups/:id", timetableHandler.ByGroup)
		api.GET("/timetable/days/:day", timetableHandler.ByDay)
		api.GET("/timetable/export/csv", timetableHandler.ExportCSV)
		api.GET("/timetable/export/pdf", timetableHandler.ExportPDF)

		api.GET("/teachers/:id/preferences", prefHandler.Get)
		api.PUT("/teachers/:id/preferences", prefHandler.Upsert)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
