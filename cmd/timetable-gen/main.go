package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	internalhandler "github.com/campusplan/timetable-core/internal/handler"
	internalmiddleware "github.com/campusplan/timetable-core/internal/middleware"
	"github.com/campusplan/timetable-core/internal/repository"
	"github.com/campusplan/timetable-core/internal/service"
	"github.com/campusplan/timetable-core/internal/snapshot"
	"github.com/campusplan/timetable-core/pkg/cache"
	"github.com/campusplan/timetable-core/pkg/config"
	"github.com/campusplan/timetable-core/pkg/database"
	"github.com/campusplan/timetable-core/pkg/logger"
	"github.com/campusplan/timetable-core/pkg/metrics"
	corsmiddleware "github.com/campusplan/timetable-core/pkg/middleware/cors"
	reqidmiddleware "github.com/campusplan/timetable-core/pkg/middleware/requestid"
)

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

	settings, err := cfg.Scheduler.Settings()
	if err != nil {
		logr.Sugar().Fatalw("invalid scheduler settings", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	registry := metrics.New()

	courseRepo := repository.NewCourseRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	loader := snapshot.New(courseRepo, classroomRepo, teacherRepo, departmentRepo)

	defaults := service.Defaults{
		Preset:              cfg.Scheduler.DefaultPreset,
		MaxIterations:       cfg.Scheduler.DefaultMaxIterations,
		TimeoutMs:           cfg.Scheduler.DefaultTimeoutMs,
		OptimizationEnabled: true,
		ProposalTTL:         cfg.Scheduler.ProposalTTL,
	}

	var timetableSvc *service.TimetableService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-process proposal cache", "error", err)
		timetableSvc = service.NewTimetableService(loader, settings, scheduleRepo, defaults, logr, registry)
	} else {
		defer redisClient.Close()
		timetableSvc = service.NewTimetableServiceWithRedisCache(loader, settings, scheduleRepo, defaults, logr, registry, redisClient)
	}
	timetableHandler := internalhandler.NewTimetableHandler(timetableSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(registry))

	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(registry.Handler()))

	api := r.Group(cfg.APIPrefix)
	schedules := api.Group("/schedules")
	schedules.POST("/generate", timetableHandler.Generate)
	schedules.POST("/generate/stream", timetableHandler.StreamGenerate)
	schedules.POST("/save", timetableHandler.Save)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
