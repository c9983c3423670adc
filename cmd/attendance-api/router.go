package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/handler"
	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/config"
	"github.com/noah-isme/attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/requestid"
)

type routerDeps struct {
	metrics    *service.MetricsService
	db         *sqlx.DB
	auth       *service.AuthService
	stats      *service.StatsService
	attendance *service.AttendanceService
	subjects   *service.SubjectService
	timetable  *service.TimetableService
	calendar   *service.CalendarService
	reports    *service.ReportService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	statsHandler := handler.NewStatsHandler(deps.stats)
	attendanceHandler := handler.NewAttendanceHandler(deps.attendance)
	subjectHandler := handler.NewSubjectHandler(deps.subjects)
	timetableHandler := handler.NewTimetableHandler(deps.timetable)
	calendarHandler := handler.NewCalendarHandler(deps.calendar)
	reportHandler := handler.NewReportHandler(deps.reports)

	api := r.Group(cfg.APIPrefix)
	// signed tokens authorise downloads on their own
	api.GET("/reports/download/:token", reportHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.auth))

	secured.GET("/metrics/summary", metricsHandler.Summary)

	secured.GET("/stats", statsHandler.Stats)
	secured.GET("/stats/margins", statsHandler.Margins)
	secured.GET("/stats/subjects/:subjectId/margin", statsHandler.SubjectMargin)
	secured.GET("/stats/od-hours", statsHandler.ODHours)
	secured.GET("/sessions", statsHandler.Sessions)
	secured.POST("/simulations/leave", statsHandler.SimulateLeave)

	secured.GET("/attendance", attendanceHandler.List)
	secured.PUT("/attendance", attendanceHandler.Upsert)
	secured.DELETE("/attendance", attendanceHandler.Delete)

	secured.GET("/subjects", subjectHandler.List)
	secured.POST("/subjects", subjectHandler.Create)
	secured.DELETE("/subjects/:id", subjectHandler.Delete)

	secured.GET("/timetable", timetableHandler.List)
	secured.POST("/timetable", timetableHandler.Place)
	secured.DELETE("/timetable/:id", timetableHandler.Delete)

	secured.GET("/holidays", calendarHandler.ListHolidays)
	secured.POST("/holidays", calendarHandler.CreateHoliday)
	secured.DELETE("/holidays/:id", calendarHandler.DeleteHoliday)
	secured.GET("/semester", calendarHandler.GetSemester)
	secured.PUT("/semester", calendarHandler.SaveSemester)

	secured.POST("/reports/attendance", reportHandler.Generate)

	return r
}
