package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	lateRequestService "github.com/cmlabs-hris/hris-attendance/internal/service/laterequest"
	scheduleService "github.com/cmlabs-hris/hris-attendance/internal/service/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	policy, err := attendanceService.PolicyFromConfig(cfg.Attendance)
	if err != nil {
		log.Fatal("Invalid attendance policy: ", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	txManager := postgresql.NewTxManager(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	workTimeRepo := postgresql.NewWorkTimeRepository(db)
	shiftScheduleRepo := postgresql.NewShiftScheduleRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	lateRequestRepo := postgresql.NewLateRequestRepository(db)
	hrEmailRepo := postgresql.NewHREmailRepository(db)

	resolver := scheduleService.NewResolver(workTimeRepo, shiftScheduleRepo)
	engine := attendanceService.NewEngine(resolver, deductionRepo, holidayRepo, policy, m)

	notifier, err := email.NewNotifier(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email notifier: ", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	attendanceSvc := attendanceService.NewAttendanceService(txManager, attendanceRepo, employeeRepo, engine.WithCaller("attendance"))
	lateRequestSvc := lateRequestService.NewLateRequestService(
		txManager,
		lateRequestRepo,
		hrEmailRepo,
		attendanceRepo,
		employeeRepo,
		engine.WithCaller("late_request"),
		notifier,
		m,
		lateRequestService.Config{ReminderAge: cfg.Attendance.PendingReminderInterval},
	)

	scheduler := cron.NewScheduler()
	cron.NewLateRequestJobs(lateRequestSvc, cfg.Attendance.PendingReminderCheckInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			App:       cfg.App,
			RateLimit: cfg.RateLimit,
			Metrics:   promhttp.Handler(),
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLateRequestHandler(lateRequestSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
