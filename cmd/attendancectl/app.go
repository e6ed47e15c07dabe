package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	lateRequestService "github.com/cmlabs-hris/hris-attendance/internal/service/laterequest"
	scheduleService "github.com/cmlabs-hris/hris-attendance/internal/service/schedule"
)

// app holds the services a command needs. Metrics are not exported from
// short-lived commands.
type app struct {
	db           *database.DB
	attendance   attendance.AttendanceService
	lateRequests laterequest.LateRequestService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	policy, err := attendanceService.PolicyFromConfig(cfg.Attendance)
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	notifier, err := email.NewNotifier(cfg.SMTP)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize email notifier: %w", err)
	}

	txManager := postgresql.NewTxManager(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	resolver := scheduleService.NewResolver(
		postgresql.NewWorkTimeRepository(db),
		postgresql.NewShiftScheduleRepository(db),
	)
	engine := attendanceService.NewEngine(
		resolver,
		postgresql.NewDeductionRepository(db),
		postgresql.NewHolidayRepository(db),
		policy,
		metrics.Nop(),
	).WithCaller("cli")

	return &app{
		db:         db,
		attendance: attendanceService.NewAttendanceService(txManager, attendanceRepo, employeeRepo, engine),
		lateRequests: lateRequestService.NewLateRequestService(
			txManager,
			postgresql.NewLateRequestRepository(db),
			postgresql.NewHREmailRepository(db),
			attendanceRepo,
			employeeRepo,
			engine,
			notifier,
			metrics.Nop(),
			lateRequestService.Config{ReminderAge: cfg.Attendance.PendingReminderInterval},
		),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}
