package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-ledger/internal/config"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/postgresql"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/sqlite"
)

// repositories is the storage-backed half of the wiring; both drivers fill it.
type repositories struct {
	uow           leave.UnitOfWork
	ledger        leave.BalanceLedger
	requests      leave.RequestStore
	leaveTypes    leave.LeaveTypeRepository
	holidays      holiday.Repository
	employees     employee.Repository
	notifications notification.Repository
	auditLogs     audit.Repository

	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn := cfg.DatabaseURL()
		if cfg.Storage.AutoMigrate {
			if err := database.MigratePostgres(dsn); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("storage ready", slog.String("driver", cfg.Storage.Driver), slog.String("host", cfg.Database.Host))
		return &repositories{
			uow:           postgresql.NewUnitOfWork(db),
			ledger:        postgresql.NewLeaveBalanceRepository(db),
			requests:      postgresql.NewLeaveRequestRepository(db),
			leaveTypes:    postgresql.NewLeaveTypeRepository(db),
			holidays:      postgresql.NewHolidayRepository(db),
			employees:     postgresql.NewEmployeeRepository(db),
			notifications: postgresql.NewNotificationRepository(db),
			auditLogs:     postgresql.NewAuditLogRepository(db),
			close:         db.Close,
		}, nil

	case config.DriverSQLite:
		if cfg.Storage.AutoMigrate {
			if err := database.MigrateSQLite(cfg.Storage.SQLitePath); err != nil {
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		db, err := database.NewSQLiteDB(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("storage ready", slog.String("driver", cfg.Storage.Driver), slog.String("path", cfg.Storage.SQLitePath))
		return &repositories{
			uow:           sqlite.NewUnitOfWork(db),
			ledger:        sqlite.NewLeaveBalanceRepository(db),
			requests:      sqlite.NewLeaveRequestRepository(db),
			leaveTypes:    sqlite.NewLeaveTypeRepository(db),
			holidays:      sqlite.NewHolidayRepository(db),
			employees:     sqlite.NewEmployeeRepository(db),
			notifications: sqlite.NewNotificationRepository(db),
			auditLogs:     sqlite.NewAuditLogRepository(db),
			close:         func() { _ = db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
