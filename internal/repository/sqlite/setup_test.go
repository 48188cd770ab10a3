package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/sqlite"
	"github.com/stretchr/testify/require"
)

const (
	annualLeaveID = "0191d5a0-0000-7000-8000-000000000001"
	sickLeaveID   = "0191d5a0-0000-7000-8000-000000000002"
	casualLeaveID = "0191d5a0-0000-7000-8000-000000000003"
)

type fixture struct {
	db         *sql.DB
	managerID  string
	employeeID string
}

// newFixture migrates a fresh database file and seeds a manager with one report.
func newFixture(t *testing.T) fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, database.MigrateSQLite(path))

	db, err := database.NewSQLiteDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	employees := sqlite.NewEmployeeRepository(db)
	manager := employee.Employee{EmployeeCode: "MGR-001", FullName: "Maya Manager", Email: "maya@example.com", HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, employees.Create(context.Background(), &manager))
	worker := employee.Employee{EmployeeCode: "EMP-001", FullName: "Eli Employee", Email: "eli@example.com", ManagerID: &manager.ID, HireDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, employees.Create(context.Background(), &worker))

	return fixture{db: db, managerID: manager.ID, employeeID: worker.ID}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
