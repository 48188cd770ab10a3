package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

const (
	annualLeaveID = "0191d5a0-0000-7000-8000-000000000001"
	sickLeaveID   = "0191d5a0-0000-7000-8000-000000000002"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// TestDatabaseSetup holds a migrated, emptied database and two employees.
type TestDatabaseSetup struct {
	DB         *database.DB
	ManagerID  string
	EmployeeID string
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	migrateOnce.Do(func() { migrateErr = database.MigratePostgres(dsn) })
	require.NoError(t, migrateErr)

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s := &TestDatabaseSetup{DB: db}
	require.NoError(t, s.TruncateAllTables(ctx))

	employees := postgresql.NewEmployeeRepository(db)
	suffix := time.Now().UnixNano()
	manager := employee.Employee{EmployeeCode: fmt.Sprintf("MGR-%d", suffix), FullName: "Maya Manager", Email: "maya@example.com", HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, employees.Create(ctx, &manager))
	worker := employee.Employee{EmployeeCode: fmt.Sprintf("EMP-%d", suffix), FullName: "Eli Employee", Email: "eli@example.com", ManagerID: &manager.ID, HireDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, employees.Create(ctx, &worker))

	s.ManagerID, s.EmployeeID = manager.ID, worker.ID
	return s
}

// TruncateAllTables empties every table except the seeded leave types.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `TRUNCATE TABLE audit_logs, notifications, leave_requests, leave_balances, holidays, employees CASCADE`)
	return err
}
