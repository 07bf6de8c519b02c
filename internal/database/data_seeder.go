package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/logger"
	"github.com/locvowork/sales_bonus/internal/repository/builder"
)

type DataSeeder struct {
	db        *sql.DB
	employees domain.EmployeeRecordRepository
	sales     domain.SalesSource
}

func NewDataSeeder(db *sql.DB, employees domain.EmployeeRecordRepository, sales domain.SalesSource) *DataSeeder {
	return &DataSeeder{db: db, employees: employees, sales: sales}
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetMax    SeedPreset = "max"
)

// GetPresetConfig returns the department and employee counts for a preset.
func GetPresetConfig(preset SeedPreset) (numDepartments, numEmployees int) {
	switch preset {
	case PresetSmall:
		return 3, 20
	case PresetMedium:
		return 5, 1000
	case PresetLarge:
		return 10, 10000
	case PresetMax:
		return 2, 65535
	default:
		return 5, 1000
	}
}

// GenerateData builds a deterministic data set for the given seed. Department
// names are D01, D02, ...; salaries fall in [8000, 25000) and roughly one in
// ten employees is a manager.
func GenerateData(numDepartments, numEmployees int, seed int64) ([]domain.EmployeeRecord, domain.DepartmentSales) {
	r := rand.New(rand.NewSource(seed))

	depts := make([]string, numDepartments)
	sales := make(domain.DepartmentSales, numDepartments)
	for i := range depts {
		depts[i] = fmt.Sprintf("D%02d", i+1)
		sales[depts[i]] = float64(1000 * (r.Intn(50) + 1))
	}

	records := make([]domain.EmployeeRecord, numEmployees)
	for i := range records {
		dept := ""
		if numDepartments > 0 {
			dept = depts[r.Intn(numDepartments)]
		}
		records[i] = domain.EmployeeRecord{
			ID:         i + 1,
			Department: dept,
			Salary:     8000 + r.Intn(17000),
			IsManager:  r.Intn(10) == 0,
		}
	}
	return records, sales
}

// SeedData generates and stores employees and department sales.
func (ds *DataSeeder) SeedData(ctx context.Context, numDepartments, numEmployees int, seed int64) error {
	start := time.Now()
	logger.InfoLog(ctx, "Seeding %d departments and %d employees (seed=%d)", numDepartments, numEmployees, seed)

	records, sales := GenerateData(numDepartments, numEmployees, seed)

	if err := ds.sales.Upsert(ctx, sales); err != nil {
		return fmt.Errorf("failed to insert department sales: %w", err)
	}
	logger.InfoLog(ctx, "Created %d department sales rows", len(sales))

	if err := ds.employees.BatchCreate(ctx, records); err != nil {
		return fmt.Errorf("failed to insert employee records: %w", err)
	}
	logger.InfoLog(ctx, "Created %d employee records", len(records))

	logger.InfoLog(ctx, "Seeding done in %v", time.Since(start))
	return nil
}

// ClearData removes every employee record and clears the configured sales source.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	query, _ := builder.NewSQLBuilder().Delete("employee_record").Build()
	if _, err := ds.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to delete employee records: %w", err)
	}
	logger.InfoLog(ctx, "Cleared employee records")

	if err := ds.sales.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear department sales: %w", err)
	}
	logger.InfoLog(ctx, "Cleared department sales")
	return nil
}
