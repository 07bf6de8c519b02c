package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/repository/builder"
)

const departmentSalesTable = "department_sales"

// DepartmentSalesRepository manages the department_sales table
type DepartmentSalesRepository struct {
	db *sql.DB
}

// NewDepartmentSalesRepository creates a new repository
func NewDepartmentSalesRepository(db *sql.DB) *DepartmentSalesRepository {
	return &DepartmentSalesRepository{db: db}
}

// GetAll loads the whole department sales mapping.
func (r *DepartmentSalesRepository) GetAll(ctx context.Context) (domain.DepartmentSales, error) {
	query, args := builder.NewSQLBuilder().
		Select("department", "sales").
		From(departmentSalesTable).
		OrderBy("department ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get department sales: %w", err)
	}
	defer rows.Close()

	sales := domain.DepartmentSales{}
	for rows.Next() {
		var row domain.DepartmentSalesRow
		if err := rows.Scan(&row.Department, &row.Sales); err != nil {
			return nil, fmt.Errorf("failed to scan department sales: %w", err)
		}
		sales[row.Department] = row.Sales
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return sales, nil
}

// Upsert inserts or replaces the sales figure of every given department.
func (r *DepartmentSalesRepository) Upsert(ctx context.Context, sales domain.DepartmentSales) error {
	if len(sales) == 0 {
		return nil
	}

	depts := make([]string, 0, len(sales))
	for d := range sales {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(depts); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(depts) {
			end = len(depts)
		}

		b := builder.NewSQLBuilder().Insert(departmentSalesTable, "department", "sales")
		for _, d := range depts[start:end] {
			b.Values(d, sales[d])
		}
		query, args := b.OnConflict("(department) DO UPDATE SET sales = EXCLUDED.sales").Build()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert department sales %d-%d: %w", start, end, err)
		}
	}

	return tx.Commit()
}

// Clear removes every department sales row.
func (r *DepartmentSalesRepository) Clear(ctx context.Context) error {
	query, _ := builder.NewSQLBuilder().Delete(departmentSalesTable).Build()
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear department sales: %w", err)
	}
	return nil
}
