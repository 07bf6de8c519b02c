package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/repository/builder"
)

const (
	employeeRecordTable = "employee_record"
	// keeps a multi-row insert well below the postgres parameter limit
	insertBatchSize = 1000
)

var employeeRecordColumns = []string{"id", "department", "salary", "is_manager"}

type employeeRecordRepository struct {
	db *sql.DB
}

// NewEmployeeRecordRepository creates a new instance of EmployeeRecordRepository
func NewEmployeeRecordRepository(db *sql.DB) domain.EmployeeRecordRepository {
	return &employeeRecordRepository{db: db}
}

func (r *employeeRecordRepository) List(ctx context.Context, filter domain.EmployeeRecordFilter) ([]domain.EmployeeRecord, error) {
	b := builder.NewSQLBuilder()
	b.Select(employeeRecordColumns...).
		From(employeeRecordTable)

	if filter.Department != "" {
		b.Where("department = ?", filter.Department)
	}
	b.OrderBy("id ASC")
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee records: %w", err)
	}
	defer rows.Close()

	var records []domain.EmployeeRecord
	for rows.Next() {
		var e domain.EmployeeRecord
		if err := rows.Scan(&e.ID, &e.Department, &e.Salary, &e.IsManager); err != nil {
			return nil, fmt.Errorf("failed to scan employee record: %w", err)
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return records, nil
}

// UpdateSalaries writes the salary of every given record in one transaction.
// A record that no longer exists aborts the whole update.
func (r *employeeRecordRepository) UpdateSalaries(ctx context.Context, records []domain.EmployeeRecord) error {
	if len(records) == 0 {
		return nil
	}

	query, _ := builder.NewSQLBuilder().
		Update(employeeRecordTable).
		Set("salary", nil).
		Where("id = ?", nil).
		Build()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare salary update: %w", err)
	}
	defer stmt.Close()

	for _, e := range records {
		res, err := stmt.ExecContext(ctx, e.Salary, e.ID)
		if err != nil {
			return fmt.Errorf("failed to update salary of employee %d: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows for employee %d: %w", e.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("employee %d: %w", e.ID, sql.ErrNoRows)
		}
	}

	return tx.Commit()
}

func (r *employeeRecordRepository) BatchCreate(ctx context.Context, records []domain.EmployeeRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		b := builder.NewSQLBuilder().Insert(employeeRecordTable, employeeRecordColumns...)
		for _, e := range records[start:end] {
			b.Values(e.ID, e.Department, e.Salary, e.IsManager)
		}
		query, args := b.OnConflict("(id) DO NOTHING").Build()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert employee records %d-%d: %w", start, end, err)
		}
	}

	return tx.Commit()
}
