package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidEmployee        = errors.New("invalid employee record")
	ErrInvalidSales           = errors.New("invalid department sales")
	ErrSalesSourceUnavailable = errors.New("sales source unavailable")
)

// ==================== BONUS INPUTS ====================

// EmployeeRecord represents the employee_record table
type EmployeeRecord struct {
	ID         int    `json:"id" db:"id"`
	Department string `json:"department" db:"department"`
	Salary     int    `json:"salary" db:"salary"`
	IsManager  bool   `json:"is_manager" db:"is_manager"`
}

// Validate rejects records the calculator cannot reason about.
func (e EmployeeRecord) Validate() error {
	if e.Department == "" {
		return fmt.Errorf("%w: employee %d has no department", ErrInvalidEmployee, e.ID)
	}
	if e.Salary < 0 {
		return fmt.Errorf("%w: employee %d has negative salary %d", ErrInvalidEmployee, e.ID, e.Salary)
	}
	return nil
}

// DepartmentSales maps a department identifier to its sales figure.
type DepartmentSales map[string]float64

// Validate rejects blank department names and non-finite figures. Negative
// figures are legal sales results.
func (s DepartmentSales) Validate() error {
	for dept, sales := range s {
		if dept == "" {
			return fmt.Errorf("%w: empty department name", ErrInvalidSales)
		}
		if math.IsNaN(sales) || math.IsInf(sales, 0) {
			return fmt.Errorf("%w: department %s has sales %v", ErrInvalidSales, dept, sales)
		}
	}
	return nil
}

// DepartmentSalesRow represents the department_sales table
type DepartmentSalesRow struct {
	Department string  `json:"department" db:"department"`
	Sales      float64 `json:"sales" db:"sales"`
}

// EmployeeRecordFilter defines criteria for listing employee records
type EmployeeRecordFilter struct {
	Department string
	Limit      int
	Offset     int
}

// ==================== BONUS OUTCOME ====================

// BonusStatus is the outcome of a bonus calculation.
type BonusStatus int

const (
	BonusApplied BonusStatus = iota
	BonusNoData
	BonusNotApplicable
)

// Code returns the numeric status code (0, 1 or 2).
func (s BonusStatus) Code() int {
	return int(s)
}

func (s BonusStatus) String() string {
	switch s {
	case BonusApplied:
		return "applied"
	case BonusNoData:
		return "no_data"
	case BonusNotApplicable:
		return "not_applicable"
	default:
		return fmt.Sprintf("BonusStatus(%d)", int(s))
	}
}

// ParseBonusStatus is the inverse of BonusStatus.String.
func ParseBonusStatus(s string) (BonusStatus, error) {
	switch s {
	case "applied":
		return BonusApplied, nil
	case "no_data":
		return BonusNoData, nil
	case "not_applicable":
		return BonusNotApplicable, nil
	}
	return 0, fmt.Errorf("unknown bonus status %q", s)
}

func (s BonusStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BonusStatus) UnmarshalText(b []byte) error {
	v, err := ParseBonusStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SalaryAdjustment records a single salary change made by a bonus run.
type SalaryAdjustment struct {
	ID         int    `json:"id"`
	Department string `json:"department"`
	OldSalary  int    `json:"old_salary"`
	NewSalary  int    `json:"new_salary"`
	Increment  int    `json:"increment"`
}

// BonusRun summarizes one evaluation of the bonus rule.
type BonusRun struct {
	RunID               string             `json:"run_id"`
	Status              BonusStatus        `json:"status"`
	Code                int                `json:"code"`
	MaxSales            float64            `json:"max_sales"`
	EligibleDepartments []string           `json:"eligible_departments"`
	Adjustments         []SalaryAdjustment `json:"adjustments"`
	Persisted           bool               `json:"persisted"`
	CreatedAt           time.Time          `json:"created_at"`
}

// TotalIncrease sums the increments of all adjustments.
func (r BonusRun) TotalIncrease() int {
	total := 0
	for _, a := range r.Adjustments {
		total += a.Increment
	}
	return total
}
