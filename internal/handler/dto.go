package handler

import (
	"fmt"

	"github.com/locvowork/sales_bonus/internal/domain"
)

// EmployeeRecordDTO is the wire form of an employee record. Every field is
// required; pointers let us tell a missing field from a zero value.
type EmployeeRecordDTO struct {
	ID         *int    `json:"id"`
	Department *string `json:"department"`
	Salary     *int    `json:"salary"`
	IsManager  *bool   `json:"is_manager"`
}

// ToDomain converts the DTO, rejecting missing fields.
func (d EmployeeRecordDTO) ToDomain(index int) (domain.EmployeeRecord, error) {
	var missing []string
	if d.ID == nil {
		missing = append(missing, "id")
	}
	if d.Department == nil {
		missing = append(missing, "department")
	}
	if d.Salary == nil {
		missing = append(missing, "salary")
	}
	if d.IsManager == nil {
		missing = append(missing, "is_manager")
	}
	if len(missing) > 0 {
		return domain.EmployeeRecord{}, fmt.Errorf("%w: employees[%d] missing %v", domain.ErrInvalidEmployee, index, missing)
	}
	return domain.EmployeeRecord{
		ID:         *d.ID,
		Department: *d.Department,
		Salary:     *d.Salary,
		IsManager:  *d.IsManager,
	}, nil
}

// EvaluateRequest is the body of POST /bonus/evaluate.
type EvaluateRequest struct {
	Employees   []EmployeeRecordDTO    `json:"employees"`
	Departments domain.DepartmentSales `json:"departments"`
}

// EvaluateResponse carries the run summary and the records after the bonus.
type EvaluateResponse struct {
	Run       *domain.BonusRun        `json:"run"`
	Employees []domain.EmployeeRecord `json:"employees"`
}

// PreviewResponse is the body of GET /bonus/preview.
type PreviewResponse struct {
	Run       *domain.BonusRun        `json:"run"`
	Employees []domain.EmployeeRecord `json:"employees,omitempty"`
}
