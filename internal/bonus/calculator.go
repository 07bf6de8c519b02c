// Package bonus implements the sales bonus rule: employees of the department(s)
// with the highest sales receive a salary increment.
package bonus

import (
	"sort"

	"github.com/locvowork/sales_bonus/internal/domain"
)

const (
	// SalaryThreshold is the salary at or above which the reduced increment applies.
	SalaryThreshold = 15000
	// ReducedIncrement goes to managers and to salaries at or above the threshold.
	ReducedIncrement = 100
	// StandardIncrement goes to everyone else in an eligible department.
	StandardIncrement = 200
)

// Eligibility is the set of departments tied at the maximum sales figure.
type Eligibility struct {
	MaxSales    float64
	Departments map[string]struct{}
}

// Contains reports whether dept is eligible.
func (e Eligibility) Contains(dept string) bool {
	_, ok := e.Departments[dept]
	return ok
}

// Sorted returns the eligible departments in lexical order.
func (e Eligibility) Sorted() []string {
	out := make([]string, 0, len(e.Departments))
	for d := range e.Departments {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Evaluate runs the eligibility gate without touching any record. A status
// other than BonusApplied means ApplyBonus would leave every record unchanged.
func Evaluate(employees []domain.EmployeeRecord, sales domain.DepartmentSales) (Eligibility, domain.BonusStatus) {
	if len(employees) == 0 || len(sales) == 0 {
		return Eligibility{}, domain.BonusNoData
	}

	var maxSales float64
	first := true
	for _, v := range sales {
		if first || v > maxSales {
			maxSales = v
			first = false
		}
	}

	el := Eligibility{MaxSales: maxSales, Departments: make(map[string]struct{})}
	for dept, v := range sales {
		if v == maxSales {
			el.Departments[dept] = struct{}{}
		}
	}

	// every department at the same figure means there is no real maximum
	if len(el.Departments) == 0 || len(el.Departments) == len(sales) {
		return el, domain.BonusNotApplicable
	}

	for _, e := range employees {
		if el.Contains(e.Department) {
			return el, domain.BonusApplied
		}
	}
	return el, domain.BonusNotApplicable
}

// Increment returns the bonus an eligible employee receives.
func Increment(e domain.EmployeeRecord) int {
	if e.Salary >= SalaryThreshold || e.IsManager {
		return ReducedIncrement
	}
	return StandardIncrement
}

// ApplyBonus raises the salary of every employee in an eligible department,
// mutating the records of the given slice in place. The caller must hold
// exclusive access to the slice for the duration of the call. Records are
// only modified when BonusApplied is returned.
func ApplyBonus(employees []domain.EmployeeRecord, sales domain.DepartmentSales) domain.BonusStatus {
	_, _, status := ApplyWithReport(employees, sales)
	return status
}

// PreviewBonus is ApplyBonus on a copy: the input slice is left untouched and
// the adjusted records are returned.
func PreviewBonus(employees []domain.EmployeeRecord, sales domain.DepartmentSales) ([]domain.EmployeeRecord, domain.BonusStatus) {
	out := make([]domain.EmployeeRecord, len(employees))
	copy(out, employees)
	status := ApplyBonus(out, sales)
	return out, status
}

// ApplyWithReport behaves like ApplyBonus and also describes every change made.
func ApplyWithReport(employees []domain.EmployeeRecord, sales domain.DepartmentSales) (Eligibility, []domain.SalaryAdjustment, domain.BonusStatus) {
	el, status := Evaluate(employees, sales)
	if status != domain.BonusApplied {
		return el, nil, status
	}

	var adjustments []domain.SalaryAdjustment
	for i := range employees {
		e := &employees[i]
		if !el.Contains(e.Department) {
			continue
		}
		inc := Increment(*e)
		adjustments = append(adjustments, domain.SalaryAdjustment{
			ID:         e.ID,
			Department: e.Department,
			OldSalary:  e.Salary,
			NewSalary:  e.Salary + inc,
			Increment:  inc,
		})
		e.Salary += inc
	}
	return el, adjustments, domain.BonusApplied
}
