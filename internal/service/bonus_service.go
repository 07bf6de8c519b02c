package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/sales_bonus/internal/bonus"
	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/logger"
)

// BonusService runs the sales bonus rule against stored or caller-supplied data.
type BonusService struct {
	employees domain.EmployeeRecordRepository
	sales     domain.SalesSource
	auditor   domain.BonusAuditor

	now   func() time.Time
	newID func() string
}

// NewBonusService creates a new BonusService. auditor may be nil.
func NewBonusService(
	employees domain.EmployeeRecordRepository,
	sales domain.SalesSource,
	auditor domain.BonusAuditor,
) *BonusService {
	return &BonusService{
		employees: employees,
		sales:     sales,
		auditor:   auditor,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// ==================== Bonus Operations ====================

// Run loads every employee and the sales mapping, applies the bonus and
// stores the new salaries. When persisting fails no run is reported.
func (s *BonusService) Run(ctx context.Context) (*domain.BonusRun, error) {
	employees, sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	run, ctx := s.newRun(ctx)
	el, adjustments, status := bonus.ApplyWithReport(employees, sales)
	fill(run, el, adjustments, status)

	if status == domain.BonusApplied {
		changed := make([]domain.EmployeeRecord, 0, len(adjustments))
		for _, e := range employees {
			if el.Contains(e.Department) {
				changed = append(changed, e)
			}
		}
		if err := s.employees.UpdateSalaries(ctx, changed); err != nil {
			logger.ErrorLog(ctx, "Failed to persist bonus salaries: %v", err)
			return nil, fmt.Errorf("failed to persist salaries: %w", err)
		}
		run.Persisted = true
	}

	s.finish(ctx, run)
	return run, nil
}

// Evaluate applies the bonus to the caller's records in place. Nothing is stored.
func (s *BonusService) Evaluate(ctx context.Context, employees []domain.EmployeeRecord, sales domain.DepartmentSales) (*domain.BonusRun, error) {
	if err := validate(employees, sales); err != nil {
		return nil, err
	}

	run, ctx := s.newRun(ctx)
	el, adjustments, status := bonus.ApplyWithReport(employees, sales)
	fill(run, el, adjustments, status)

	s.finish(ctx, run)
	return run, nil
}

// Preview computes what Run would do against storage without writing anything.
// The returned records carry the would-be salaries.
func (s *BonusService) Preview(ctx context.Context) (*domain.BonusRun, []domain.EmployeeRecord, error) {
	employees, sales, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	run, _ := s.newRun(ctx)
	updated := make([]domain.EmployeeRecord, len(employees))
	copy(updated, employees)
	el, adjustments, status := bonus.ApplyWithReport(updated, sales)
	fill(run, el, adjustments, status)

	return run, updated, nil
}

// RecentRuns lists audited runs. Without an auditor the list is empty.
func (s *BonusService) RecentRuns(ctx context.Context, status *domain.BonusStatus, size int) ([]domain.BonusRun, error) {
	if s.auditor == nil {
		return []domain.BonusRun{}, nil
	}
	return s.auditor.RecentRuns(ctx, status, size)
}

// ==================== Helpers ====================

func (s *BonusService) load(ctx context.Context) ([]domain.EmployeeRecord, domain.DepartmentSales, error) {
	employees, err := s.employees.List(ctx, domain.EmployeeRecordFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load employees: %w", err)
	}
	sales, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load department sales: %w", err)
	}
	if err := validate(employees, sales); err != nil {
		return nil, nil, err
	}
	return employees, sales, nil
}

func (s *BonusService) newRun(ctx context.Context) (*domain.BonusRun, context.Context) {
	run := &domain.BonusRun{
		RunID:     s.newID(),
		CreatedAt: s.now(),
	}
	return run, logger.WithLogger(ctx, map[string]interface{}{"run_id": run.RunID})
}

// finish logs the outcome and hands the run to the auditor. Audit failures
// are logged only.
func (s *BonusService) finish(ctx context.Context, run *domain.BonusRun) {
	logger.InfoLog(ctx, "Bonus run finished: status=%s code=%d eligible=%v adjusted=%d total_increase=%d",
		run.Status, run.Code, run.EligibleDepartments, len(run.Adjustments), run.TotalIncrease())

	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordRun(ctx, *run); err != nil {
		logger.WarnLog(ctx, "Failed to audit bonus run: %v", err)
	}
}

func fill(run *domain.BonusRun, el bonus.Eligibility, adjustments []domain.SalaryAdjustment, status domain.BonusStatus) {
	run.Status = status
	run.Code = status.Code()
	run.MaxSales = el.MaxSales
	// an all-tied maximum has no eligible department
	run.EligibleDepartments = []string{}
	if status == domain.BonusApplied {
		run.EligibleDepartments = el.Sorted()
	}
	run.Adjustments = adjustments
	if run.Adjustments == nil {
		run.Adjustments = []domain.SalaryAdjustment{}
	}
}

func validate(employees []domain.EmployeeRecord, sales domain.DepartmentSales) error {
	for _, e := range employees {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return sales.Validate()
}
