package domain

import "context"

// EmployeeRecordRepository defines the interface for employee record data access
type EmployeeRecordRepository interface {
	List(ctx context.Context, filter EmployeeRecordFilter) ([]EmployeeRecord, error)
	UpdateSalaries(ctx context.Context, records []EmployeeRecord) error
	BatchCreate(ctx context.Context, records []EmployeeRecord) error
}

// SalesSource provides the department sales mapping. Implemented by the
// postgres repository and the datastore client.
type SalesSource interface {
	GetAll(ctx context.Context) (DepartmentSales, error)
	Upsert(ctx context.Context, sales DepartmentSales) error
	Clear(ctx context.Context) error
}

// BonusAuditor records finished bonus runs.
type BonusAuditor interface {
	RecordRun(ctx context.Context, run BonusRun) error
	RecentRuns(ctx context.Context, status *BonusStatus, size int) ([]BonusRun, error)
}
