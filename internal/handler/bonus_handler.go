package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/service"
	"github.com/locvowork/sales_bonus/internal/service/serviceutils"
)

// BonusService is what the handler needs from service.BonusService.
type BonusService interface {
	Run(ctx context.Context) (*domain.BonusRun, error)
	Evaluate(ctx context.Context, employees []domain.EmployeeRecord, sales domain.DepartmentSales) (*domain.BonusRun, error)
	Preview(ctx context.Context) (*domain.BonusRun, []domain.EmployeeRecord, error)
	RecentRuns(ctx context.Context, status *domain.BonusStatus, size int) ([]domain.BonusRun, error)
}

type BonusHandler struct {
	svc            BonusService
	reportTemplate string
}

func NewBonusHandler(svc BonusService, reportTemplate string) *BonusHandler {
	return &BonusHandler{svc: svc, reportTemplate: reportTemplate}
}

// EvaluateHandler handles POST /bonus/evaluate: the bonus is applied to the
// posted records and nothing is stored.
func (h *BonusHandler) EvaluateHandler(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	employees := make([]domain.EmployeeRecord, len(req.Employees))
	for i, dto := range req.Employees {
		rec, err := dto.ToDomain(i)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee record", err)
		}
		employees[i] = rec
	}

	run, err := h.svc.Evaluate(c.Request().Context(), employees, req.Departments)
	if err != nil {
		return h.fail(c, "Failed to evaluate bonus", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, message(run), EvaluateResponse{
		Run:       run,
		Employees: employees,
	})
}

// RunHandler handles POST /bonus/run against stored data.
func (h *BonusHandler) RunHandler(c echo.Context) error {
	run, err := h.svc.Run(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to run bonus", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, message(run), run)
}

// PreviewHandler handles GET /bonus/preview. ?employees=true includes the records.
func (h *BonusHandler) PreviewHandler(c echo.Context) error {
	run, employees, err := h.svc.Preview(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to preview bonus", err)
	}

	resp := PreviewResponse{Run: run}
	if include, _ := strconv.ParseBool(c.QueryParam("employees")); include {
		resp.Employees = employees
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, message(run), resp)
}

// ReportHandler handles GET /bonus/report as an xlsx download of the preview.
func (h *BonusHandler) ReportHandler(c echo.Context) error {
	run, _, err := h.svc.Preview(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to preview bonus", err)
	}

	data, err := service.BuildBonusReport(run, h.reportTemplate)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate Excel file", err)
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bonus_report_%s.xlsx"`, run.RunID))
	c.Response().Header().Set("Content-Length", strconv.Itoa(len(data)))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// AuditHandler handles GET /bonus/audit?status=applied&size=20.
func (h *BonusHandler) AuditHandler(c echo.Context) error {
	var status *domain.BonusStatus
	if raw := c.QueryParam("status"); raw != "" {
		s, err := domain.ParseBonusStatus(raw)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid status", err)
		}
		status = &s
	}

	size := 20
	if raw := c.QueryParam("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid size", fmt.Errorf("size must be 1..1000, got %q", raw))
		}
		size = n
	}

	runs, err := h.svc.RecentRuns(c.Request().Context(), status, size)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list bonus runs", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Bonus runs listed successfully", runs)
}

func (h *BonusHandler) fail(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidEmployee), errors.Is(err, domain.ErrInvalidSales):
		return serviceutils.ResponseError(c, http.StatusBadRequest, msg, err)
	case errors.Is(err, domain.ErrSalesSourceUnavailable):
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, msg, err)
	default:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, msg, err)
	}
}

func message(run *domain.BonusRun) string {
	switch run.Status {
	case domain.BonusApplied:
		return "Bonus applied"
	case domain.BonusNoData:
		return "No data to process"
	default:
		return "No bonus applicable"
	}
}
