package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/sales_bonus/internal/domain"
)

func sampleRun() *domain.BonusRun {
	return &domain.BonusRun{
		RunID:               "run-xyz",
		Status:              domain.BonusApplied,
		Code:                0,
		MaxSales:            2000,
		EligibleDepartments: []string{"D2", "D3"},
		Adjustments: []domain.SalaryAdjustment{
			{ID: 1, Department: "D2", OldSalary: 14000, NewSalary: 14200, Increment: 200},
			{ID: 2, Department: "D3", OldSalary: 15000, NewSalary: 15100, Increment: 100},
		},
		Persisted: true,
		CreatedAt: fixedTime,
	}
}

func TestBuildBonusReport_DefaultTemplate(t *testing.T) {
	data, err := BuildBonusReport(sampleRun(), "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Bonus Report"
	get := func(axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Bonus Run Summary", get("A1"))
	assert.Equal(t, "Run ID", get("A3"))
	assert.Equal(t, "run-xyz", get("B3"))
	assert.Equal(t, "applied", get("B4"))
	assert.Equal(t, "D2, D3", get("B7"))
	assert.Equal(t, "300", get("B9"))

	// summary: title + header + 9 rows = rows 1..11, blank row 12
	assert.Equal(t, "Salary Adjustments", get("A13"))
	assert.Equal(t, "Employee ID", get("A14"))
	assert.Equal(t, "1", get("A15"))
	assert.Equal(t, "14200", get("D15"))
	assert.Equal(t, "+200", get("E15"))
	assert.Equal(t, "+100", get("E16"))

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	width, err := f.GetColWidth(sheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
	styleID, err := f.GetCellStyle(sheet, "A14")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
}

func TestBuildBonusReport_NoAdjustments(t *testing.T) {
	run := &domain.BonusRun{RunID: "r", Status: domain.BonusNotApplicable, Code: 2, Adjustments: []domain.SalaryAdjustment{}}
	data, err := BuildBonusReport(run, "")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuildBonusReport_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	tmpl := `
sheets:
  - name: "Changes"
    sections:
      - id: "adjustments"
        columns:
          - {field_name: "Department"}
          - {field_name: "Increment", format: "signed"}
`
	require.NoError(t, os.WriteFile(path, []byte(tmpl), 0o600))

	data, err := BuildBonusReport(sampleRun(), path)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Changes"}, f.GetSheetList())
	v, _ := f.GetCellValue("Changes", "B2")
	assert.Equal(t, "+100", v)
}

func TestBuildBonusReport_MissingTemplate(t *testing.T) {
	_, err := BuildBonusReport(sampleRun(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
