package service

import (
	"fmt"
	"strings"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/pkg/simpleexcel"
)

const bonusReportSheet = "Bonus Report"

var (
	reportTitleStyle  = &simpleexcel.StyleTemplate{Font: &simpleexcel.FontTemplate{Bold: true}}
	reportHeaderStyle = &simpleexcel.StyleTemplate{
		Font: &simpleexcel.FontTemplate{Bold: true, Color: "#FFFFFF"},
		Fill: &simpleexcel.FillTemplate{Color: "#4472C4"},
	}
)

type summaryRow struct {
	Field string
	Value interface{}
}

// BuildBonusReport renders a run as an xlsx workbook. templatePath, when set,
// names a YAML template that replaces the built-in layout; its sections bind
// by the "summary" and "adjustments" ids.
func BuildBonusReport(run *domain.BonusRun, templatePath string) ([]byte, error) {
	summary := []summaryRow{
		{"Run ID", run.RunID},
		{"Status", run.Status.String()},
		{"Status Code", run.Code},
		{"Max Sales", run.MaxSales},
		{"Eligible Departments", strings.Join(run.EligibleDepartments, ", ")},
		{"Adjusted Employees", len(run.Adjustments)},
		{"Total Increase", run.TotalIncrease()},
		{"Persisted", run.Persisted},
		{"Created At", run.CreatedAt.Format("2006-01-02 15:04:05 MST")},
	}

	var exporter *simpleexcel.DataExporter
	if templatePath != "" {
		adjustments, err := simpleexcel.ConvertToDynamicData(run.Adjustments)
		if err != nil {
			return nil, fmt.Errorf("failed to convert adjustments: %w", err)
		}
		exporter, err = simpleexcel.NewDataExporterFromYamlFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load report template: %w", err)
		}
		exporter.
			BindSectionData("summary", summary).
			BindSectionData("adjustments", adjustments)
	} else {
		exporter = defaultBonusReport(summary, run.Adjustments)
	}

	data, err := exporter.RegisterFormatter("signed", signed).ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return data, nil
}

func defaultBonusReport(summary []summaryRow, adjustments []domain.SalaryAdjustment) *simpleexcel.DataExporter {
	return simpleexcel.NewDataExporter().
		AddSheet(bonusReportSheet).
		AddSection(&simpleexcel.SectionConfig{
			ID:          "summary",
			Title:       "Bonus Run Summary",
			ShowHeader:  true,
			Locked:      true,
			TitleStyle:  reportTitleStyle,
			HeaderStyle: reportHeaderStyle,
			Data:        summary,
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "Field", Header: "Field", Width: 24},
				{FieldName: "Value", Header: "Value", Width: 40},
			},
		}).
		AddSection(&simpleexcel.SectionConfig{
			ID:          "adjustments",
			Title:       "Salary Adjustments",
			ShowHeader:  true,
			Locked:      true,
			TitleStyle:  reportTitleStyle,
			HeaderStyle: reportHeaderStyle,
			Data:        adjustments,
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "ID", Header: "Employee ID", Width: 14},
				{FieldName: "Department", Header: "Department", Width: 14},
				{FieldName: "OldSalary", Header: "Old Salary", Width: 14},
				{FieldName: "NewSalary", Header: "New Salary", Width: 14},
				{FieldName: "Increment", Header: "Increment", Width: 12, Format: "signed"},
			},
		}).
		Build()
}

func signed(v interface{}) interface{} {
	if n, ok := v.(int); ok {
		return fmt.Sprintf("+%d", n)
	}
	return v
}
