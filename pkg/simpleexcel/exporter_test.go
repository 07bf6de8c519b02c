package simpleexcel

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type payRow struct {
	Name   string
	Salary int
	Dept   string
}

func TestDataExporter_FluentSections(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Payroll").
		AddSection(&SectionConfig{
			Title:      "Department D2",
			ShowHeader: true,
			Data:       []payRow{{"Ann", 14200, "D2"}, {"Bob", 15100, "D2"}},
			Columns: []ColumnConfig{
				{FieldName: "Name", Header: "Name", Width: 20},
				{FieldName: "Salary", Header: "Salary", Formatter: func(v interface{}) interface{} {
					return fmt.Sprintf("%d.00", v.(int))
				}},
			},
		}).
		AddSection(&SectionConfig{
			ShowHeader: true,
			Data:       []*payRow{{Name: "Cid", Dept: "D1"}},
			Columns:    []ColumnConfig{{FieldName: "Dept", Header: "Dept"}, {FieldName: "Missing", Header: "Missing"}},
		})

	f, err := exporter.BuildExcel()
	require.NoError(t, err)
	defer f.Close()

	cell := func(axis string) string {
		v, err := f.GetCellValue("Payroll", axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Department D2", cell("A1"))
	assert.Equal(t, "Name", cell("A2"))
	assert.Equal(t, "Ann", cell("A3"))
	assert.Equal(t, "14200.00", cell("B3"))
	assert.Equal(t, "15100.00", cell("B4"))
	// blank row between sections
	assert.Equal(t, "", cell("A5"))
	assert.Equal(t, "Dept", cell("A6"))
	assert.Equal(t, "D1", cell("A7"))
	assert.Equal(t, "", cell("B7"))

	width, err := f.GetColWidth("Payroll", "A")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)
}

func TestDataExporter_YamlTemplateWithNamedFormatter(t *testing.T) {
	yamlConfig := `
sheets:
  - name: "Summary"
    sections:
      - id: "rows"
        title: "Rows"
        show_header: true
        locked: true
        header_style:
          font: {bold: true, color: "#FFFFFF"}
          fill: {color: "#4472C4"}
        columns:
          - field_name: "Name"
            header: "Name"
          - field_name: "Salary"
            header: "Salary"
            format: "money"
`
	exporter, err := NewDataExporterFromYamlConfig(yamlConfig)
	require.NoError(t, err)

	rows, err := ConvertToDynamicData([]payRow{{"Ann", 100, "D1"}})
	require.NoError(t, err)

	exporter.
		RegisterFormatter("money", func(v interface{}) interface{} { return fmt.Sprintf("$%d", v) }).
		BindSectionData("rows", rows)

	// programmatic section on the same sheet lands below the template's sections
	exporter.AddSheet("Summary").AddSection(&SectionConfig{
		Data:    []payRow{{Name: "extra"}},
		Columns: []ColumnConfig{{FieldName: "Name"}},
	})

	data, err := exporter.ToBytes()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary"}, f.GetSheetList())
	v, _ := f.GetCellValue("Summary", "A3")
	assert.Equal(t, "Ann", v)
	v, _ = f.GetCellValue("Summary", "B3")
	assert.Equal(t, "$100", v)
	v, _ = f.GetCellValue("Summary", "A5")
	assert.Equal(t, "extra", v)

	styleID, err := f.GetCellStyle("Summary", "A2")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
}

func TestDataExporter_HorizontalAndPosition(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Side").
		AddSection(&SectionConfig{
			Direction: SectionDirectionHorizontal,
			Data:      []payRow{{Name: "left"}},
			Columns:   []ColumnConfig{{FieldName: "Name"}},
		}).
		AddSection(&SectionConfig{
			Direction: SectionDirectionHorizontal,
			Data:      []payRow{{Name: "right"}},
			Columns:   []ColumnConfig{{FieldName: "Name"}},
		}).
		AddSection(&SectionConfig{
			Position: "E10",
			Data:     []payRow{{Name: "pinned"}},
			Columns:  []ColumnConfig{{FieldName: "Name"}},
		})

	f, err := exporter.BuildExcel()
	require.NoError(t, err)
	defer f.Close()

	v, _ := f.GetCellValue("Side", "A1")
	assert.Equal(t, "left", v)
	v, _ = f.GetCellValue("Side", "C1")
	assert.Equal(t, "right", v)
	v, _ = f.GetCellValue("Side", "E10")
	assert.Equal(t, "pinned", v)
}

func TestDataExporter_InvalidPosition(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Bad").AddSection(&SectionConfig{ID: "x", Position: "not-a-cell"})

	_, err := exporter.BuildExcel()
	assert.Error(t, err)
}

func TestNewDataExporterFromYamlFile_Missing(t *testing.T) {
	_, err := NewDataExporterFromYamlFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestConvertToDynamicData(t *testing.T) {
	type withMeta struct {
		ID       int
		Meta     map[string]interface{}
		internal string
	}

	got, err := ConvertToDynamicData(&withMeta{ID: 1, Meta: map[string]interface{}{"Tier": "A"}, internal: "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ID": 1, "Meta_Tier": "A"}, got)

	_, err = ConvertToDynamicData(42)
	assert.Error(t, err)

	_, err = ConvertToDynamicData([]int{1})
	assert.Error(t, err)
}
