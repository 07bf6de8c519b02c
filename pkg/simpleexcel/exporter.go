package simpleexcel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants & Types
// =============================================================================

const (
	SectionDirectionHorizontal = "horizontal"
	SectionDirectionVertical   = "vertical"
)

// FormatterFunc converts a cell value before it is written.
type FormatterFunc func(interface{}) interface{}

// DataExporter is the main entry point for exporting data.
type DataExporter struct {
	template *ReportTemplate
	// data holds data bound to section IDs (YAML flow)
	data map[string]interface{}
	// sheets holds programmatically added sheets
	sheets     []*SheetBuilder
	formatters map[string]FormatterFunc
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a block of rows in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"` // bound at runtime
	Locked      bool           `yaml:"locked"`
	ShowHeader  bool           `yaml:"show_header"`
	Direction   string         `yaml:"direction"` // "horizontal" or "vertical"
	Position    string         `yaml:"position"`  // e.g. "A1"
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName string        `yaml:"field_name"` // struct field name or map key
	Header    string        `yaml:"header"`
	Width     float64       `yaml:"width"`
	Format    string        `yaml:"format"` // name of a registered formatter
	Formatter FormatterFunc `yaml:"-"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font   *FontTemplate `yaml:"font"`
	Fill   *FillTemplate `yaml:"fill"`
	Locked *bool         `yaml:"locked"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // hex
}

type FillTemplate struct {
	Color string `yaml:"color"` // hex
}

// =============================================================================
// Constructors
// =============================================================================

func NewDataExporter() *DataExporter {
	return &DataExporter{
		data:       make(map[string]interface{}),
		formatters: make(map[string]FormatterFunc),
	}
}

// NewDataExporterFromYamlConfig parses an inline YAML template.
func NewDataExporterFromYamlConfig(config string) (*DataExporter, error) {
	return newFromReader(strings.NewReader(config))
}

// NewDataExporterFromYamlFile parses a YAML template file.
func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml file: %w", err)
	}
	defer f.Close()
	return newFromReader(f)
}

func newFromReader(r io.Reader) (*DataExporter, error) {
	var tmpl ReportTemplate
	if err := yaml.NewDecoder(r).Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	e := NewDataExporter()
	e.template = &tmpl
	return e, nil
}

// =============================================================================
// Fluent API
// =============================================================================

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

// BindSectionData binds data to a section ID (YAML flow).
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

// RegisterFormatter makes fn available to columns declaring `format: name`.
func (e *DataExporter) RegisterFormatter(name string, fn FormatterFunc) *DataExporter {
	e.formatters[name] = fn
	return e
}

// =============================================================================
// SheetBuilder
// =============================================================================

type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// =============================================================================
// Output
// =============================================================================

// BuildExcel renders every sheet into a new workbook. The caller closes it.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	f := excelize.NewFile()
	first := true
	ensureSheet := func(name string) error {
		if first {
			first = false
			return f.SetSheetName("Sheet1", name)
		}
		if idx, _ := f.GetSheetIndex(name); idx == -1 {
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
		}
		return nil
	}

	// YAML sheets first; programmatic sections on the same sheet follow them
	rendered := map[string][]*SectionConfig{}
	var order []string
	if e.template != nil {
		for i := range e.template.Sheets {
			st := &e.template.Sheets[i]
			for j := range st.Sections {
				sec := &st.Sections[j]
				if data, ok := e.data[sec.ID]; ok {
					sec.Data = data
				}
				rendered[st.Name] = append(rendered[st.Name], sec)
			}
			order = appendUnique(order, st.Name)
		}
	}
	for _, sb := range e.sheets {
		rendered[sb.name] = append(rendered[sb.name], sb.sections...)
		order = appendUnique(order, sb.name)
	}

	for _, name := range order {
		if err := ensureSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := e.renderSections(f, name, rendered[name]); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// ToBytes exports the workbook to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.ToWriter(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter writes the workbook to w.
func (e *DataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// =============================================================================
// Rendering Logic
// =============================================================================

func (e *DataExporter) renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	nextRow := 1           // next free row for vertical sections
	nextColHorizontal := 1 // next free column for horizontal sections
	hasLocked := false

	for _, sec := range sections {
		if sec.Locked {
			hasLocked = true
		}

		startCol, startRow := 1, nextRow
		if sec.Direction == SectionDirectionHorizontal {
			startCol, startRow = nextColHorizontal, 1
		}
		if sec.Position != "" {
			c, r, err := excelize.CellNameToCoordinates(sec.Position)
			if err != nil {
				return fmt.Errorf("section %q: invalid position %q: %w", sec.ID, sec.Position, err)
			}
			startCol, startRow = c, r
		}

		locked := sec.Locked
		withLock := func(base *StyleTemplate) *StyleTemplate {
			s := &StyleTemplate{}
			if base != nil {
				*s = *base
			}
			s.Locked = &locked
			return s
		}
		dataStyle, err := createStyle(f, withLock(nil))
		if err != nil {
			return err
		}

		row := startRow
		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(startCol, row)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			styleID, err := createStyle(f, withLock(sec.TitleStyle))
			if err != nil {
				return err
			}
			endCell := cell
			if len(sec.Columns) > 1 {
				endCell, _ = excelize.CoordinatesToCellName(startCol+len(sec.Columns)-1, row)
				if err := f.MergeCell(sheet, cell, endCell); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, endCell, styleID); err != nil {
				return err
			}
			row++
		}

		if sec.ShowHeader && len(sec.Columns) > 0 {
			styleID, err := createStyle(f, withLock(sec.HeaderStyle))
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(startCol+i, row)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					colName, _ := excelize.ColumnNumberToName(startCol + i)
					if err := f.SetColWidth(sheet, colName, colName, col.Width); err != nil {
						return err
					}
				}
			}
			row++
		}

		items := reflect.ValueOf(sec.Data)
		if items.Kind() == reflect.Ptr {
			items = items.Elem()
		}
		if items.Kind() == reflect.Slice {
			for i := 0; i < items.Len(); i++ {
				item := items.Index(i)
				for j, col := range sec.Columns {
					val := e.format(col, extractValue(item, col.FieldName))
					cell, _ := excelize.CoordinatesToCellName(startCol+j, row)
					if err := f.SetCellValue(sheet, cell, val); err != nil {
						return err
					}
					if err := f.SetCellStyle(sheet, cell, cell, dataStyle); err != nil {
						return err
					}
				}
				row++
			}
		}

		if row+1 > nextRow {
			nextRow = row + 1 // one blank row between vertical sections
		}
		nextColHorizontal = startCol + len(sec.Columns) + 1
	}

	// locked cells only take effect on a protected sheet
	if hasLocked {
		return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

func (e *DataExporter) format(col ColumnConfig, v interface{}) interface{} {
	if col.Formatter != nil {
		return col.Formatter(v)
	}
	if col.Format != "" {
		if fn, ok := e.formatters[col.Format]; ok {
			return fn(v)
		}
	}
	return v
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}
	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	case reflect.Map:
		if item.Type().Key().Kind() == reflect.String {
			if v := item.MapIndex(reflect.ValueOf(fieldName)); v.IsValid() {
				return v.Interface()
			}
		}
	}
	return ""
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Locked != nil {
		style.Protection = &excelize.Protection{Locked: *tmpl.Locked}
	}
	return f.NewStyle(style)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
