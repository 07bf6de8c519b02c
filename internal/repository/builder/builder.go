package builder

import (
	"fmt"
	"strings"
)

type statementKind int

const (
	kindSelect statementKind = iota + 1
	kindInsert
	kindUpdate
	kindDelete
)

// SQLBuilder helps construct postgres queries. Conditions are written with
// "?" markers which Build rewrites to numbered "$n" placeholders.
type SQLBuilder struct {
	kind       statementKind
	table      string
	columns    []string
	rows       [][]interface{}
	setCols    []string
	setArgs    []interface{}
	where      []condition
	orderBy    []string
	limit      int
	offset     int
	onConflict string
}

type condition struct {
	sql  string
	args []interface{}
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.kind = kindSelect
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.kind = kindInsert
	b.table = table
	b.columns = cols
	return b
}

// Values appends one row of values. Call it repeatedly for a multi-row insert.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflict appends a raw conflict clause, e.g. "(department) DO UPDATE SET sales = EXCLUDED.sales".
func (b *SQLBuilder) OnConflict(clause string) *SQLBuilder {
	b.onConflict = clause
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.kind = kindUpdate
	b.table = table
	return b
}

// Set adds a column assignment for update.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.kind = kindDelete
	b.table = table
	return b
}

// Where adds a condition; multiple conditions are joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: cond, args: args})
	return b
}

// WhereIn adds "col IN (...)". An empty list matches nothing.
func (b *SQLBuilder) WhereIn(col string, vals ...interface{}) *SQLBuilder {
	if len(vals) == 0 {
		return b.Where("1 = 0")
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	return b.Where(fmt.Sprintf("%s IN (%s)", col, marks), vals...)
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// BuildSafe is Build with a check that every placeholder has an argument.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	if b.kind == 0 {
		return "", nil, fmt.Errorf("no statement type set")
	}
	if b.table == "" {
		return "", nil, fmt.Errorf("no table set")
	}
	for _, c := range b.where {
		if n := strings.Count(c.sql, "?"); n != len(c.args) {
			return "", nil, fmt.Errorf("condition %q has %d placeholders but %d args", c.sql, n, len(c.args))
		}
	}
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(b.columns))
		}
	}
	query, args := b.Build()
	return query, args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	next := func() string {
		return fmt.Sprintf("$%d", len(args))
	}

	switch b.kind {
	case kindSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case kindInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES ")
		tuples := make([]string, len(b.rows))
		for i, row := range b.rows {
			marks := make([]string, len(row))
			for j, v := range row {
				args = append(args, v)
				marks[j] = next()
			}
			tuples[i] = "(" + strings.Join(marks, ", ") + ")"
		}
		sb.WriteString(strings.Join(tuples, ", "))
		if b.onConflict != "" {
			sb.WriteString(" ON CONFLICT ")
			sb.WriteString(b.onConflict)
		}
		return sb.String(), args
	case kindUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		sets := make([]string, len(b.setCols))
		for i, col := range b.setCols {
			args = append(args, b.setArgs[i])
			sets[i] = fmt.Sprintf("%s = %s", col, next())
		}
		sb.WriteString(strings.Join(sets, ", "))
	case kindDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 {
		conds := make([]string, len(b.where))
		for i, c := range b.where {
			parts := strings.Split(c.sql, "?")
			var w strings.Builder
			for j, part := range parts {
				w.WriteString(part)
				if j < len(parts)-1 && j < len(c.args) {
					args = append(args, c.args[j])
					w.WriteString(next())
				}
			}
			conds[i] = w.String()
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	return sb.String(), args
}
