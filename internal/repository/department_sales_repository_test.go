package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/sales_bonus/internal/domain"
)

func TestDepartmentSalesRepository_GetAll(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	mock.ExpectQuery("SELECT department, sales FROM department_sales ORDER BY department ASC").
		WillReturnRows(sqlmock.NewRows([]string{"department", "sales"}).
			AddRow("D1", 1000.0).
			AddRow("D2", 2000.5))

	got, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentSales{"D1": 1000, "D2": 2000.5}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentSalesRepository_GetAllEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	mock.ExpectQuery("SELECT department, sales FROM department_sales ORDER BY department ASC").
		WillReturnRows(sqlmock.NewRows([]string{"department", "sales"}))

	got, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDepartmentSalesRepository_Upsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSalesQuery(2)).
		WithArgs("D1", 1000.0, "D2", 2000.0).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), domain.DepartmentSales{"D2": 2000, "D1": 1000}))
	require.NoError(t, repo.Upsert(context.Background(), domain.DepartmentSales{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentSalesRepository_Clear(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	mock.ExpectExec("DELETE FROM department_sales").WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentSalesRepository_UpsertChunks(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	sales := domain.DepartmentSales{}
	for i := 0; i < insertBatchSize+1; i++ {
		sales[fmt.Sprintf("D%05d", i)] = float64(i)
	}

	mock.ExpectBegin()
	mock.ExpectExec(upsertSalesQuery(insertBatchSize)).WillReturnResult(sqlmock.NewResult(0, insertBatchSize))
	mock.ExpectExec(upsertSalesQuery(1)).
		WithArgs(fmt.Sprintf("D%05d", insertBatchSize), float64(insertBatchSize)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), sales))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentSalesRepository_UpsertRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDepartmentSalesRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSalesQuery(1)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), domain.DepartmentSales{"D1": 1})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func upsertSalesQuery(rows int) string {
	tuples := make([]string, rows)
	for i := range tuples {
		tuples[i] = fmt.Sprintf("($%d, $%d)", 2*i+1, 2*i+2)
	}
	return "INSERT INTO department_sales (department, sales) VALUES " +
		strings.Join(tuples, ", ") + " ON CONFLICT (department) DO UPDATE SET sales = EXCLUDED.sales"
}
