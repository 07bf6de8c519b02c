package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/pkg/dataflow"
)

const (
	departmentSalesKind = "DepartmentSales"
	// datastore rejects more than 500 entities per commit
	datastorePutLimit = 500
	datastoreWriters  = 4
	datastoreRetries  = 2
)

var datastoreRetryBackoff = func(attempt int) time.Duration {
	return time.Duration(attempt) * 200 * time.Millisecond
}

// DepartmentSalesEntity is the datastore shape of one department's sales figure.
type DepartmentSalesEntity struct {
	Department string  `datastore:"Department"`
	Sales      float64 `datastore:"Sales"`
}

// datastoreAPI is the subset of *datastore.Client used here.
type datastoreAPI interface {
	GetAll(ctx context.Context, q *datastore.Query, dst interface{}) ([]*datastore.Key, error)
	PutMulti(ctx context.Context, keys []*datastore.Key, src interface{}) ([]*datastore.Key, error)
	DeleteMulti(ctx context.Context, keys []*datastore.Key) error
}

// DatastoreClient serves department sales from Cloud Datastore.
type DatastoreClient struct {
	client datastoreAPI
}

// NewDatastoreClient connects to the given project.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, *datastore.Client, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, client, nil
}

// WrapDatastoreClient wraps an existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

// GetAll loads the department sales mapping.
func (dc *DatastoreClient) GetAll(ctx context.Context) (domain.DepartmentSales, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil: %w", domain.ErrSalesSourceUnavailable)
	}

	var entities []DepartmentSalesEntity
	q := datastore.NewQuery(departmentSalesKind)
	if _, err := dc.client.GetAll(ctx, q, &entities); err != nil {
		return nil, fmt.Errorf("failed to query department sales: %w", err)
	}

	sales := make(domain.DepartmentSales, len(entities))
	for _, e := range entities {
		sales[e.Department] = e.Sales
	}
	return sales, nil
}

// Upsert saves one entity per department, keyed by department name.
func (dc *DatastoreClient) Upsert(ctx context.Context, sales domain.DepartmentSales) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil: %w", domain.ErrSalesSourceUnavailable)
	}

	entities := make([]DepartmentSalesEntity, 0, len(sales))
	for dept, v := range sales {
		entities = append(entities, DepartmentSalesEntity{Department: dept, Sales: v})
	}

	err := dataflow.ForEach(ctx, dataflow.Chunk(entities, datastorePutLimit), func(ctx context.Context, chunk []DepartmentSalesEntity) error {
		keys := make([]*datastore.Key, len(chunk))
		for i, e := range chunk {
			keys[i] = datastore.NameKey(departmentSalesKind, e.Department, nil)
		}
		_, err := dc.client.PutMulti(ctx, keys, chunk)
		return err
	}, dataflow.WithWorkers(datastoreWriters), dataflow.WithRetry(datastoreRetries, datastoreRetryBackoff))
	if err != nil {
		return fmt.Errorf("failed to save department sales: %w", err)
	}
	return nil
}

// Clear deletes every department sales entity.
func (dc *DatastoreClient) Clear(ctx context.Context) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil: %w", domain.ErrSalesSourceUnavailable)
	}

	keys, err := dc.client.GetAll(ctx, datastore.NewQuery(departmentSalesKind).KeysOnly(), nil)
	if err != nil {
		return fmt.Errorf("failed to query department sales keys: %w", err)
	}

	err = dataflow.ForEach(ctx, dataflow.Chunk(keys, datastorePutLimit), func(ctx context.Context, chunk []*datastore.Key) error {
		return dc.client.DeleteMulti(ctx, chunk)
	}, dataflow.WithWorkers(datastoreWriters), dataflow.WithRetry(datastoreRetries, datastoreRetryBackoff))
	if err != nil {
		return fmt.Errorf("failed to delete department sales: %w", err)
	}
	return nil
}
