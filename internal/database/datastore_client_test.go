package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/sales_bonus/internal/domain"
)

type fakeDatastore struct {
	mu      sync.Mutex
	stored  map[string]DepartmentSalesEntity
	puts    int
	deletes int
	failPut error
	// transient fails the first n PutMulti calls
	transient int
}

func (f *fakeDatastore) GetAll(_ context.Context, q *datastore.Query, dst interface{}) ([]*datastore.Key, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dst == nil {
		// keys-only query
		var keys []*datastore.Key
		for name := range f.stored {
			keys = append(keys, datastore.NameKey(departmentSalesKind, name, nil))
		}
		return keys, nil
	}
	out := dst.(*[]DepartmentSalesEntity)
	for _, e := range f.stored {
		*out = append(*out, e)
	}
	return nil, nil
}

func (f *fakeDatastore) PutMulti(_ context.Context, keys []*datastore.Key, src interface{}) ([]*datastore.Key, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return nil, f.failPut
	}
	if f.transient > 0 {
		f.transient--
		return nil, errors.New("unavailable")
	}
	f.puts++
	entities := src.([]DepartmentSalesEntity)
	for i, k := range keys {
		if k.Kind != departmentSalesKind || k.Name != entities[i].Department {
			return nil, fmt.Errorf("unexpected key %v", k)
		}
		f.stored[k.Name] = entities[i]
	}
	return keys, nil
}

func (f *fakeDatastore) DeleteMulti(_ context.Context, keys []*datastore.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for _, k := range keys {
		delete(f.stored, k.Name)
	}
	return nil
}

func TestDatastoreClient_RoundTrip(t *testing.T) {
	fake := &fakeDatastore{stored: map[string]DepartmentSalesEntity{}}
	dc := &DatastoreClient{client: fake}
	ctx := context.Background()

	require.NoError(t, dc.Upsert(ctx, domain.DepartmentSales{"D1": 1000, "D2": 2000}))
	require.NoError(t, dc.Upsert(ctx, domain.DepartmentSales{"D2": 2500}))

	got, err := dc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentSales{"D1": 1000, "D2": 2500}, got)
}

func TestDatastoreClient_UpsertChunks(t *testing.T) {
	fake := &fakeDatastore{stored: map[string]DepartmentSalesEntity{}}
	dc := &DatastoreClient{client: fake}

	sales := domain.DepartmentSales{}
	for i := 0; i < datastorePutLimit+1; i++ {
		sales[fmt.Sprintf("D%04d", i)] = float64(i)
	}

	require.NoError(t, dc.Upsert(context.Background(), sales))
	assert.Equal(t, 2, fake.puts)
	assert.Len(t, fake.stored, datastorePutLimit+1)
}

func TestDatastoreClient_Errors(t *testing.T) {
	backoff := datastoreRetryBackoff
	datastoreRetryBackoff = func(int) time.Duration { return time.Millisecond }
	defer func() { datastoreRetryBackoff = backoff }()

	var nilClient *DatastoreClient
	_, err := nilClient.GetAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrSalesSourceUnavailable)
	assert.Nil(t, WrapDatastoreClient(nil))

	dc := &DatastoreClient{client: &fakeDatastore{failPut: errors.New("quota")}}
	err = dc.Upsert(context.Background(), domain.DepartmentSales{"D1": 1})
	assert.ErrorContains(t, err, "quota")
}

func TestDatastoreClient_UpsertRetriesTransientFailure(t *testing.T) {
	backoff := datastoreRetryBackoff
	datastoreRetryBackoff = func(int) time.Duration { return time.Millisecond }
	defer func() { datastoreRetryBackoff = backoff }()

	fake := &fakeDatastore{stored: map[string]DepartmentSalesEntity{}, transient: datastoreRetries}
	dc := &DatastoreClient{client: fake}

	require.NoError(t, dc.Upsert(context.Background(), domain.DepartmentSales{"D1": 1}))
	assert.Equal(t, 1, fake.puts)
	assert.Contains(t, fake.stored, "D1")
}

func TestDatastoreClient_Clear(t *testing.T) {
	fake := &fakeDatastore{stored: map[string]DepartmentSalesEntity{}}
	dc := &DatastoreClient{client: fake}
	ctx := context.Background()

	sales := domain.DepartmentSales{}
	for i := 0; i < datastorePutLimit+1; i++ {
		sales[fmt.Sprintf("D%04d", i)] = float64(i)
	}
	require.NoError(t, dc.Upsert(ctx, sales))

	require.NoError(t, dc.Clear(ctx))
	assert.Equal(t, 2, fake.deletes)

	got, err := dc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	var nilClient *DatastoreClient
	assert.ErrorIs(t, nilClient.Clear(ctx), domain.ErrSalesSourceUnavailable)
}
