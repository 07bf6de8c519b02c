package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/sales_bonus/internal/domain"
)

const bonusRunMapping = `{
	"mappings": {
		"properties": {
			"run_id":               {"type": "keyword"},
			"status":               {"type": "keyword"},
			"code":                 {"type": "integer"},
			"max_sales":            {"type": "double"},
			"eligible_departments": {"type": "keyword"},
			"adjusted_count":       {"type": "integer"},
			"total_increase":       {"type": "long"},
			"persisted":            {"type": "boolean"},
			"created_at":           {"type": "date"},
			"adjustments": {
				"properties": {
					"id":         {"type": "integer"},
					"department": {"type": "keyword"},
					"old_salary": {"type": "long"},
					"new_salary": {"type": "long"},
					"increment":  {"type": "integer"}
				}
			}
		}
	}
}`

// BonusRunDoc is the Elasticsearch document for one bonus run.
type BonusRunDoc struct {
	RunID               string                    `json:"run_id"`
	Status              string                    `json:"status"`
	Code                int                       `json:"code"`
	MaxSales            float64                   `json:"max_sales"`
	EligibleDepartments []string                  `json:"eligible_departments"`
	AdjustedCount       int                       `json:"adjusted_count"`
	TotalIncrease       int                       `json:"total_increase"`
	Persisted           bool                      `json:"persisted"`
	CreatedAt           time.Time                 `json:"created_at"`
	Adjustments         []domain.SalaryAdjustment `json:"adjustments"`
}

// NewBonusRunDoc flattens a run for indexing.
func NewBonusRunDoc(run domain.BonusRun) BonusRunDoc {
	return BonusRunDoc{
		RunID:               run.RunID,
		Status:              run.Status.String(),
		Code:                run.Code,
		MaxSales:            run.MaxSales,
		EligibleDepartments: run.EligibleDepartments,
		AdjustedCount:       len(run.Adjustments),
		TotalIncrease:       run.TotalIncrease(),
		Persisted:           run.Persisted,
		CreatedAt:           run.CreatedAt,
		Adjustments:         run.Adjustments,
	}
}

// BonusRun converts the document back to the domain type.
func (d BonusRunDoc) BonusRun() (domain.BonusRun, error) {
	status, err := domain.ParseBonusStatus(d.Status)
	if err != nil {
		return domain.BonusRun{}, err
	}
	return domain.BonusRun{
		RunID:               d.RunID,
		Status:              status,
		Code:                d.Code,
		MaxSales:            d.MaxSales,
		EligibleDepartments: d.EligibleDepartments,
		Adjustments:         d.Adjustments,
		Persisted:           d.Persisted,
		CreatedAt:           d.CreatedAt,
	}, nil
}

// ElasticSearchClient wraps olivere/elastic and keeps the bonus audit trail.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string, sniff bool) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(sniff), // must stay off behind docker or a cloud proxy
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticSearchClient{client: client, index: index}, nil
}

// EnsureIndex creates the audit index with its mapping when missing.
func (es *ElasticSearchClient) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}
	if _, err := es.client.CreateIndex(es.index).BodyString(bonusRunMapping).Do(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", es.index, err)
	}
	return nil
}

// RecordRun indexes a run document using the run id as document id.
func (es *ElasticSearchClient) RecordRun(ctx context.Context, run domain.BonusRun) error {
	_, err := es.client.Index().
		Index(es.index).
		Id(run.RunID).
		BodyJson(NewBonusRunDoc(run)).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index bonus run %s: %w", run.RunID, err)
	}
	return nil
}

// RecentRuns returns the newest runs first, optionally restricted to one status.
func (es *ElasticSearchClient) RecentRuns(ctx context.Context, status *domain.BonusStatus, size int) ([]domain.BonusRun, error) {
	if size <= 0 {
		size = 20
	}

	query := elastic.NewBoolQuery()
	if status != nil {
		query = query.Filter(elastic.NewTermQuery("status", status.String()))
	}

	result, err := es.client.Search().
		Index(es.index).
		Query(query).
		Sort("created_at", false).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	runs := make([]domain.BonusRun, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc BonusRunDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bonus run %s: %w", hit.Id, err)
		}
		run, err := doc.BonusRun()
		if err != nil {
			return nil, fmt.Errorf("bonus run %s: %w", hit.Id, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
