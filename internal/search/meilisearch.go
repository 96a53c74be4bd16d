// Package search keeps meilisearch indexes of properties, plans and lots
// for the public site search box.
package search

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"drake-homes/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// ErrDisabled is returned by searches when no meilisearch host is configured
var ErrDisabled = errors.New("search is not configured")

// Engine is what handlers and the scheduler need from the search backend
type Engine interface {
	Search(params FilterParams) (*Result, error)
	IndexProperty(p *models.Property) error
	IndexPlan(p *models.Plan) error
	IndexLot(l *models.Lot) error
	Delete(kind Kind, id uint) error
	Reindex(properties []models.Property, plans []models.Plan, lots []models.Lot) error
}

type Result struct {
	Kind           Kind          `json:"type"`
	Hits           []interface{} `json:"hits"`
	TotalHits      int64         `json:"total_hits"`
	ProcessingTime int64         `json:"processing_time_ms"`
}

type indexSettings struct {
	searchable []string
	filterable []string
	sortable   []string
}

var settings = map[Kind]indexSettings{
	KindProperties: {
		searchable: []string{"title", "location", "description", "features", "status"},
		filterable: []string{"status", "availability_status", "price_value", "beds", "baths", "is_featured"},
		sortable:   []string{"price_value", "title", "completion_date", "created_at"},
	},
	KindPlans: {
		searchable: []string{"title", "style", "description", "features"},
		filterable: []string{"style", "price", "bedrooms", "bathrooms", "floors", "is_active"},
		sortable:   []string{"price", "title", "square_footage", "created_at"},
	},
	KindLots: {
		searchable: []string{"lot_number", "address", "city", "subdivision", "description"},
		filterable: []string{"status", "price", "city", "subdivision", "is_featured"},
		sortable:   []string{"price", "lot_number", "lot_size", "created_at"},
	},
}

type SearchClient struct {
	client *meilisearch.Client
	prefix string
}

// NewSearchClient returns a client whose index uids are prefixed, so
// several environments can share one meilisearch instance.
func NewSearchClient(host, apiKey, prefix string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &SearchClient{client: client, prefix: prefix}
}

func (s *SearchClient) uid(kind Kind) string {
	return s.prefix + string(kind)
}

// InitIndexes creates the three indexes and applies their attribute settings
func (s *SearchClient) InitIndexes() error {
	for _, kind := range []Kind{KindProperties, KindPlans, KindLots} {
		if err := s.initIndex(kind); err != nil {
			return fmt.Errorf("failed to init %s index: %w", kind, err)
		}
	}
	return nil
}

func (s *SearchClient) initIndex(kind Kind) error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.uid(kind),
		PrimaryKey: "id",
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}

	cfg := settings[kind]
	index := s.client.Index(s.uid(kind))
	if _, err := index.UpdateSearchableAttributes(&cfg.searchable); err != nil {
		return err
	}
	if _, err := index.UpdateFilterableAttributes(&cfg.filterable); err != nil {
		return err
	}
	if _, err := index.UpdateSortableAttributes(&cfg.sortable); err != nil {
		return err
	}
	return nil
}

func (s *SearchClient) IndexProperty(p *models.Property) error {
	_, err := s.client.Index(s.uid(KindProperties)).AddDocuments([]PropertyDocument{NewPropertyDocument(p)})
	return err
}

func (s *SearchClient) IndexPlan(p *models.Plan) error {
	_, err := s.client.Index(s.uid(KindPlans)).AddDocuments([]PlanDocument{NewPlanDocument(p)})
	return err
}

func (s *SearchClient) IndexLot(l *models.Lot) error {
	_, err := s.client.Index(s.uid(KindLots)).AddDocuments([]LotDocument{NewLotDocument(l)})
	return err
}

func (s *SearchClient) Delete(kind Kind, id uint) error {
	_, err := s.client.Index(s.uid(kind)).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// Reindex replaces the contents of every index
func (s *SearchClient) Reindex(properties []models.Property, plans []models.Plan, lots []models.Lot) error {
	propertyDocs := make([]PropertyDocument, 0, len(properties))
	for i := range properties {
		propertyDocs = append(propertyDocs, NewPropertyDocument(&properties[i]))
	}
	planDocs := make([]PlanDocument, 0, len(plans))
	for i := range plans {
		planDocs = append(planDocs, NewPlanDocument(&plans[i]))
	}
	lotDocs := make([]LotDocument, 0, len(lots))
	for i := range lots {
		lotDocs = append(lotDocs, NewLotDocument(&lots[i]))
	}

	if err := s.replace(KindProperties, propertyDocs, len(propertyDocs)); err != nil {
		return err
	}
	if err := s.replace(KindPlans, planDocs, len(planDocs)); err != nil {
		return err
	}
	if err := s.replace(KindLots, lotDocs, len(lotDocs)); err != nil {
		return err
	}
	log.Printf("Search: reindexed %d properties, %d plans, %d lots", len(propertyDocs), len(planDocs), len(lotDocs))
	return nil
}

func (s *SearchClient) replace(kind Kind, docs interface{}, n int) error {
	index := s.client.Index(s.uid(kind))
	if _, err := index.DeleteAllDocuments(); err != nil {
		return fmt.Errorf("failed to clear %s index: %w", kind, err)
	}
	if n == 0 {
		return nil
	}
	if _, err := index.AddDocuments(docs); err != nil {
		return fmt.Errorf("failed to index %s: %w", kind, err)
	}
	return nil
}

func (s *SearchClient) Search(params FilterParams) (*Result, error) {
	if params.Kind == "" {
		params.Kind = KindProperties
	}
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if filters := BuildFilter(params); len(filters) > 0 {
		searchReq.Filter = strings.Join(filters, " AND ")
	}
	if sort := BuildSort(params.Kind, params.Sort); len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.uid(params.Kind)).Search(params.Query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", params.Kind, err)
	}

	hits := searchRes.Hits
	if hits == nil {
		hits = []interface{}{}
	}
	return &Result{
		Kind:           params.Kind,
		Hits:           hits,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

// Healthy reports whether the server answers its health endpoint
func (s *SearchClient) Healthy() bool {
	return s.client.IsHealthy()
}

// Disabled stands in when meilisearch is not configured. Writes are
// dropped and searches fail with ErrDisabled.
type Disabled struct{}

func (Disabled) Search(FilterParams) (*Result, error) { return nil, ErrDisabled }
func (Disabled) IndexProperty(*models.Property) error { return nil }
func (Disabled) IndexPlan(*models.Plan) error { return nil }
func (Disabled) IndexLot(*models.Lot) error { return nil }
func (Disabled) Delete(Kind, uint) error { return nil }
func (Disabled) Reindex([]models.Property, []models.Plan, []models.Lot) error { return nil }
