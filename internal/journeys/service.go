// Package journeys manages journey documents. Journeys live in a yearly
// index so old seasons can be archived wholesale.
package journeys

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/documents"
)

const indexPrefix = "user-journeys-"

func indexName() string {
	return indexPrefix + time.Now().Format("2006")
}

// ListResult is a page of journey documents with their IDs merged in.
type ListResult struct {
	TotalDocs int              `json:"total_docs"`
	Docs      []map[string]any `json:"docs"`
}

type Service struct {
	store  documents.Store
	logger logging.Logger
}

func NewService(store documents.Store, logger logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create stores a new journey under id. Requires username, train_number and
// from; timestamp and is_active get defaults when absent.
func (s *Service) Create(ctx context.Context, id string, doc map[string]any) error {
	if id == "" || doc == nil {
		return common.ErrorValidation
	}
	for _, field := range []string{"username", "train_number", "from"} {
		if _, ok := doc[field]; !ok {
			return common.ErrorValidation
		}
	}

	if _, ok := doc["timestamp"]; !ok {
		doc["timestamp"] = time.Now().Unix()
	}
	if _, ok := doc["is_active"]; !ok {
		doc["is_active"] = true
	}

	if err := s.store.Index(ctx, indexName(), id, doc); err != nil {
		s.logger.Error(ctx, "journey write failed", "op", "create_journey", "err", err)
		return err
	}
	return nil
}

// List returns this year's journeys, active-only unless includeInactive.
func (s *Service) List(ctx context.Context, includeInactive bool) (*ListResult, error) {
	var query map[string]any
	if !includeInactive {
		query = map[string]any{
			"query": map[string]any{"term": map[string]any{"is_active": true}},
		}
	}

	hits, err := s.store.Search(ctx, indexName(), query)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ListResult{Docs: []map[string]any{}}, nil
		}
		s.logger.Error(ctx, "journey search failed", "op", "list_journeys", "err", err)
		return nil, err
	}

	docs := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, withID(h))
	}
	return &ListResult{TotalDocs: len(docs), Docs: docs}, nil
}

// MostRecent returns the latest journey by timestamp, optionally filtered
// to one user. No journeys yields common.ErrorNotFound.
func (s *Service) MostRecent(ctx context.Context, username string) (map[string]any, error) {
	query := map[string]any{
		"sort": []any{map[string]any{"timestamp": "desc"}},
		"size": 1,
	}
	if username != "" {
		query["query"] = map[string]any{"term": map[string]any{"username": username}}
	}

	hits, err := s.store.Search(ctx, indexName(), query)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "journey search failed", "op", "most_recent_journey", "err", err)
		return nil, err
	}
	if len(hits) == 0 {
		return nil, common.ErrorNotFound
	}
	return withID(hits[0]), nil
}

// Get returns one journey with its ID merged in.
func (s *Service) Get(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, common.ErrorValidation
	}

	hit, err := s.store.Get(ctx, indexName(), id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "journey read failed", "op", "get_journey", "err", err)
		}
		return nil, err
	}
	return withID(*hit), nil
}

// Update merges changes into the stored journey and stamps
// updated_timestamp. The _id pseudo-field is never written into the body.
func (s *Service) Update(ctx context.Context, id string, changes map[string]any) error {
	if id == "" || changes == nil {
		return common.ErrorValidation
	}
	delete(changes, "_id")
	changes["updated_timestamp"] = time.Now().Unix()

	hit, err := s.store.Get(ctx, indexName(), id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "journey read failed", "op", "update_journey", "err", err)
		}
		return err
	}

	body := hit.Source
	for k, v := range changes {
		body[k] = v
	}

	if err := s.store.Index(ctx, indexName(), id, body); err != nil {
		s.logger.Error(ctx, "journey write failed", "op", "update_journey", "err", err)
		return err
	}
	return nil
}

// AddHalt appends a halt to the journey. A halt must name its station;
// a halt already recorded is left in place.
func (s *Service) AddHalt(ctx context.Context, id string, halt map[string]any) error {
	if id == "" || halt == nil {
		return common.ErrorValidation
	}
	if _, ok := halt["station"]; !ok {
		return common.ErrorValidation
	}

	hit, err := s.store.Get(ctx, indexName(), id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "journey read failed", "op", "add_halt_to_journey", "err", err)
		}
		return err
	}

	body := hit.Source
	halts, _ := body["halts"].([]any)
	for _, existing := range halts {
		if reflect.DeepEqual(existing, halt) {
			return nil
		}
	}
	body["halts"] = append(halts, halt)

	if err := s.store.Index(ctx, indexName(), id, body); err != nil {
		s.logger.Error(ctx, "journey write failed", "op", "add_halt_to_journey", "err", err)
		return err
	}
	return nil
}

// Deactivate marks the journey inactive without deleting it.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.Update(ctx, id, map[string]any{"is_active": false})
}

// Delete removes the journey document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.ErrorValidation
	}
	if err := s.store.Delete(ctx, indexName(), id); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "journey delete failed", "op", "delete_journey", "err", err)
		}
		return err
	}
	return nil
}

func withID(h documents.Hit) map[string]any {
	doc := make(map[string]any, len(h.Source)+1)
	for k, v := range h.Source {
		doc[k] = v
	}
	doc["_id"] = h.ID
	return doc
}
