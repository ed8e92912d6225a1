// Package spottings manages spotting documents: single sightings of a
// locomotive or train, stored in a yearly index.
package spottings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/documents"
)

const (
	indexPrefix = "user-spottings-"
	idPrefix    = "SPOT"
)

func indexName() string {
	return indexPrefix + time.Now().Format("2006")
}

// ListResult is a page of spotting documents with their IDs merged in.
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

// NextID derives the next sequential spotting ID from the most recent
// document. IDs are zero-padded to four digits and keep growing past 9999.
func (s *Service) NextID(ctx context.Context) (string, error) {
	last, err := s.MostRecent(ctx, "")
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Sprintf("%s%04d", idPrefix, 1), nil
		}
		return "", err
	}

	lastID, _ := last["_id"].(string)
	n, err := strconv.Atoi(strings.TrimPrefix(lastID, idPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: malformed spotting id %q", common.ErrorStore, lastID)
	}
	return fmt.Sprintf("%s%04d", idPrefix, n+1), nil
}

// Create stores a new spotting under id. Requires username and
// spotting_category; timestamp and is_active get defaults when absent.
func (s *Service) Create(ctx context.Context, id string, doc map[string]any) error {
	if id == "" || doc == nil {
		return common.ErrorValidation
	}
	for _, field := range []string{"username", "spotting_category"} {
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
		s.logger.Error(ctx, "spotting write failed", "op", "create_spotting", "err", err)
		return err
	}
	return nil
}

// List returns this year's spottings, active-only unless includeInactive.
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
		s.logger.Error(ctx, "spotting search failed", "op", "list_spottings", "err", err)
		return nil, err
	}

	docs := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, withID(h))
	}
	return &ListResult{TotalDocs: len(docs), Docs: docs}, nil
}

// MostRecent returns the latest spotting by timestamp, optionally filtered
// to one user. No spottings yields common.ErrorNotFound.
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
		s.logger.Error(ctx, "spotting search failed", "op", "most_recent_spotting", "err", err)
		return nil, err
	}
	if len(hits) == 0 {
		return nil, common.ErrorNotFound
	}
	return withID(hits[0]), nil
}

// Get returns one spotting with its ID merged in.
func (s *Service) Get(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, common.ErrorValidation
	}

	hit, err := s.store.Get(ctx, indexName(), id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "spotting read failed", "op", "get_spotting", "err", err)
		}
		return nil, err
	}
	return withID(*hit), nil
}

// Update merges changes into the stored spotting and stamps
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
			s.logger.Error(ctx, "spotting read failed", "op", "update_spotting", "err", err)
		}
		return err
	}

	body := hit.Source
	for k, v := range changes {
		body[k] = v
	}

	if err := s.store.Index(ctx, indexName(), id, body); err != nil {
		s.logger.Error(ctx, "spotting write failed", "op", "update_spotting", "err", err)
		return err
	}
	return nil
}

// Deactivate marks the spotting inactive without deleting it.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.Update(ctx, id, map[string]any{"is_active": false})
}

// Delete removes the spotting document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.ErrorValidation
	}
	if err := s.store.Delete(ctx, indexName(), id); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "spotting delete failed", "op", "delete_spotting", "err", err)
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
