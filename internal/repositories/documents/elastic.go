package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

// ElasticStore implements Store on Elasticsearch.
type ElasticStore struct {
	client *elasticsearch.Client
}

// NewElasticStore connects to the node at addr. The timeout applies at the
// transport level.
func NewElasticStore(addr string, timeout time.Duration) (*ElasticStore, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Transport: &http.Transport{ResponseHeaderTimeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: new client: %v", common.ErrorStore, err)
	}
	return &ElasticStore{client: client}, nil
}

func (s *ElasticStore) Index(ctx context.Context, index, id string, doc map[string]any) error {
	if index == "" || id == "" {
		return common.ErrorValidation
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal doc: %v", common.ErrorStore, err)
	}

	res, err := s.client.Index(index, bytes.NewReader(body),
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: index: %v", common.ErrorStore, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index: %s", common.ErrorStore, res.Status())
	}
	return nil
}

func (s *ElasticStore) Get(ctx context.Context, index, id string) (*Hit, error) {
	if index == "" || id == "" {
		return nil, common.ErrorValidation
	}

	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", common.ErrorStore, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, common.ErrorNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: get: %s", common.ErrorStore, res.Status())
	}

	var decoded struct {
		ID     string         `json:"_id"`
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode get response: %v", common.ErrorStore, err)
	}
	return &Hit{ID: decoded.ID, Source: decoded.Source}, nil
}

func (s *ElasticStore) Search(ctx context.Context, index string, query map[string]any) ([]Hit, error) {
	if index == "" {
		return nil, common.ErrorValidation
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithIndex(index),
		s.client.Search.WithContext(ctx),
	}
	if len(query) > 0 {
		body, err := json.Marshal(query)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal query: %v", common.ErrorStore, err)
		}
		opts = append(opts, s.client.Search.WithBody(bytes.NewReader(body)))
	}

	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", common.ErrorStore, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// yearly indexes appear on first write; absent index means no hits
		return nil, common.ErrorNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: search: %s", common.ErrorStore, res.Status())
	}

	var decoded struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", common.ErrorStore, err)
	}

	hits := make([]Hit, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Source: h.Source})
	}
	return hits, nil
}

func (s *ElasticStore) Delete(ctx context.Context, index, id string) error {
	if index == "" || id == "" {
		return common.ErrorValidation
	}

	res, err := s.client.Delete(index, id, s.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: delete: %v", common.ErrorStore, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return common.ErrorNotFound
	}
	if res.IsError() {
		return fmt.Errorf("%w: delete: %s", common.ErrorStore, res.Status())
	}
	return nil
}
