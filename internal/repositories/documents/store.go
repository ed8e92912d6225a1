// Package documents persists journey and spotting documents in the
// document-search store.
package documents

import "context"

// Hit is a stored document together with its ID.
type Hit struct {
	ID     string
	Source map[string]any
}

type Store interface {
	// Index creates the document under id, or replaces it if present.
	Index(ctx context.Context, index, id string, doc map[string]any) error

	// Get fetches one document. A missing document or index yields
	// common.ErrorNotFound.
	Get(ctx context.Context, index, id string) (*Hit, error)

	// Search runs a query against an index and returns the matching
	// hits. An empty query matches everything.
	Search(ctx context.Context, index string, query map[string]any) ([]Hit, error)

	// Delete removes one document. Deleting a missing document yields
	// common.ErrorNotFound.
	Delete(ctx context.Context, index, id string) error
}
