// Package credentials persists account records in the partitioned
// credential store.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/trainspotter/internal/models"
)

type Repository interface {
	// Upsert merges the account into any record already stored under the
	// same compound key and writes the result. Attributes present on the
	// stored record but absent from the new one are preserved; this is
	// not a blind overwrite.
	Upsert(ctx context.Context, account *models.Account) error

	// Get fetches the record at (username, index). A missing record
	// yields common.ErrorNotFound; backend failures are reported
	// separately and must not be conflated with absence.
	Get(ctx context.Context, username, index string) (*models.Account, error)

	// ListAll scans every account record. Used only for full rebuilds of
	// the existence snapshot.
	ListAll(ctx context.Context) ([]*models.Account, error)
}
