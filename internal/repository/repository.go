package repository

import (
	"context"

	"catalog-cms/internal/model"
)

// CatalogRepository defines the interface for catalogue persistence.
//
// The catalogue is a single document: Load returns the whole product array
// and Save replaces it. There is no partial write; the last Save wins.
type CatalogRepository interface {
	// Load reads the full product array. A catalogue that has never been
	// written loads as an empty slice with no error.
	Load(ctx context.Context) ([]model.Product, error)

	// Save replaces the stored product array.
	Save(ctx context.Context, products []model.Product) error

	// Name identifies the backend in logs.
	Name() string
}
