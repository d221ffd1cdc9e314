package service

import (
	"context"

	"catalog-cms/internal/model"
)

// CatalogService defines operations on the product catalogue.
type CatalogService interface {
	// List returns every product in catalogue order.
	List(ctx context.Context) ([]model.Product, error)

	// Get returns the product with the given ID.
	Get(ctx context.Context, id string) (*model.Product, error)

	// Insert stores a new product, assigning an ID when none is given.
	Insert(ctx context.Context, input model.ProductInput) (*model.Product, error)

	// Update merges a partial payload into an existing product.
	Update(ctx context.Context, id string, patch model.ProductInput) (*model.Product, error)

	// Delete removes the product with the given ID.
	Delete(ctx context.Context, id string) error

	// Categories returns the slug to label mapping derived from the catalogue.
	Categories(ctx context.Context) ([]model.Category, error)
}
