package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"catalog-cms/internal/media"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
//
// Every call loads the whole catalogue from the repository and mutations write
// the whole catalogue back. Mutations within this process are serialised so
// that ID generation and read-modify-write cycles do not interleave; writers
// in other processes sharing the same storage still race (last write wins).
type catalogService struct {
	repo   repository.CatalogRepository
	images media.Saver
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(repo repository.CatalogRepository, images media.Saver, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		images: images,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// List returns every product. Unreadable storage yields an empty catalogue.
func (s *catalogService) List(ctx context.Context) ([]model.Product, error) {
	return s.snapshot(ctx), nil
}

// Get returns the product with the given ID.
func (s *catalogService) Get(ctx context.Context, id string) (*model.Product, error) {
	products := s.snapshot(ctx)

	idx := indexOf(products, id)
	if idx < 0 {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &products[idx], nil
}

// Insert validates input, stores uploaded images, assigns an ID when the
// payload has none and appends the product to the catalogue.
func (s *catalogService) Insert(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	fields := copyFields(input.Fields)
	images, ok := input.Images()
	if !ok {
		images = []string{}
	}
	delete(fields, model.FieldImages)

	category, present, isString := model.StringField(fields, model.FieldCategory)
	if present && !isString && !isNull(fields[model.FieldCategory]) {
		s.logger.Debug().RawJSON("category", fields[model.FieldCategory]).Msg("category is not a string")
		return nil, model.ErrInvalidJSON
	}
	if category == "" {
		return nil, model.ErrCategoryRequired
	}

	product := model.ProductFromFields(fields)

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if len(input.ImagesBase64) > 0 {
		images = append(images, s.images.SaveDataURLs(ctx, input.ImagesBase64)...)
	}
	product.Images = images

	if strings.TrimSpace(product.ID) == "" {
		product.ID = GenerateID(products, product.Category)
	}

	products = append(products, product)
	if err := s.save(ctx, products); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("category", product.Category).
		Int("images", len(product.Images)).
		Msg("product created")

	return &product, nil
}

// Update merges patch into the product with the given ID. Fields present in
// the patch overwrite the stored ones; the ID always comes from the path.
// Uploaded images are appended to the patch's images when it carries an
// array, otherwise to the stored images.
func (s *catalogService) Update(ctx context.Context, id string, patch model.ProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	existing := products[idx]

	images, ok := patch.Images()
	if !ok {
		images = append([]string{}, existing.Images...)
	}
	if len(patch.ImagesBase64) > 0 {
		images = append(images, s.images.SaveDataURLs(ctx, patch.ImagesBase64)...)
	}

	merged := existing.Fields()
	for k, v := range patch.Fields {
		switch k {
		case model.FieldID, model.FieldImages, model.FieldImagesBase64:
			continue
		}
		merged[k] = v
	}
	delete(merged, model.FieldImages)
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product id: %w", err)
	}
	merged[model.FieldID] = idRaw

	updated := model.ProductFromFields(merged)
	updated.Images = images

	products[idx] = updated
	if err := s.save(ctx, products); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id).
		Int("fields", len(patch.Fields)).
		Int("images", len(updated.Images)).
		Msg("product updated")

	return &updated, nil
}

// Delete removes the product with the given ID.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return model.ErrProductNotFound
	}

	products = append(products[:idx], products[idx+1:]...)
	if err := s.save(ctx, products); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")

	return nil
}

// Categories returns each category slug with its label, in order of first
// appearance. When products disagree on a label the last one wins. Labels
// that are empty or not strings are ignored.
func (s *catalogService) Categories(ctx context.Context) ([]model.Category, error) {
	products := s.snapshot(ctx)

	categories := []model.Category{}
	seen := make(map[string]int)
	for _, p := range products {
		label, _ := p.StringAttribute(model.FieldCategoryName)
		if p.Category == "" || label == "" {
			continue
		}
		if i, ok := seen[p.Category]; ok {
			categories[i].Name = label
			continue
		}
		seen[p.Category] = len(categories)
		categories = append(categories, model.Category{Slug: p.Category, Name: label})
	}

	return categories, nil
}

// GenerateID returns the next ID for category: the lower-cased category,
// a dash, and one more than the highest numeric suffix among products of the
// same category whose ID carries that prefix. Suffixes without leading
// digits count as zero. Suffixes are compared as arbitrary-precision
// integers, so very long digit runs never wrap around.
func GenerateID(products []model.Product, category string) string {
	prefix := strings.ToLower(category) + "-"

	highest := new(big.Int)
	for _, p := range products {
		if p.Category != category || !strings.HasPrefix(p.ID, prefix) {
			continue
		}
		if n := leadingNumber(p.ID[len(prefix):]); n.Cmp(highest) > 0 {
			highest = n
		}
	}

	return prefix + highest.Add(highest, big.NewInt(1)).String()
}

// leadingNumber parses the decimal digits at the start of s, or returns 0.
func leadingNumber(s string) *big.Int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n := new(big.Int)
	if end > 0 {
		n.SetString(s[:end], 10)
	}
	return n
}

// snapshot loads the catalogue for reading, degrading to empty on failure.
func (s *catalogService) snapshot(ctx context.Context) []model.Product {
	products, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("backend", s.repo.Name()).Msg("failed to read catalog, serving empty catalog")
		return []model.Product{}
	}
	return products
}

// load reads the catalogue for a mutation. Unlike snapshot it refuses to
// continue on a read error so a damaged catalogue is never overwritten.
func (s *catalogService) load(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("backend", s.repo.Name()).Msg("failed to read catalog for update")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return products, nil
}

func (s *catalogService) save(ctx context.Context, products []model.Product) error {
	if err := s.repo.Save(ctx, products); err != nil {
		s.logger.Error().Err(err).Str("backend", s.repo.Name()).Msg("failed to write catalog")
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func indexOf(products []model.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func copyFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
