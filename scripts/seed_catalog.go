package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"catalog-cms/internal/config"
	"catalog-cms/internal/database"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"

	"github.com/joho/godotenv"
)

// Seeds the configured catalogue backend (CATALOG_BACKEND) with sample
// products, or copies an existing JSON catalogue into it:
//
//	go run scripts/seed_catalog.go
//	go run scripts/seed_catalog.go -from public/data/products.json
//
// A non-empty catalogue is left alone unless -force is given.
func main() {
	from := flag.String("from", "", "JSON catalogue file to copy instead of the sample products")
	force := flag.Bool("force", false, "overwrite a non-empty catalogue")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	var target repository.CatalogRepository
	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		target = repository.NewPostgresRepository(pool, cfg.Catalog.Name, logger)
	default:
		target = repository.NewFileRepository(cfg.Catalog.File, logger)
	}

	existing, err := target.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to read target catalogue: %v", err)
	}
	if len(existing) > 0 && !*force {
		fmt.Printf("Catalogue already holds %d products, use -force to overwrite\n", len(existing))
		os.Exit(0)
	}

	products := sampleProducts()
	if *from != "" {
		products, err = repository.NewFileRepository(*from, logger).Load(ctx)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *from, err)
		}
	}

	if err := target.Save(ctx, products); err != nil {
		log.Fatalf("Failed to write catalogue: %v", err)
	}

	fmt.Printf("Wrote %d products to the %s backend\n", len(products), target.Name())
}

func sampleProducts() []model.Product {
	type sample struct {
		id, category, categoryName, name, description string
		price                                         int
		material                                      string
	}

	samples := []sample{
		{"vases-1", "vases", "Vases", "Amphora", "Tall hand-thrown amphora", 4500, "stoneware"},
		{"vases-2", "vases", "Vases", "Bud vase", "Small vase for a single stem", 1200, "porcelain"},
		{"bowls-1", "bowls", "Bowls", "Serving bowl", "Wide bowl with a matte glaze", 2800, "stoneware"},
		{"planters-1", "planters", "Planters", "Hanging planter", "Planter with a drainage hole", 1900, "terracotta"},
	}

	products := make([]model.Product, 0, len(samples))
	for _, s := range samples {
		p := model.Product{
			ID:       s.id,
			Category: s.category,
			Images:   []string{},
		}
		attrs := []struct {
			key   string
			value interface{}
		}{
			{model.FieldCategoryName, s.categoryName},
			{model.FieldName, s.name},
			{model.FieldShortDescription, s.description},
			{model.FieldPriceFrom, s.price},
			{model.FieldMaterial, s.material},
		}
		for _, a := range attrs {
			if err := p.SetAttribute(a.key, a.value); err != nil {
				log.Fatalf("Failed to build sample product: %v", err)
			}
		}
		products = append(products, p)
	}
	return products
}
