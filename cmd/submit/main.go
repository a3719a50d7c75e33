package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kollect-it/catalog/internal/clock"
	"github.com/kollect-it/catalog/internal/config"
	"github.com/kollect-it/catalog/internal/logger"
	"github.com/kollect-it/catalog/internal/migration"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"github.com/kollect-it/catalog/internal/reference"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	skurepository "github.com/kollect-it/catalog/internal/sku/repository"
	skuservice "github.com/kollect-it/catalog/internal/sku/service"
	"github.com/kollect-it/catalog/internal/submit"
	"github.com/kollect-it/catalog/pkg/db"
	"go.uber.org/zap"
)

// draftInput is the on-disk draft a seller exports from the listing
// form. SKU may be empty; pass -allocate to draw one from the counter.
type draftInput struct {
	Title           string                   `json:"title"`
	SKU             string                   `json:"sku"`
	Category        string                   `json:"category"`
	Subcategory     string                   `json:"subcategory"`
	Description     string                   `json:"description"`
	DescriptionHTML string                   `json:"descriptionHtml"`
	Price           float64                  `json:"price"`
	OriginalPrice   float64                  `json:"originalPrice"`
	Condition       string                   `json:"condition"`
	Era             string                   `json:"era"`
	Origin          string                   `json:"origin"`
	Images          []productdomain.ImageRef `json:"images"`
	SEOTitle        string                   `json:"seoTitle"`
	SEODescription  string                   `json:"seoDescription"`
	SEOKeywords     string                   `json:"seoKeywords"`
}

func main() {
	var (
		allocate = flag.Bool("allocate", false, "allocate a SKU for drafts that have none")
		status   = flag.Bool("status", false, "probe the endpoint and exit")
		dryRun   = flag.Bool("dry-run", false, "print the normalized payloads without submitting")
	)
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	catalog, err := reference.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}

	client := submit.New(cfg.API, catalog, log)
	ctx := context.Background()

	if *status {
		probe(ctx, client, log)
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: submit [flags] draft.json [draft.json ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var allocator skudomain.Service
	if *allocate {
		allocator, err = openAllocator(cfg, log, catalog)
		if err != nil {
			log.Fatal("open counter store", zap.Error(err))
		}
	}

	payloads := make([]productdomain.Payload, 0, len(paths))
	for _, path := range paths {
		draft, err := readDraft(path)
		if err != nil {
			log.Fatal("read draft", zap.String("path", path), zap.Error(err))
		}
		if draft.SKU == "" && allocator != nil {
			draft.SKU, err = allocator.Allocate(ctx, draft.Category)
			if err != nil {
				log.Fatal("allocate sku", zap.String("path", path), zap.Error(err))
			}
			log.Info("sku allocated", zap.String("path", path), zap.String("sku", draft.SKU))
		}
		payloads = append(payloads, draft.Normalize())
	}

	if *dryRun {
		out, err := json.MarshalIndent(payloads, "", "  ")
		if err != nil {
			log.Fatal("encode payloads", zap.Error(err))
		}
		fmt.Println(string(out))
		return
	}

	worker := submit.NewWorker(client, log, len(payloads))
	defer worker.Stop()

	var channels []<-chan submit.Outcome
	for _, payload := range payloads {
		done, err := worker.Enqueue(payload)
		if err != nil {
			log.Fatal("enqueue", zap.String("sku", payload.SKU), zap.Error(err))
		}
		channels = append(channels, done)
	}

	failed := 0
	for _, done := range channels {
		outcome := <-done
		if outcome.Err != nil {
			failed++
			report(outcome.Payload.SKU, outcome.Err)
			continue
		}
		fmt.Printf("created %s (%s) in %d attempt(s)\n",
			outcome.Result.Product.SKU, outcome.Result.Product.Slug, outcome.Result.Attempts)
	}
	if failed > 0 {
		log.Fatal("submissions failed", zap.Int("failed", failed), zap.Int("total", len(channels)))
	}
}

func report(sku string, err error) {
	var vErr *productdomain.ValidationErrors
	var sErr *submit.ServerValidationError
	switch {
	case errors.As(err, &vErr):
		fmt.Fprintf(os.Stderr, "%s: draft failed validation\n", sku)
		for _, msg := range vErr.Messages() {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
	case errors.As(err, &sErr):
		fmt.Fprintf(os.Stderr, "%s: server rejected payload\n", sku)
		for _, msg := range sErr.Messages {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", sku, err)
	}
}

func probe(ctx context.Context, client *submit.Client, log *zap.Logger) {
	status, err := client.Status(ctx)
	if err != nil {
		log.Fatal("status probe failed", zap.Error(err))
	}
	fmt.Printf("service: %s status: %s categories: %v\n",
		status.Service, status.Status, status.Categories)
}

func readDraft(path string) (productdomain.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return productdomain.Draft{}, err
	}
	var input draftInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return productdomain.Draft{}, err
	}
	return toDraft(input), nil
}

// openAllocator opens the local counter store so drafts without a SKU
// can draw the next one before submission.
func openAllocator(cfg config.Config, log *zap.Logger, catalog reference.Catalog) (skudomain.Service, error) {
	conn, err := db.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := migration.Migrate(conn); err != nil {
		return nil, err
	}
	return skuservice.New(skuservice.Params{
		DB:      conn,
		Log:     log,
		Clock:   clock.New(),
		Catalog: catalog,
		Repo:    skurepository.Provide(),
	}), nil
}

func toDraft(in draftInput) productdomain.Draft {
	return productdomain.Draft{
		Title:           in.Title,
		SKU:             in.SKU,
		Category:        in.Category,
		Subcategory:     in.Subcategory,
		Description:     in.Description,
		DescriptionHTML: in.DescriptionHTML,
		Price:           in.Price,
		OriginalPrice:   in.OriginalPrice,
		Condition:       in.Condition,
		Era:             in.Era,
		Origin:          in.Origin,
		Images:          in.Images,
		SEOTitle:        in.SEOTitle,
		SEODescription:  in.SEODescription,
		SEOKeywords:     in.SEOKeywords,
	}
}
