// cmd/tools/catalog-indexer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/database"
	"solar-advisor/internal/common/embedding"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/vectorstore"
	"solar-advisor/pkg/catalog"
)

func main() {
	indexCmd := flag.NewFlagSet("index", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	indexPath := indexCmd.String("path", "", "Catalog JSON file (empty uses the built-in table)")
	indexName := indexCmd.String("index", "", "Target index (defaults to database.elasticsearch.index)")
	indexTimeout := indexCmd.Duration("timeout", 2*time.Minute, "Overall timeout")

	validatePath := validateCmd.String("path", "configs/catalog.json", "Catalog JSON file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		indexCmd.Parse(os.Args[2:])
		if err := runIndex(*indexPath, *indexName, *indexTimeout); err != nil {
			fmt.Printf("Indexing failed: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		n, err := validateFile(*validatePath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d products.\n", n)

	case "help":
		fallthrough
	default:
		help()
	}
}

func runIndex(path, index string, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}
	if index == "" {
		index = cfg.Database.Elasticsearch.Index
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := database.WaitFor(ctx, es, 5, time.Second, 5*time.Second); err != nil {
		return fmt.Errorf("elasticsearch unreachable: %w", err)
	}

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		return err
	}

	store := vectorstore.NewStore(es.Client, index, cfg.Embedding.Dimensions)
	created, err := store.EnsureIndex(ctx)
	if err != nil {
		return err
	}
	if created {
		zapLog.Info("Created index", zap.String("index", index), zap.Int("dims", cfg.Embedding.Dimensions))
	}

	entries := cat.Entries()
	vectors, err := embedder.EmbedBatch(ctx, texts(entries))
	if err != nil {
		return err
	}
	docs, err := documents(entries, vectors)
	if err != nil {
		return err
	}
	if err := store.BulkIndex(ctx, docs); err != nil {
		return err
	}

	zapLog.Info("Catalog indexed", zap.String("index", index), zap.Int("products", len(docs)))
	return nil
}

// texts is what gets embedded for each entry: the name carries the size and
// circuit, the description carries the use case.
func texts(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s (%s, %dL, %s). %s", e.Name, e.CollectorType, e.TankLiters, e.Circuit, e.Description)
	}
	return out
}

func documents(entries []catalog.Entry, vectors [][]float32) ([]vectorstore.Document, error) {
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("got %d vectors for %d products", len(vectors), len(entries))
	}
	text := texts(entries)
	docs := make([]vectorstore.Document, len(entries))
	for i, e := range entries {
		docs[i] = vectorstore.Document{
			ID:         e.Code,
			SystemName: e.Name,
			ModelCode:  e.Code,
			Text:       text[i],
			Embedding:  vectors[i],
		}
	}
	return docs, nil
}

func validateFile(path string) (int, error) {
	f, err := catalog.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if err := catalog.Validate(f.Products); err != nil {
		return 0, err
	}
	return len(f.Products), nil
}

func help() {
	fmt.Println(`
Usage: catalog-indexer <command> [flags]

Commands:
  index     Embed the catalog and bulk index it into Elasticsearch
  validate  Validate a catalog JSON file
  help      Show this help message

Examples:
  catalog-indexer index -path configs/catalog.json
  catalog-indexer validate -path configs/catalog.json`)
}
