// Command seeder populates the document store with sample item documents
// so the search API has a corpus to rank against during development.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pickstack/itemsearch/internal/config"
	dbRedis "github.com/pickstack/itemsearch/internal/db/redis"
	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
	"github.com/pickstack/itemsearch/internal/domain/document/product"
	logpkg "github.com/pickstack/itemsearch/internal/logger"
	"github.com/pickstack/itemsearch/internal/metrics"
	documentrepo "github.com/pickstack/itemsearch/internal/repository/document"
	openaiEmb "github.com/pickstack/itemsearch/internal/transport/openai"
)

type sampleDoc struct {
	user     domdoc.UserInfo
	products map[string]product.Record
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

var samples = []sampleDoc{
	{
		user: domdoc.UserInfo{UserID: "u-100", UserName: "alex", PickUpLocation: "block C"},
		products: map[string]product.Record{
			"brake cable": product.New(strPtr("8am"), strPtr("main gate"), strPtr("6pm"), strPtr("block C"), f64Ptr(2), f64Ptr(12.5)),
			"bike pump":   product.New(strPtr("8am"), nil, nil, strPtr("block C"), f64Ptr(1), f64Ptr(25)),
		},
	},
	{
		user: domdoc.UserInfo{UserID: "u-101", UserName: "sam", PickUpLocation: "north lot"},
		products: map[string]product.Record{
			"water bottle":  product.New(strPtr("9am"), strPtr("gym"), strPtr("5pm"), strPtr("north lot"), f64Ptr(6), f64Ptr(3.75)),
			"running shoes": product.New(nil, strPtr("gym"), nil, strPtr("north lot"), f64Ptr(1), f64Ptr(89.99)),
		},
	},
	{
		user: domdoc.UserInfo{UserID: "u-102", UserName: "priya", PickUpLocation: "warehouse 4"},
		products: map[string]product.Record{
			"power drill":   product.New(strPtr("7am"), strPtr("site office"), strPtr("4pm"), strPtr("warehouse 4"), f64Ptr(1), f64Ptr(140)),
			"drill bits":    product.New(strPtr("7am"), strPtr("site office"), nil, strPtr("warehouse 4"), f64Ptr(12), f64Ptr(1.2)),
			"safety gloves": product.New(nil, nil, nil, strPtr("warehouse 4"), f64Ptr(4), f64Ptr(8)),
		},
	},
	{
		user: domdoc.UserInfo{UserID: "u-103", UserName: "chen", PickUpLocation: "dock B"},
		products: map[string]product.Record{
			"camping tent": product.New(strPtr("10am"), strPtr("trailhead"), strPtr("noon"), strPtr("dock B"), f64Ptr(1), f64Ptr(210)),
			"sleeping bag": product.New(strPtr("10am"), strPtr("trailhead"), nil, strPtr("dock B"), f64Ptr(2), f64Ptr(55)),
		},
	},
	{
		user: domdoc.UserInfo{UserID: "u-104", UserName: "mara", PickUpLocation: "front desk"},
		products: map[string]product.Record{
			"laptop stand": product.New(strPtr("noon"), strPtr("office 12"), strPtr("6pm"), strPtr("front desk"), f64Ptr(3), f64Ptr(32)),
		},
	},
}

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "Populate the item document store with sample documents",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of documents to seed (samples repeat when larger than the set)",
				Value:   len(samples),
			},
			&cli.BoolFlag{
				Name:  "skip-embeddings",
				Usage: "Store documents without embedding vectors (they will be skipped by ranking)",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Delete all existing documents before seeding",
			},
		},
		Action: seedCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedCommand(c *cli.Context) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()

	var embedder *openaiEmb.Embedder
	if !c.Bool("skip-embeddings") {
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	}

	repo := documentrepo.New(store, cfg.Storage.KeyPrefix)

	if c.Bool("reset") {
		removed, err := repo.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("reset corpus: %w", err)
		}
		logger.Info("removed existing documents", zap.Int("count", removed))
	}

	count := c.Int("count")
	for i := 0; i < count; i++ {
		sample := samples[i%len(samples)]
		id := uuid.NewString()

		var embedding []float32
		if embedder != nil {
			res, err := embedder.Embed(ctx, describeSample(sample))
			if err != nil {
				return fmt.Errorf("embed document %d: %w", i, err)
			}
			embedding = res.Embedding
		}

		doc := domdoc.New(id, embedding, sample.products, sample.user)
		if err := repo.Put(ctx, &doc); err != nil {
			return fmt.Errorf("store document %s: %w", id, err)
		}

		logger.Info("seeded document",
			zap.String("id", id),
			zap.String("user", sample.user.UserName),
			zap.Int("products", len(sample.products)),
			zap.Bool("embedded", embedding != nil),
		)
	}

	logger.Info("seeding complete", zap.Int("documents", count))
	return nil
}

// describeSample builds the text a document is embedded from: product names
// and the locations a searcher is likely to phrase a query around.
func describeSample(s sampleDoc) string {
	names := make([]string, 0, len(s.products))
	for name := range s.products {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := append(names, s.user.PickUpLocation)
	return strings.Join(parts, ", ")
}
