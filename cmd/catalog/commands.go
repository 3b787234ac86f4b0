package main

import (
	"context"
	"fmt"

	"customer-service-be/internal/bootstrap"
	"customer-service-be/internal/config"
	"customer-service-be/internal/model"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	verbose     bool
	skipEmbed   bool
	force       bool
	nameFilter  string
	inStockOnly bool

	okf   = color.New(color.FgGreen).PrintfFunc()
	warnf = color.New(color.FgYellow).PrintfFunc()
	infof = color.New(color.FgCyan).PrintfFunc()
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Product catalog maintenance",
	Long: `catalog manages the product tables and the vector index the chat
assistant searches. Connection settings come from the same environment as the API.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, the vector extension and the HNSW index",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := connect()
		if err != nil {
			return err
		}
		infof("Running migrations...\n")
		if err := model.Migrate(db); err != nil {
			return err
		}
		okf("✅ Migrations completed (hnsw m=%d ef_construction=%d)\n", model.HNSWM, model.HNSWEfConstruction)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, err := connect()
		if err != nil {
			return err
		}

		n, err := seedProducts(cmd.Context(), unitofwork.NewRepositoryFactory(db))
		if err != nil {
			return err
		}
		if n == 0 {
			warnf("Catalog already has products, nothing seeded\n")
			return nil
		}
		okf("✨ Seeded %d products\n", n)

		if skipEmbed {
			return nil
		}
		return embedAll(cmd.Context(), db, cfg)
	},
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate embeddings for every product",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, err := connect()
		if err != nil {
			return err
		}
		return embedAll(cmd.Context(), db, cfg)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all products, embeddings and transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !force {
			return fmt.Errorf("reset deletes all data, re-run with --force")
		}
		db, _, err := connect()
		if err != nil {
			return err
		}
		warnf("🗑️  Resetting database...\n")
		if err := model.Reset(db); err != nil {
			return err
		}
		okf("✨ Database reset\n")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products and whether each one is indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := connect()
		if err != nil {
			return err
		}
		return listProducts(cmd.Context(), unitofwork.NewRepositoryFactory(db))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")
	seedCmd.Flags().BoolVar(&skipEmbed, "skip-embed", false, "Do not generate embeddings after seeding")
	resetCmd.Flags().BoolVar(&force, "force", false, "Confirm deletion")
	listCmd.Flags().StringVar(&nameFilter, "name", "", "Only products whose name contains this text")
	listCmd.Flags().BoolVar(&inStockOnly, "in-stock", false, "Only products with stock left")

	rootCmd.AddCommand(migrateCmd, seedCmd, embedCmd, listCmd, resetCmd)
}

func connect() (*gorm.DB, *config.Config, error) {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return nil, nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	opts := database.DefaultPoolOptions
	opts.Quiet = !verbose
	db, err := database.NewGormDBWithOptions(cfg.Database.Connection, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, cfg, nil
}

func embedAll(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	embedder, err := bootstrap.NewEmbeddingProvider(cfg)
	if err != nil {
		return err
	}

	infof("Generating embeddings...\n")
	indexer := catalog.NewIndexer(embedder, unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	n, err := indexer.IndexAll(ctx)
	if err != nil {
		return fmt.Errorf("indexed %d products before failing: %w", n, err)
	}
	okf("✅ Embedded %d products\n", n)
	return nil
}

func listProducts(ctx context.Context, factory unitofwork.RepositoryFactory) error {
	var specs []specification.Specification
	if nameFilter != "" {
		specs = append(specs, specification.ByNameLike{Name: nameFilter})
	}
	if inStockOnly {
		specs = append(specs, specification.InStock{})
	}
	specs = append(specs, specification.OrderBy{Field: "name"})

	uow := factory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		warnf("No products found\n")
		return nil
	}

	for _, p := range products {
		indexed, err := uow.ProductEmbeddingRepository().Count(ctx, specification.ByProductID{ProductID: p.Id})
		if err != nil {
			return err
		}
		mark := color.RedString("not indexed")
		if indexed > 0 {
			mark = color.GreenString("indexed")
		}
		fmt.Printf("%-36s  %-28s  %10.2f  stock=%-4d  %s\n", p.Id, p.Name, p.Price, p.Stock, mark)
	}
	infof("%d products\n", len(products))
	return nil
}
