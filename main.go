package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"property-harvester/api"
	"property-harvester/config"
	"property-harvester/coords"
	"property-harvester/models"
	"property-harvester/scraper/realtor"
	"property-harvester/services"
	"property-harvester/storage"
	"property-harvester/utils"
)

const usage = `usage: property-harvester [flags] [location] [listing_type] [limit]

Fetches listings for location, normalizes them and writes the map dataset.

flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	if err := parseArgs(args, cfg, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger := utils.NewLogger(cfg.LogLevel)
	if cfg.EnvFileErr != nil {
		logger.Info("[config] No .env file found, falling back to system env vars")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ServeAddr != "" {
		return serve(ctx, cfg, logger)
	}
	return harvest(ctx, cfg, logger)
}

// parseArgs applies command-line flags and positional arguments on top of cfg.
func parseArgs(args []string, cfg *config.Config, stderr io.Writer) error {
	fs := flag.NewFlagSet("property-harvester", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Source, "source", cfg.Source, "listing source: http, browser or file")
	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "dump to read when -source=file (.json, .ndjson or .html)")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "path of the JSON dataset")
	fs.StringVar(&cfg.CoordStrategy, "coords", cfg.CoordStrategy, "synthetic coordinate strategy: land or bbox")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for synthetic coordinates (0 = time based)")
	fs.StringVar(&cfg.ServeAddr, "serve", cfg.ServeAddr, "serve the stored dataset on this address instead of harvesting")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) > 3 {
		fs.Usage()
		return fmt.Errorf("too many arguments: %v", rest[3:])
	}
	if len(rest) > 0 {
		cfg.Location = rest[0]
	}
	if len(rest) > 1 {
		cfg.ListingType = rest[1]
	}
	if len(rest) > 2 {
		n, err := strconv.Atoi(rest[2])
		if err != nil {
			fs.Usage()
			return fmt.Errorf("limit must be an integer, got %q", rest[2])
		}
		cfg.Limit = n
	}
	return nil
}

func harvest(ctx context.Context, cfg *config.Config, logger *utils.Logger) int {
	logger.Info("=== Property harvest starting ===")
	logger.Info("Config: location %q | type: %s | limit: %d | source: %s | coords: %s",
		cfg.Location, cfg.ListingType, cfg.Limit, cfg.Source, cfg.CoordStrategy)

	generator, err := buildGenerator(cfg)
	if err != nil {
		logger.Error("Failed to build coordinate generator: %v", err)
		return 1
	}

	fetcher, err := buildFetcher(cfg, logger)
	if err != nil {
		logger.Error("Failed to build fetcher: %v", err)
		return 1
	}

	raw, err := fetcher.Fetch(ctx, realtor.NewQuery(cfg.Location, cfg.ListingType, cfg.Limit))
	if err != nil {
		logger.Error("Fetch failed: %v", err)
		return 1
	}
	logger.Info("Fetched %d raw listings", len(raw))

	normalizer := services.NewNormalizer(logger, generator)
	listings := normalizer.Clean(raw)

	jsonWriter := storage.NewJSONWriter(cfg.OutputPath)
	if err := jsonWriter.Write(listings); err != nil {
		logger.Error("JSON write failed: %v", err)
		return 1
	}
	logger.Info("Saved %d listings to %s", len(listings), jsonWriter.Path())

	if cfg.RawCSVPath != "" {
		writeRawSnapshot(cfg.RawCSVPath, raw, logger)
	}
	if cfg.StorePostgres {
		writePostgres(cfg.DSN(), listings, logger)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(listings))

	fmt.Printf("  Done. Dataset → %s\n\n", jsonWriter.Path())
	return 0
}

func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger) int {
	var reader storage.ListingReader = storage.NewJSONStore(cfg.OutputPath)
	if cfg.StorePostgres {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return 1
		}
		defer pgWriter.Close()
		reader = pgWriter
	}

	srv := api.NewServer(reader, cfg.OutputPath, logger)
	if err := srv.ListenAndServe(ctx, cfg.ServeAddr); err != nil {
		logger.Error("Server failed: %v", err)
		return 1
	}
	return 0
}

func buildGenerator(cfg *config.Config) (coords.Generator, error) {
	zones := coords.MiamiDadeLandZones
	if cfg.ZonesFile != "" {
		loaded, err := coords.LoadZones(cfg.ZonesFile)
		if err != nil {
			return nil, err
		}
		zones = loaded
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return coords.New(cfg.CoordStrategy, zones, rand.New(rand.NewSource(seed)))
}

func buildFetcher(cfg *config.Config, logger *utils.Logger) (realtor.Fetcher, error) {
	switch cfg.Source {
	case "http", "":
		return realtor.NewHTTPFetcher(cfg, logger)
	case "browser":
		return realtor.NewBrowserFetcher(cfg, logger), nil
	case "file":
		if cfg.InputPath == "" {
			return nil, errors.New("-source=file needs -input or HARVEST_INPUT")
		}
		return realtor.NewFileFetcher(cfg.InputPath, logger), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

func writeRawSnapshot(path string, raw []*models.RawListing, logger *utils.Logger) {
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		logger.Warn("Failed to create CSV writer: %v", err)
		return
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteRaw(raw); err != nil {
		logger.Warn("CSV write failed: %v", err)
		return
	}
	logger.Info("Raw snapshot saved to %s", path)
}

func writePostgres(dsn string, listings []*models.Listing, logger *utils.Logger) {
	pgWriter, err := storage.NewPostgresWriter(dsn)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(listings); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return
	}
	logger.Info("Listings stored in PostgreSQL (table: properties)")
}
