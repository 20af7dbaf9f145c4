// Command seed imports the starter catalogs and optional demo suggestions.
package main

import (
	"context"
	"flag"
	"log"

	"foodcrimes/internal/bootstrap"
	"foodcrimes/internal/config"
	"foodcrimes/internal/repository"
	"foodcrimes/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	force := flag.Bool("force", false, "Import even when the catalogs already contain rows")
	csvPath := flag.String("csv", "", "CSV file to import (defaults to SEED_CSV_PATH)")
	demo := flag.Int("demo-suggestions", 0, "Number of random pending suggestions to queue")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *csvPath != "" {
		cfg.SeedCSVPath = *csvPath
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	res, err := seed.CatalogFromCSV(ctx, repository.NewCatalogRepository(db), cfg.SeedCSVPath, *force)
	if err != nil {
		log.Fatalf("Catalog import failed: %v", err)
	}
	if res.Skipped {
		log.Println("Catalogs already contain data; use -force to import anyway")
	} else {
		log.Printf("Imported %d preparations and %d foods from %s", res.Preparations, res.Foods, cfg.SeedCSVPath)
	}

	if *demo > 0 {
		created, err := seed.DemoSuggestions(ctx, repository.NewSuggestionRepository(db), *demo)
		if err != nil {
			log.Fatalf("Demo suggestions failed: %v", err)
		}
		log.Printf("Queued %d demo suggestions", len(created))
	}
}
