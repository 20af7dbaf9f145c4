// Package seed loads starter catalog data and demo suggestions.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"foodcrimes/internal/models"
	"foodcrimes/internal/repository"
)

// CSVResult summarizes a catalog import.
type CSVResult struct {
	Preparations int64
	Foods        int64
	Skipped      bool
}

// ParseCatalogCSV reads preparation (column 0) and food (column 1) names,
// skipping the header row and blank cells.
func ParseCatalogCSV(r io.Reader) (preps, foods []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > 0 {
			if p := strings.TrimSpace(row[0]); p != "" {
				preps = append(preps, p)
			}
		}
		if len(row) > 1 {
			if f := strings.TrimSpace(row[1]); f != "" {
				foods = append(foods, f)
			}
		}
	}
	return preps, foods, nil
}

// CatalogFromCSV imports the starter catalogs from path. The import is
// skipped when either catalog already has rows, unless force is set.
// Names already present are ignored.
func CatalogFromCSV(ctx context.Context, catalog repository.CatalogRepository, path string, force bool) (*CSVResult, error) {
	if !force {
		for _, kind := range models.CatalogKinds {
			n, err := catalog.Count(ctx, kind)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				slog.InfoContext(ctx, "Catalog already contains data, skipping CSV import", slog.String("list", kind.ListName()))
				return &CSVResult{Skipped: true}, nil
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	preps, foods, err := ParseCatalogCSV(f)
	if err != nil {
		return nil, err
	}

	res := &CSVResult{}
	if res.Preparations, err = catalog.InsertManyIfAbsent(ctx, models.CatalogPreparation, preps); err != nil {
		return nil, err
	}
	if res.Foods, err = catalog.InsertManyIfAbsent(ctx, models.CatalogFood, foods); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Catalog imported from CSV",
		slog.String("path", path),
		slog.Int64("preparations", res.Preparations),
		slog.Int64("foods", res.Foods))
	return res, nil
}
