// Package importer loads the drink catalog from a CSV export of the
// recipe spreadsheet. Each row: drink name, page, up to ten ingredient
// lines, then an optional garnish. Import is partial-failure tolerant:
// a bad row is skipped and logged, never aborts the run.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bottender/internal/ingredient"
	"bottender/internal/store"
)

// Column layout of a catalog row.
const (
	colName        = 0
	colPage        = 1
	firstIngCol    = 2
	maxIngredients = 10
	garnishCol     = firstIngCol + maxIngredients
)

type Importer struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func New(catalog *store.CatalogStore, logger *slog.Logger) *Importer {
	return &Importer{catalog: catalog, logger: logger}
}

// Result summarizes one import run.
type Result struct {
	Drinks  int
	Skipped int
}

// ImportFile imports the CSV catalog at path.
func (im *Importer) ImportFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return im.Import(f)
}

// Import reads CSV rows and persists drinks, ingredients, garnishes and
// simple categories through the catalog store.
func (im *Importer) Import(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var res Result
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row: skip it and keep importing.
			im.logger.Warn("skipping malformed catalog row", "error", err)
			res.Skipped++
			continue
		}

		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[colName]), "Drink Name") {
			// Header row from the spreadsheet export.
			continue
		}

		if err := im.importRow(row); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				im.logger.Warn("skipping duplicate drink", "row", rowName(row))
			} else {
				im.logger.Warn("skipping catalog row", "row", rowName(row), "error", err)
			}
			res.Skipped++
			continue
		}
		res.Drinks++
	}

	im.logger.Info("catalog import finished", "drinks", res.Drinks, "skipped", res.Skipped)
	return res, nil
}

func (im *Importer) importRow(row []string) error {
	if len(row) <= colPage {
		return fmt.Errorf("row too short")
	}
	name := strings.TrimSpace(row[colName])
	if name == "" {
		return fmt.Errorf("empty drink name")
	}
	page := strings.TrimSpace(row[colPage])

	var lines []store.ImportLine
	for col := firstIngCol; col < garnishCol && col < len(row); col++ {
		line := strings.TrimSpace(row[col])
		if line == "" {
			continue
		}

		quantity, unit, ingName := ingredient.ParseLine(line)
		if ingName == "" {
			im.logger.Warn("skipping unparseable recipe line", "drink", name, "line", line)
			continue
		}

		lines = append(lines, store.ImportLine{
			Name:        ingName,
			Quantity:    quantity,
			Measurement: unit,
			Category:    ingredient.Categorize(ingName),
		})
	}

	if len(lines) == 0 {
		return fmt.Errorf("no ingredients")
	}

	var garnish string
	if len(row) > garnishCol {
		garnish = strings.TrimSpace(row[garnishCol])
	}

	// One transaction per row: a skipped row must not move any
	// popularity or population counter.
	_, err := im.catalog.ImportDrink(name, page, lines, garnish)
	return err
}

func rowName(row []string) string {
	if len(row) > 0 {
		return row[0]
	}
	return ""
}
