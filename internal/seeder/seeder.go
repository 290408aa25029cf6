package seeder

import (
	"context"
	"fmt"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"go.uber.org/zap"
)

// Summary counts the rows read from the seed files. Rows already stored are skipped on insert.
type Summary struct {
	Countries int
	Cities    int
	Images    int
}

// Seed loads countries, then cities, then images. Ids of parents are resolved from the database
// after each step so a partially seeded database can be completed.
func Seed(ctx context.Context, parser *Parser, repos *repository.Container, logger *zap.Logger) (*Summary, error) {
	summary := &Summary{}

	logger.Info("Parsing countries...")
	countries, err := parser.ParseCountries()
	if err != nil {
		return nil, fmt.Errorf("failed to parse countries: %w", err)
	}
	summary.Countries = len(countries)

	logger.Info("Inserting countries...", zap.Int("count", len(countries)))
	if err := repos.Country.BulkInsertCountries(ctx, countries); err != nil {
		return nil, fmt.Errorf("failed to insert countries: %w", err)
	}

	countryIDs, err := repos.Country.CountryIDsByCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country ids: %w", err)
	}

	logger.Info("Parsing cities...")
	cities, err := parser.ParseCities(countryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cities: %w", err)
	}
	summary.Cities = len(cities)

	logger.Info("Inserting cities...", zap.Int("count", len(cities)))
	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		return nil, fmt.Errorf("failed to insert cities: %w", err)
	}

	cityIDs, err := repos.City.CityIDsBySourceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load city ids: %w", err)
	}

	logger.Info("Processing images (streaming mode)...")
	err = parser.ProcessImages(cityIDs, func(batch []model.Image) error {
		if err := repos.Image.BulkInsertImages(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert images batch: %w", err)
		}
		summary.Images += len(batch)
		logger.Debug("Inserted images batch", zap.Int("size", len(batch)), zap.Int("total", summary.Images))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process images: %w", err)
	}

	logger.Info("Data import completed",
		zap.Int("countries", summary.Countries),
		zap.Int("cities", summary.Cities),
		zap.Int("images", summary.Images),
	)
	return summary, nil
}
