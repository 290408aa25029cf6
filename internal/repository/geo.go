package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type countryRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *countryRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	q := `SELECT id, name, code, source_id, search_area, continent FROM countries ORDER BY id`
	if err := r.db.SelectContext(ctx, &countries, q); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *countryRepository) CountryIDsByCode(ctx context.Context) (map[string]int64, error) {
	var rows []model.Country
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, code FROM countries`); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(rows))
	for _, c := range rows {
		ids[c.Code] = c.ID
	}
	return ids, nil
}

// BulkInsertCountries inserts countries, skipping codes that are already stored
func (r *countryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	return inChunks(countries, r.dialect.chunkSize(), func(batch []model.Country) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO countries (name, code, source_id, search_area, continent)
		VALUES (:name, :code, :source_id, :search_area, :continent)
		ON CONFLICT (code) DO NOTHING`,
			batch)
		return err
	})
}

type cityRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *cityRepository) GetCityWithCountry(ctx context.Context, id int64) (*model.CityWithCountry, error) {
	q := r.db.Rebind(`
		SELECT
			c.id,
			c.name,
			c.country_id,
			cnt.name AS country_name,
			cnt.code AS country_code,
			cnt.continent AS country_continent
		FROM cities c
		JOIN countries cnt ON cnt.id = c.country_id
		WHERE c.id = ?
	`)
	var city model.CityWithCountry
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &city, nil
}

// ListEligibleCityIDs returns the cities having at least minImages valid images
func (r *cityRepository) ListEligibleCityIDs(ctx context.Context, minImages int) ([]int64, error) {
	q := r.db.Rebind(`
		SELECT c.id
		FROM cities c
		JOIN images i ON i.city_id = c.id AND i.is_valid = ?
		GROUP BY c.id
		HAVING COUNT(i.id) >= ?
		ORDER BY c.id
	`)
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q, true, minImages); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *cityRepository) CityIDsBySourceID(ctx context.Context) (map[int64]int64, error) {
	var rows []model.City
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, source_id FROM cities`); err != nil {
		return nil, err
	}
	ids := make(map[int64]int64, len(rows))
	for _, c := range rows {
		ids[c.SourceID] = c.ID
	}
	return ids, nil
}

// BulkInsertCities inserts cities, skipping source ids that are already stored
func (r *cityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	return inChunks(cities, r.dialect.chunkSize(), func(batch []model.City) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (name, source_id, country_id)
		VALUES (:name, :source_id, :country_id)
		ON CONFLICT (source_id) DO NOTHING`,
			batch)
		return err
	})
}

type imageRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *imageRepository) ListValidImages(ctx context.Context, cityID int64) ([]model.Image, error) {
	q := r.db.Rebind(`
		SELECT id, url, title, city_id, is_valid
		FROM images
		WHERE city_id = ? AND is_valid = ?
		ORDER BY id
	`)
	var images []model.Image
	if err := r.db.SelectContext(ctx, &images, q, cityID, true); err != nil {
		return nil, err
	}
	return images, nil
}

// BulkInsertImages inserts images, skipping URLs that are already stored
func (r *imageRepository) BulkInsertImages(ctx context.Context, images []model.Image) error {
	return inChunks(images, r.dialect.chunkSize(), func(batch []model.Image) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO images (url, title, city_id, is_valid)
		VALUES (:url, :title, :city_id, :is_valid)
		ON CONFLICT (url) DO NOTHING`,
			batch)
		return err
	})
}
