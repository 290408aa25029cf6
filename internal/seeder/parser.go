package seeder

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/model"
)

// Seed file names, without extension. Each file may be shipped as <name>.tsv or zipped as <name>.zip.
const (
	countriesFile = "countries"
	citiesFile    = "cities"
	imagesFile    = "images"
)

// searchAreaOffset turns a relation id of the map service into its area id
const searchAreaOffset = 3600000000

const defaultBatchSize = 500

// ErrSeedFileMissing is returned when neither the .tsv nor the .zip variant of a seed file exists
var ErrSeedFileMissing = errors.New("seed file not found")

// Parser reads the tab separated seed files produced by the content ingestion pipeline
type Parser struct {
	dataDir   string
	batchSize int
}

// NewParser creates a new parser instance with config
func NewParser(dataDir string, seederCfg config.SeederConfig) *Parser {
	batchSize := seederCfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Parser{
		dataDir:   dataDir,
		batchSize: batchSize,
	}
}

// ParseCountries parses countries.tsv: code, name, source_id, search_area, continent
func (p *Parser) ParseCountries() ([]model.Country, error) {
	rc, err := p.open(countriesFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var countries []model.Country
	err = scanRows(rc, func(parts []string) error {
		if len(parts) < 2 {
			return nil
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		name := strings.TrimSpace(parts[1])
		if code == "" || name == "" {
			return nil
		}

		country := model.Country{Code: code, Name: name}
		if len(parts) > 2 {
			country.SourceID, _ = strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		}
		if len(parts) > 3 {
			country.SearchArea, _ = strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
		}
		if country.SearchArea == 0 && country.SourceID > 0 {
			country.SearchArea = searchAreaOffset + country.SourceID
		}
		if len(parts) > 4 {
			if continent := strings.TrimSpace(parts[4]); continent != "" {
				country.Continent = &continent
			}
		}

		countries = append(countries, country)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", countriesFile, err)
	}

	return countries, nil
}

// ParseCities parses cities.tsv: source_id, name, country_code.
// Rows whose country is not in countryIDs are skipped.
func (p *Parser) ParseCities(countryIDs map[string]int64) ([]model.City, error) {
	rc, err := p.open(citiesFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var cities []model.City
	err = scanRows(rc, func(parts []string) error {
		if len(parts) < 3 {
			return nil
		}
		sourceID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil
		}
		name := strings.TrimSpace(parts[1])
		countryID, ok := countryIDs[strings.ToUpper(strings.TrimSpace(parts[2]))]
		if name == "" || !ok {
			return nil
		}

		cities = append(cities, model.City{
			Name:      name,
			SourceID:  sourceID,
			CountryID: countryID,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", citiesFile, err)
	}

	return cities, nil
}

// ProcessImages streams images.tsv (city_source_id, url, title, is_valid) in batches to callback.
// Rows for unknown cities are skipped. A missing is_valid column means the image is valid.
func (p *Parser) ProcessImages(cityIDs map[int64]int64, callback func(batch []model.Image) error) error {
	rc, err := p.open(imagesFile)
	if err != nil {
		return err
	}
	defer rc.Close()

	batch := make([]model.Image, 0, p.batchSize)

	err = scanRows(rc, func(parts []string) error {
		if len(parts) < 2 {
			return nil
		}
		sourceID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil
		}
		cityID, ok := cityIDs[sourceID]
		url := strings.TrimSpace(parts[1])
		if !ok || url == "" {
			return nil
		}

		img := model.Image{URL: url, CityID: cityID, IsValid: true}
		if len(parts) > 2 {
			img.Title = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
			valid, err := strconv.ParseBool(strings.TrimSpace(parts[3]))
			if err != nil {
				return nil
			}
			img.IsValid = valid
		}

		batch = append(batch, img)
		if len(batch) >= p.batchSize {
			if err := callback(batch); err != nil {
				return fmt.Errorf("image callback error: %w", err)
			}
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", imagesFile, err)
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return fmt.Errorf("image callback error: %w", err)
		}
	}

	return nil
}

// open returns the seed file, preferring the zipped variant
func (p *Parser) open(name string) (io.ReadCloser, error) {
	zipPath := filepath.Join(p.dataDir, name+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		return openFromZip(zipPath)
	}

	filePath := filepath.Join(p.dataDir, name+".tsv")
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: checked %s and %s", ErrSeedFileMissing, zipPath, filePath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	return file, nil
}

// zipEntry closes the archive together with the entry read from it
type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntry) Close() error {
	return errors.Join(z.ReadCloser.Close(), z.archive.Close())
}

func openFromZip(zipPath string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".tsv") || strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			return &zipEntry{ReadCloser: rc, archive: r}, nil
		}
	}

	r.Close()
	return nil, fmt.Errorf("no tsv file found in %s", zipPath)
}

// scanRows calls fn with the tab separated fields of every non-empty, non-comment line
func scanRows(r io.Reader, fn func(parts []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(strings.Split(line, "\t")); err != nil {
			return err
		}
	}

	return scanner.Err()
}
