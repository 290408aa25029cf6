package model

// Country represents a country in the database
type Country struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Code string `db:"code"`
	// SourceID is the identifier of the country in the upstream map service
	SourceID int64 `db:"source_id"`
	// SearchArea is the area identifier derived from SourceID, used to query cities inside the country
	SearchArea int64   `db:"search_area"`
	Continent  *string `db:"continent"`
}

// City represents a city in the database
type City struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	SourceID  int64  `db:"source_id"`
	CountryID int64  `db:"country_id"`
}

// CityWithCountry is a city joined with the country it belongs to
type CityWithCountry struct {
	ID               int64   `db:"id"`
	Name             string  `db:"name"`
	CountryID        int64   `db:"country_id"`
	CountryName      string  `db:"country_name"`
	CountryCode      string  `db:"country_code"`
	CountryContinent *string `db:"country_continent"`
}

// Image represents a picture of a city
type Image struct {
	ID     int64  `db:"id"`
	URL    string `db:"url"`
	Title  string `db:"title"`
	CityID int64  `db:"city_id"`
	// IsValid is decided at ingestion time; flags, maps and logos are stored as invalid
	IsValid bool `db:"is_valid"`
}
