package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB     DBConfig
	Server ServerConfig
	Seeder SeederConfig
	Game   GameConfig
	Log    LogConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
	DBTypeSQLite     DBType = "sqlite"
)

const defaultDBName = "geoquiz"

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		if c.Name != "" && c.Name != defaultDBName {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		path := c.Name
		if path == "" {
			path = defaultDBName
		}
		if filepath.Ext(path) == "" {
			path += ".db"
		}
		// Writers take the lock at BEGIN so session updates are serialized
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the in-memory and the file backed SQLite database
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// MigrationsDir returns the migrations sub-directory matching the SQL dialect
func (c DBConfig) MigrationsDir() string {
	if c.IsSQLite() {
		return "sqlite"
	}
	return "postgres"
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// SeederConfig holds settings for data import
type SeederConfig struct {
	DataDir   string
	BatchSize int
	AutoSeed  bool
}

// GameConfig holds gameplay tuning
type GameConfig struct {
	DefaultChoices   int  `env:"GAME_DEFAULT_CHOICES" envDefault:"4"`
	MinImages        int  `env:"GAME_MIN_IMAGES" envDefault:"3"`
	MaxImages        int  `env:"GAME_MAX_IMAGES" envDefault:"6"`
	LeaderboardSize  int  `env:"GAME_LEADERBOARD_SIZE" envDefault:"10"`
	TrustClientScore bool `env:"GAME_TRUST_CLIENT_SCORE" envDefault:"false"`
}

// DefaultGameConfig returns the gameplay settings used when nothing is configured
func DefaultGameConfig() GameConfig {
	return GameConfig{
		DefaultChoices:  4,
		MinImages:       3,
		MaxImages:       6,
		LeaderboardSize: 10,
	}
}

// Validate checks that the gameplay settings are usable
func (g GameConfig) Validate() error {
	if g.DefaultChoices < 2 {
		return fmt.Errorf("GAME_DEFAULT_CHOICES must be at least 2, got %d", g.DefaultChoices)
	}
	if g.MinImages < 1 {
		return fmt.Errorf("GAME_MIN_IMAGES must be at least 1, got %d", g.MinImages)
	}
	if g.MaxImages < g.MinImages {
		return fmt.Errorf("GAME_MAX_IMAGES (%d) must not be lower than GAME_MIN_IMAGES (%d)", g.MaxImages, g.MinImages)
	}
	if g.LeaderboardSize < 1 {
		return fmt.Errorf("GAME_LEADERBOARD_SIZE must be positive, got %d", g.LeaderboardSize)
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeMemory
	}

	game, err := env.ParseAs[GameConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}

	logCfg, err := env.ParseAs[LogConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse log config: %w", err)
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "geoquiz"),
			Password: getEnv("DB_PASSWORD", "geoquiz_password"),
			Name:     getEnv("DB_NAME", defaultDBName),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Seeder: SeederConfig{
			DataDir:   getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 500),
			AutoSeed:  getEnvAsBool("SEEDER_AUTO_SEED", true),
		},
		Game: game,
		Log:  logCfg,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
