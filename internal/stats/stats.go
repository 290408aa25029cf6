package stats

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/jmoiron/sqlx"
)

// Tables reported in the database section, in schema order
var Tables = []string{"countries", "cities", "images", "players", "game_sessions", "answers", "session_hints", "scores"}

const memStatsCacheDuration = 5 * time.Second

// Stats is a snapshot of the service state
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Game      GameStats     `json:"game"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name" db:"name"`
	RowCount  int64  `json:"row_count" db:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty" db:"-"`
}

// GameStats counts playable content and game activity
type GameStats struct {
	PlayableCities     int64   `json:"playable_cities" db:"playable_cities"`
	PlayableCountries  int64   `json:"playable_countries" db:"playable_countries"`
	Players            int64   `json:"players" db:"players"`
	SessionsInProgress int64   `json:"sessions_in_progress" db:"sessions_in_progress"`
	SessionsCompleted  int64   `json:"sessions_completed" db:"sessions_completed"`
	ScoresRecorded     int64   `json:"scores_recorded" db:"scores_recorded"`
	BestScore          int64   `json:"best_score" db:"best_score"`
	AnswersCorrect     int64   `json:"answers_correct" db:"answers_correct"`
	AnswersTotal       int64   `json:"answers_total" db:"answers_total"`
	Accuracy           float64 `json:"accuracy" db:"-"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Collector gathers statistics. Memory figures are cached for a few seconds since reading them stops the world.
type Collector struct {
	db        *sqlx.DB
	dbType    config.DBType
	minImages int
	startTime time.Time

	mu       sync.Mutex
	mem      MemoryStats
	memUntil time.Time
}

// NewCollector creates a collector. minImages is the image count that makes a city playable.
func NewCollector(db *sqlx.DB, cfg config.DBConfig, minImages int) *Collector {
	return &Collector{
		db:        db,
		dbType:    cfg.Type,
		minImages: minImages,
		startTime: time.Now(),
	}
}

// Collect takes a snapshot of memory, database, game and runtime statistics
func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	gameStats, err := c.collectGameStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now(),
		Memory:    c.memoryStats(),
		Database:  *dbStats,
		Game:      *gameStats,
		Runtime: RuntimeStats{
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
		},
	}, nil
}

func (c *Collector) memoryStats() MemoryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.memUntil) {
		return c.mem
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.mem = MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
	c.memUntil = time.Now().Add(memStatsCacheDuration)
	return c.mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	parts := make([]string, len(Tables))
	for i, table := range Tables {
		parts[i] = fmt.Sprintf("SELECT '%s' AS name, COUNT(*) AS row_count FROM %s", table, table)
	}

	var tables []TableStat
	if err := c.db.SelectContext(ctx, &tables, strings.Join(parts, " UNION ALL ")); err != nil {
		return nil, fmt.Errorf("failed to count table rows: %w", err)
	}

	stats := &DatabaseStats{Type: string(c.dbType)}
	for i := range tables {
		// sizes are best effort: dbstat is not compiled into every SQLite build
		tables[i].SizeBytes, _ = c.tableSize(ctx, tables[i].Name)
		stats.TotalRecords += tables[i].RowCount
	}
	stats.TableStats = tables
	stats.SizeBytes, _ = c.databaseSize(ctx)

	return stats, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	var size int64
	q := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.dbType == config.DBTypePostgreSQL {
		q = "SELECT pg_database_size(current_database())"
	}
	err := c.db.GetContext(ctx, &size, q)
	return size, err
}

func (c *Collector) tableSize(ctx context.Context, table string) (int64, error) {
	var size int64
	q := "SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?"
	if c.dbType == config.DBTypePostgreSQL {
		q = "SELECT COALESCE(pg_total_relation_size($1::regclass), 0)"
	}
	err := c.db.GetContext(ctx, &size, q, table)
	return size, err
}

func (c *Collector) collectGameStats(ctx context.Context) (*GameStats, error) {
	q := c.db.Rebind(`
		WITH playable AS (
			SELECT i.city_id FROM images i
			WHERE i.is_valid = ?
			GROUP BY i.city_id
			HAVING COUNT(*) >= ?
		)
		SELECT
			(SELECT COUNT(*) FROM playable) AS playable_cities,
			(SELECT COUNT(DISTINCT c.country_id) FROM cities c JOIN playable p ON p.city_id = c.id) AS playable_countries,
			(SELECT COUNT(*) FROM players) AS players,
			(SELECT COUNT(*) FROM game_sessions WHERE status = 'in_progress') AS sessions_in_progress,
			(SELECT COUNT(*) FROM game_sessions WHERE status = 'completed') AS sessions_completed,
			(SELECT COUNT(*) FROM scores) AS scores_recorded,
			(SELECT COALESCE(MAX(final_score), 0) FROM scores) AS best_score,
			(SELECT COUNT(*) FROM answers WHERE is_correct = ?) AS answers_correct,
			(SELECT COUNT(*) FROM answers) AS answers_total
	`)

	var stats GameStats
	if err := c.db.GetContext(ctx, &stats, q, true, c.minImages, true); err != nil {
		return nil, fmt.Errorf("failed to collect game statistics: %w", err)
	}
	if stats.AnswersTotal > 0 {
		stats.Accuracy = float64(stats.AnswersCorrect) * 100 / float64(stats.AnswersTotal)
	}
	return &stats, nil
}
