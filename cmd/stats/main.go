package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/database"
	"github.com/geoquiz/geoquiz-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	defaultFormat := os.Getenv("OUTPUT_FORMAT")
	if defaultFormat == "" {
		defaultFormat = "json"
	}
	format := flag.String("format", defaultFormat, "Output format: json or text")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Collecting statistics...", zap.String("db_type", string(cfg.DB.Type)))

	statistics, err := stats.NewCollector(db, cfg.DB, cfg.Game.MinImages).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		if err := printHumanReadable(os.Stdout, statistics); err != nil {
			logger.Fatal("Failed to print statistics", zap.Error(err))
		}
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func printHumanReadable(out io.Writer, s *stats.Stats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "=== GeoQuiz statistics (%s) ===\n\n", s.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(w, "--- Game ---")
	fmt.Fprintf(w, "Playable cities:\t%d\n", s.Game.PlayableCities)
	fmt.Fprintf(w, "Playable countries:\t%d\n", s.Game.PlayableCountries)
	fmt.Fprintf(w, "Players:\t%d\n", s.Game.Players)
	fmt.Fprintf(w, "Sessions running:\t%d\n", s.Game.SessionsInProgress)
	fmt.Fprintf(w, "Sessions completed:\t%d\n", s.Game.SessionsCompleted)
	fmt.Fprintf(w, "Scores recorded:\t%d\n", s.Game.ScoresRecorded)
	fmt.Fprintf(w, "Best score:\t%d\n", s.Game.BestScore)
	fmt.Fprintf(w, "Answer accuracy:\t%.2f%% (%d/%d)\n\n", s.Game.Accuracy, s.Game.AnswersCorrect, s.Game.AnswersTotal)

	fmt.Fprintln(w, "--- Database ---")
	fmt.Fprintf(w, "Type:\t%s\n", s.Database.Type)
	fmt.Fprintf(w, "Size:\t%s\n", formatBytes(uint64(s.Database.SizeBytes)))
	fmt.Fprintf(w, "Total records:\t%d\n", s.Database.TotalRecords)
	for _, ts := range s.Database.TableStats {
		size := ""
		if ts.SizeBytes > 0 {
			size = formatBytes(uint64(ts.SizeBytes))
		}
		fmt.Fprintf(w, "  %s\t%d rows\t%s\n", ts.Name, ts.RowCount, size)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Runtime ---")
	fmt.Fprintf(w, "Allocated:\t%s\n", formatBytes(s.Memory.Alloc))
	fmt.Fprintf(w, "Total allocated:\t%s\n", formatBytes(s.Memory.TotalAlloc))
	fmt.Fprintf(w, "Goroutines:\t%d\n", s.Runtime.NumGoroutines)
	fmt.Fprintf(w, "Uptime:\t%ds\n", s.Runtime.UptimeSeconds)

	return w.Flush()
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
