package main

import (
	"context"
	"log"
	"time"

	"github.com/quantick/barpipe/pkg/config"
	"github.com/quantick/barpipe/pkg/logger"
	"github.com/quantick/barpipe/pkg/questdb"
)

// bars_1m is deduplicated on (timestamp, symbol): re-inserting a bucket after
// a forced flush or an operator replay overwrites the row instead of
// duplicating it.
const createBarsTable = `
CREATE TABLE IF NOT EXISTS bars_1m (
	timestamp TIMESTAMP,
	symbol SYMBOL CAPACITY 2048 CACHE,
	open DOUBLE,
	high DOUBLE,
	low DOUBLE,
	close DOUBLE,
	volume LONG,
	trade_count LONG,
	vwap DOUBLE
) TIMESTAMP(timestamp) PARTITION BY DAY WAL
DEDUP UPSERT KEYS(timestamp, symbol)
`

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	client, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		log.Fatalf("Failed to connect to QuestDB: %v", err)
	}
	defer client.Close()

	if err := client.Exec(ctx, createBarsTable); err != nil {
		log.Fatalf("Failed to create bars_1m: %v", err)
	}

	appLogger.Info("migration complete", logger.NewField("table", "bars_1m"))
}
