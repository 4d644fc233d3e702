// Command fincoach-seed loads sample transactions and goals into the
// database so a fresh install has data to chart.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"fincoach/internal/cli"
	"fincoach/internal/synth"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	userID := flag.String("user", "demo", "user ID to seed data for")
	count := flag.Int("count", 50, "number of sample transactions")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx := context.Background()
	gen := synth.NewGenerator(*seed)

	inserted := 0
	for _, t := range gen.Transactions(*userID, *count) {
		if err := repo.CreateTransaction(ctx, t); err != nil {
			logger.Error("Failed to insert sample transaction", "id", t.ID, "error", err)
			os.Exit(1)
		}
		inserted++
	}

	goals := 0
	for _, g := range gen.Goals(*userID) {
		if err := repo.CreateGoal(ctx, g); err != nil {
			logger.Error("Failed to insert sample goal", "id", g.ID, "error", err)
			os.Exit(1)
		}
		goals++
	}

	logger.Info("Sample data created",
		"user_id", *userID,
		"transactions", inserted,
		"goals", goals,
		"db", cfg.SQLiteDBPath)
}
